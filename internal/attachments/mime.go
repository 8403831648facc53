package attachments

import (
	"path/filepath"
	"strings"
)

const defaultImageMIME = "image/jpeg"

var imageMIME = map[string]string{
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
}

// ImageMIME infers the MIME type from the extension; unknown means JPEG.
func ImageMIME(path string) string {
	if m, ok := imageMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return defaultImageMIME
}

// ImageExt is the file extension for an image MIME type, ".jpg" when unknown.
func ImageExt(mime string) string {
	if e, ok := imageExt[strings.ToLower(mime)]; ok {
		return e
	}
	return ".jpg"
}
