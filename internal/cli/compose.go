package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/chronochat/internal/models"
	"github.com/dmitrijs2005/chronochat/internal/notes"
)

// getMultiline is an indirection used to facilitate testing.
var getMultiline = GetMultiline

const (
	imagePrefix = "+image "
	filePrefix  = "+file "
)

// readAttachment loads a file picked by path, the way the platform file
// picker hands over name, type and base64 content.
func readAttachment(path string) (models.FileAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.FileAttachment{}, err
	}
	typ := mime.TypeByExtension(filepath.Ext(path))
	if typ == "" {
		typ = "application/octet-stream"
	}
	return models.FileAttachment{
		URI:  path,
		Name: filepath.Base(path),
		Type: typ,
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Add composes a note. Lines starting with "+image " or "+file " attach the
// named file; hashtags anywhere in the text become tags.
func (a *App) Add(ctx context.Context) error {
	lines, err := getMultiline(a.reader, "Write your note (#tags, '+image <path>', '+file <path>')", a.out)
	if err != nil {
		return err
	}

	var (
		text   []string
		images []string
		files  []models.FileAttachment
	)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, imagePrefix):
			images = append(images, strings.TrimSpace(strings.TrimPrefix(line, imagePrefix)))
		case strings.HasPrefix(line, filePrefix):
			path := strings.TrimSpace(strings.TrimPrefix(line, filePrefix))
			f, err := readAttachment(path)
			if err != nil {
				fmt.Fprintf(a.out, "Skipping %s: %v\n", path, err)
				continue
			}
			files = append(files, f)
		default:
			text = append(text, line)
		}
	}

	content, tags := notes.ExtractTags(strings.Join(text, "\n"))
	if content == "" && len(tags) == 0 && len(images) == 0 && len(files) == 0 {
		fmt.Fprintln(a.out, "Nothing to save.")
		return nil
	}

	n, err := a.notes.Add(ctx, content, tags, images, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved note %s.\n", n.ID)
	return nil
}
