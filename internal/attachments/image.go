package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chronochat/internal/models"
	"golang.org/x/sync/errgroup"
)

// EncodeDataURI builds data:<mime>;base64,<payload>.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data: URI into its MIME type and bytes.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data uri without payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data uri is not base64")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return mime, data, nil
}

// PersistImage embeds a local image as a data: URI. Data URIs and remote URLs
// are returned unchanged, as is anything that cannot be read.
func (p *Persister) PersistImage(ctx context.Context, uri string) models.PersistResult {
	if IsEmbedded(uri) || IsRemote(uri) {
		return models.UnchangedBecause(uri, "")
	}
	if err := ctx.Err(); err != nil {
		return models.UnchangedBecause(uri, err.Error())
	}
	path, ok := LocalPath(uri)
	if !ok {
		p.log.Warn(ctx, "image uri is not a readable path, keeping original", "uri", uri)
		return models.UnchangedBecause(uri, "unsupported uri scheme")
	}

	data, err := p.readFile(path)
	if err != nil {
		p.log.Warn(ctx, "image read failed, keeping original uri", "uri", uri, "err", err)
		return models.UnchangedBecause(uri, fmt.Sprintf("read image: %v", err))
	}
	return models.PersistedAs(EncodeDataURI(ImageMIME(path), data))
}

// PersistImages runs PersistImage concurrently. Results keep the input order.
func (p *Persister) PersistImages(ctx context.Context, uris []string) ([]string, []models.PersistResult) {
	results := make([]models.PersistResult, len(uris))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fanOut)
	for i, uri := range uris {
		g.Go(func() error {
			results[i] = p.PersistImage(gctx, uri)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, len(uris))
	for i, r := range results {
		out[i] = r.URI
	}
	return out, results
}
