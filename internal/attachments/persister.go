// Package attachments turns transient image and file references into durable
// app-owned storage and migrates notes saved under older schemes. Every step
// is best-effort: failures leave the original reference and say why.
package attachments

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/chronochat/internal/filex"
	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/google/uuid"
)

const defaultFanOut = 8

type Persister struct {
	layout filex.Layout
	log    logging.Logger

	readFile func(string) ([]byte, error)
	newID    func() string
	fanOut   int
}

func NewPersister(layout filex.Layout, log logging.Logger) *Persister {
	return &Persister{
		layout:   layout,
		log:      log,
		readFile: os.ReadFile,
		newID:    uuid.NewString,
		fanOut:   defaultFanOut,
	}
}

func (p *Persister) Layout() filex.Layout {
	return p.layout
}

// IsEmbedded reports a data: URI.
func IsEmbedded(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// IsRemote reports an http(s) URL.
func IsRemote(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// LocalPath maps a file:// URI or a plain path to a filesystem path. Other
// schemes (content://, ph://) are not readable here.
func LocalPath(uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil || u.Path == "" {
			return "", false
		}
		return filepath.FromSlash(u.Path), true
	}
	if i := strings.Index(uri, "://"); i > 0 && !strings.ContainsAny(uri[:i], `/\`) {
		return "", false
	}
	return uri, true
}
