// Package backup exports the journal to a portable JSON document with image
// bytes embedded, and restores such documents (current and legacy shapes).
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/common"
	"github.com/dmitrijs2005/chronochat/internal/models"
)

const Version = 2

// Document is the backup file. Version 1 files are a bare array of notes
// with string image paths.
type Document struct {
	Version   int            `json:"version"`
	Timestamp int64          `json:"timestamp"`
	Notes     []ExportedNote `json:"notes"`
}

// ImageItem is either a legacy path string or an embedded {uri, base64}
// object. Type is set for images that were data: URIs, whose uri is empty.
type ImageItem struct {
	URI    string
	Base64 string
	Type   string
	Legacy bool
}

type imageObject struct {
	URI    string `json:"uri"`
	Base64 string `json:"base64"`
	Type   string `json:"type,omitempty"`
}

func (i ImageItem) MarshalJSON() ([]byte, error) {
	if i.Legacy {
		return json.Marshal(i.URI)
	}
	return json.Marshal(imageObject{URI: i.URI, Base64: i.Base64, Type: i.Type})
}

func (i *ImageItem) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ImageItem{URI: s, Legacy: true}
		return nil
	}
	var o imageObject
	if err := json.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("image item: %w", err)
	}
	*i = ImageItem{URI: o.URI, Base64: o.Base64, Type: o.Type}
	return nil
}

// ExportedNote is a note as it appears in a backup.
type ExportedNote struct {
	ID        string                  `json:"id"`
	Content   string                  `json:"content"`
	Timestamp time.Time               `json:"timestamp"`
	Tags      []string                `json:"tags"`
	Images    []ImageItem             `json:"images"`
	Files     []models.FileAttachment `json:"files,omitempty"`
}

func (n ExportedNote) MarshalJSON() ([]byte, error) {
	type plain ExportedNote
	p := plain(n)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []ImageItem{}
	}
	return json.Marshal(p)
}

func (n *ExportedNote) UnmarshalJSON(b []byte) error {
	type plain ExportedNote
	var aux struct {
		plain
		ID        json.RawMessage `json:"id"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id, err := models.DecodeID(aux.ID)
	if err != nil {
		return err
	}
	ts, err := models.DecodeTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	*n = ExportedNote(aux.plain)
	n.ID = id
	n.Timestamp = ts
	return nil
}

// Decode parses a backup in either shape. Anything else is
// common.ErrInvalidBackup.
func Decode(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrInvalidBackup)
	}

	switch data[0] {
	case '[':
		var ns []ExportedNote
		if err := json.Unmarshal(data, &ns); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidBackup, err)
		}
		return &Document{Version: 1, Notes: ns}, nil
	case '{':
		var wrapper struct {
			Version   int             `json:"version"`
			Timestamp json.RawMessage `json:"timestamp"`
			Notes     *[]ExportedNote `json:"notes"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidBackup, err)
		}
		if wrapper.Notes == nil {
			return nil, fmt.Errorf("%w: missing notes array", common.ErrInvalidBackup)
		}
		doc := &Document{Version: wrapper.Version, Notes: *wrapper.Notes}
		if ts, err := models.DecodeTimestamp(wrapper.Timestamp); err == nil && !ts.IsZero() {
			doc.Timestamp = ts.UnixMilli()
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: not a JSON object or array", common.ErrInvalidBackup)
	}
}
