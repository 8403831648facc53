// Package models defines journal note types and their persisted shape.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/chronochat/internal/timex"
)

// FileAttachment is a file attached to a note. Data carries the base64
// payload until the file has been written into the attachments directory.
type FileAttachment struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// Note is one journal entry. Images hold data: URIs, remote URLs or local
// paths under the app-private directories.
type Note struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Tags      []string         `json:"tags"`
	Images    []string         `json:"images,omitempty"`
	Files     []FileAttachment `json:"files,omitempty"`
}

// Clone returns a deep copy.
func (n Note) Clone() Note {
	c := n
	c.Tags = slices.Clone(n.Tags)
	c.Images = slices.Clone(n.Images)
	c.Files = slices.Clone(n.Files)
	return c
}

// MarshalJSON always writes tags as an array.
func (n Note) MarshalJSON() ([]byte, error) {
	type plain Note
	p := plain(n)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON accepts the id as a string or a number and the timestamp as
// an RFC 3339 string or epoch milliseconds.
func (n *Note) UnmarshalJSON(b []byte) error {
	type plain Note
	var aux struct {
		plain
		ID        json.RawMessage `json:"id"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	id, err := DecodeID(aux.ID)
	if err != nil {
		return err
	}
	ts, err := DecodeTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("note %q: %w", id, err)
	}

	*n = Note(aux.plain)
	n.ID = id
	n.Timestamp = ts
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return nil
}

// DecodeID accepts a JSON string or number. Null and absent give "".
func DecodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("note id: %w", err)
		}
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("note id: %w", err)
	}
	return num.String(), nil
}

// DecodeTimestamp parses a JSON string (RFC 3339, or digits meaning epoch
// milliseconds) or a JSON number of epoch milliseconds. Null and absent
// values give the zero time.
func DecodeTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("timestamp: %w", err)
		}
		s = strings.TrimSpace(s)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return timex.UnixMilli(ms), nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
		}
		return t, nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("timestamp: %w", err)
	}
	return timex.UnixMilli(int64(ms)), nil
}
