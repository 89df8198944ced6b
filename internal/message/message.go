// Package message defines the glide control protocol spoken between the
// CLI and a running daemon.
//
// All messages are newline-delimited JSON. Each message is exactly one
// line: <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dagimg-dot/Glide/internal/entry"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests
	TypeList   Type = "LIST"
	TypeWatch  Type = "WATCH"
	TypePin    Type = "PIN"
	TypeDelete Type = "DELETE"
	TypeClear  Type = "CLEAR"
	TypeCopy   Type = "COPY"

	// Responses
	TypeOK      Type = "OK"
	TypeHistory Type = "HISTORY"
	TypeError   Type = "ERROR"
)

// EntryView is the transport form of one history entry. Content is
// reduced to a preview; full payloads never cross the control socket.
type EntryView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Preview   string    `json:"preview"`
	Timestamp time.Time `json:"timestamp"`
	Pinned    bool      `json:"pinned"`
	SourceApp string    `json:"source_app,omitempty"`
}

// ViewOf converts a store entry into its transport form.
func ViewOf(e *entry.Entry, previewLen int) EntryView {
	kind := "text"
	if e.IsImage() {
		kind = "image"
	}
	return EntryView{
		ID:        e.ID,
		Kind:      kind,
		Preview:   e.Preview(previewLen),
		Timestamp: e.Timestamp,
		Pinned:    e.Pinned,
		SourceApp: e.SourceApp,
	}
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// PIN / DELETE / COPY — the target entry.
	ID string `json:"id,omitempty"`

	// HISTORY — the current ordering.
	Entries []EntryView `json:"entries,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
