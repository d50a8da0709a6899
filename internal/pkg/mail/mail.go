package mail

import (
	"context"
	"io"
)

// Message is a provider agnostic email. When both bodies are set the
// message goes out as multipart/alternative.
type Message struct {
	From     string // falls back to the sender's default
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Recipients is every envelope recipient, Bcc included.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
