package mailparse

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ErrMalformedHeader means the block could not be decoded as a header at
// all. Individual missing fields are not an error; see Header.
var ErrMalformedHeader = errors.New("malformed header block")

// Header is a normalized message header. HasSender and HasSubject
// distinguish absent fields from present-but-empty ones. ReceivedAt is
// nil when the Date field is missing or unparsable; it is never
// substituted with the current time, which would corrupt checkpoint
// ordering downstream.
type Header struct {
	Sender     string
	HasSender  bool
	Subject    string
	HasSubject bool
	ReceivedAt *time.Time
}

// Parser converts raw header blocks into normalized headers.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes one raw header block. Missing From, Subject or Date
// fields are tolerated; only an undecodable block fails.
func (p *Parser) Parse(raw []byte) (*Header, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	h := mail.Header{Header: entity.Header}
	out := &Header{}

	if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
		out.Sender = addrs[0].Address
		out.HasSender = true
	} else if from := h.Get("From"); from != "" {
		// Keep the undecoded value rather than dropping the field.
		out.Sender = from
		out.HasSender = true
	}

	if subject, err := h.Subject(); err == nil && h.Has("Subject") {
		out.Subject = subject
		out.HasSubject = true
	} else if subject := h.Get("Subject"); subject != "" {
		out.Subject = subject
		out.HasSubject = true
	}

	if date, err := h.Date(); err == nil && !date.IsZero() {
		utc := date.UTC()
		out.ReceivedAt = &utc
	}

	return out, nil
}
