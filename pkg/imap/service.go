package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Connection errors, mapped from the protocol layer so callers never see
// raw go-imap errors.
var (
	ErrAuth           = errors.New("imap: authentication failed")
	ErrNetwork        = errors.New("imap: network error")
	ErrTimeout        = errors.New("imap: operation timed out")
	ErrProtocol       = errors.New("imap: protocol error")
	ErrConnectionLost = errors.New("imap: connection lost")
)

// Credentials holds what is needed to open one mailbox.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

// RawHeader is one fetched message header block. A failed fetch of an
// individual message carries Err instead of Raw so the caller can keep
// processing the remaining messages.
type RawHeader struct {
	UID uint32
	Raw []byte
	Err error
}

// Service dials IMAP connections with a shared timeout policy.
type Service struct {
	timeout time.Duration
}

func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{timeout: timeout}
}

// Connection is an authenticated session with INBOX selected. It is a
// scoped resource: the caller owns it for one fetch cycle and must Close
// it on every path.
type Connection struct {
	cl *client.Client
}

// Connect dials, authenticates and selects INBOX read-only. The context
// deadline, when set, bounds the dial.
func (s *Service) Connect(ctx context.Context, creds Credentials) (*Connection, error) {
	addr := fmt.Sprintf("%s:%d", creds.Host, creds.Port)
	dialer := &net.Dialer{Timeout: s.timeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	var (
		cl  *client.Client
		err error
	)
	if creds.UseTLS {
		cl, err = client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: creds.Host})
	} else {
		cl, err = client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return nil, wrapNetErr(err)
	}
	cl.Timeout = s.timeout

	if err := cl.Login(creds.Username, creds.Password); err != nil {
		_ = cl.Logout()
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if _, err := cl.Select("INBOX", true); err != nil {
		_ = cl.Logout()
		return nil, fmt.Errorf("%w: select INBOX: %v", ErrProtocol, err)
	}

	return &Connection{cl: cl}, nil
}

// Search returns the UIDs of messages received on or after since. The
// SINCE criterion is formatted by the protocol library in the RFC 3501
// date grammar (02-Jan-2006), independent of locale.
func (c *Connection) Search(since time.Time) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	uids, err := c.cl.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrProtocol, err)
	}
	return uids, nil
}

// FetchHeaders streams the header blocks of the given UIDs. Fetch
// failures of individual messages are reported in-band via RawHeader.Err;
// a connection-level failure ends the stream with a final Err item.
func (c *Connection) FetchHeaders(uids []uint32) (<-chan RawHeader, error) {
	out := make(chan RawHeader, 8)
	if len(uids) == 0 {
		close(out)
		return out, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	msgs := make(chan *imap.Message, 8)
	done := make(chan error, 1)
	go func() {
		done <- c.cl.UidFetch(seqset, items, msgs)
	}()

	go func() {
		for msg := range msgs {
			body := msg.GetBody(section)
			if body == nil {
				out <- RawHeader{UID: msg.Uid, Err: fmt.Errorf("%w: no header section returned", ErrProtocol)}
				continue
			}
			raw, err := io.ReadAll(body)
			if err != nil {
				out <- RawHeader{UID: msg.Uid, Err: fmt.Errorf("%w: read header: %v", ErrProtocol, err)}
				continue
			}
			out <- RawHeader{UID: msg.Uid, Raw: raw}
		}
		if err := <-done; err != nil {
			out <- RawHeader{Err: fmt.Errorf("%w: %v", ErrConnectionLost, err)}
		}
		close(out)
	}()

	return out, nil
}

// Close logs out and releases the connection.
func (c *Connection) Close() error {
	return c.cl.Logout()
}

func wrapNetErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
