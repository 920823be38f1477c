package email

import (
	"bytes"
	"fmt"
	"io"
	netmail "net/mail"

	"go-portfolio-site/internal/domain"

	"github.com/emersion/go-message/mail"
)

// HeaderNotificationKind tags outbound mail with the notification kind.
const HeaderNotificationKind = "X-Portfolio-Notification"

// Compose renders a notification as an RFC 5322 message with a
// multipart/alternative body (plain text first, then HTML).
func Compose(msg domain.NotificationMessage) ([]byte, error) {
	if msg.From.Address == "" {
		return nil, fmt.Errorf("compose: missing sender address")
	}
	if msg.To.Address == "" {
		return nil, fmt.Errorf("compose: missing recipient address")
	}

	var h mail.Header
	h.SetDate(msg.Timestamp)
	h.SetAddressList("From", []*mail.Address{address(msg.From)})
	h.SetAddressList("To", []*mail.Address{address(msg.To)})
	if msg.ReplyTo.Address != "" {
		h.SetAddressList("Reply-To", []*mail.Address{address(msg.ReplyTo)})
	}
	h.SetSubject(msg.Subject)
	if msg.Kind != "" {
		h.Set(HeaderNotificationKind, string(msg.Kind))
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("compose: failed to generate message id: %w", err)
	}

	var buf bytes.Buffer
	tw, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("compose: failed to create writer: %w", err)
	}
	if err := writeInlinePart(tw, "text/plain", msg.TextBody); err != nil {
		return nil, err
	}
	if msg.HTMLBody != "" {
		if err := writeInlinePart(tw, "text/html", msg.HTMLBody); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("compose: failed to close message: %w", err)
	}

	return buf.Bytes(), nil
}

func writeInlinePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	ph.Set("Content-Transfer-Encoding", "quoted-printable")

	w, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("compose: failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("compose: failed to write %s part: %w", contentType, err)
	}
	return w.Close()
}

func address(a netmail.Address) *mail.Address {
	return &mail.Address{Name: a.Name, Address: a.Address}
}
