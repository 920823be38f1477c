package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"go-portfolio-site/config"
	"go-portfolio-site/internal/domain"
	"go-portfolio-site/pkg/logger"
)

// implicitTLSPort is the SMTPS port; everything else negotiates STARTTLS.
const implicitTLSPort = "465"

// SMTPConfig holds the immutable relay connection parameters.
type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	DialTimeout time.Duration
}

// SMTPRelay delivers notification messages over SMTP. Every Submit opens
// its own connection, so one relay can be shared by all requests.
type SMTPRelay struct {
	cfg    SMTPConfig
	dialer *net.Dialer
}

// NewSMTPRelay creates a relay from the application configuration
func NewSMTPRelay(cfg *config.Config) *SMTPRelay {
	return NewSMTPRelayWithConfig(SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFromEmail,
		DialTimeout: cfg.RelayTimeout,
	})
}

func NewSMTPRelayWithConfig(cfg SMTPConfig) *SMTPRelay {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 15 * time.Second
	}
	return &SMTPRelay{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.DialTimeout},
	}
}

// IsConfigured checks if the relay has a host and a sender address
func (r *SMTPRelay) IsConfigured() bool {
	return r.cfg.Host != "" && r.cfg.From != ""
}

// Sender returns the configured envelope and header sender.
func (r *SMTPRelay) Sender() string {
	return r.cfg.From
}

// Submit composes msg and hands it to the SMTP server.
func (r *SMTPRelay) Submit(ctx context.Context, msg domain.NotificationMessage) error {
	if !r.IsConfigured() {
		return domain.ErrRelayNotConfigured
	}

	raw, err := Compose(msg)
	if err != nil {
		return err
	}

	err = r.session(ctx, func(c *smtp.Client) error {
		if err := c.Mail(msg.From.Address); err != nil {
			return fmt.Errorf("MAIL FROM rejected: %w", err)
		}
		if err := c.Rcpt(msg.To.Address); err != nil {
			return fmt.Errorf("RCPT TO rejected: %w", err)
		}
		w, err := c.Data()
		if err != nil {
			return fmt.Errorf("DATA rejected: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("message not accepted: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Log.Debug("email relayed", "kind", msg.Kind, "bytes", len(raw))
	return nil
}

// Verify connects, negotiates TLS and auth, then quits without sending.
func (r *SMTPRelay) Verify(ctx context.Context) error {
	if !r.IsConfigured() {
		return domain.ErrRelayNotConfigured
	}
	if err := r.session(ctx, nil); err != nil {
		return fmt.Errorf("smtp verify %s: %w", r.addr(), err)
	}
	return nil
}

func (r *SMTPRelay) addr() string {
	return net.JoinHostPort(r.cfg.Host, r.cfg.Port)
}

// session runs fn on an authenticated client. The connection is closed
// when ctx ends, which unblocks any pending read or write.
func (r *SMTPRelay) session(ctx context.Context, fn func(*smtp.Client) error) error {
	conn, err := r.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", r.addr(), err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	c, err := smtp.NewClient(conn, r.cfg.Host)
	if err != nil {
		conn.Close()
		return withContext(ctx, fmt.Errorf("no greeting from %s: %w", r.addr(), err))
	}
	defer c.Close()

	if r.cfg.Port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: r.cfg.Host}); err != nil {
				return withContext(ctx, fmt.Errorf("STARTTLS failed: %w", err))
			}
		}
	}

	if r.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", r.cfg.Username, r.cfg.Password, r.cfg.Host)
			if err := c.Auth(auth); err != nil {
				return withContext(ctx, fmt.Errorf("authentication failed: %w", err))
			}
		}
	}

	if fn != nil {
		if err := fn(c); err != nil {
			return withContext(ctx, err)
		}
	}

	return withContext(ctx, c.Quit())
}

func (r *SMTPRelay) dial(ctx context.Context) (net.Conn, error) {
	if r.cfg.Port == implicitTLSPort {
		d := &tls.Dialer{NetDialer: r.dialer, Config: &tls.Config{ServerName: r.cfg.Host}}
		return d.DialContext(ctx, "tcp", r.addr())
	}
	return r.dialer.DialContext(ctx, "tcp", r.addr())
}

// withContext reports the context error when the connection failed because ctx ended.
func withContext(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
