package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	gomail "github.com/wneessen/go-mail"

	"hndigest/internal/config"
	"hndigest/internal/ports"
)

const (
	initialRetryDelay = 5 * time.Second
	maxRetryDelay     = 60 * time.Second
)

// ErrMissingCredentials is returned at construction time when the SMTP
// account is not fully configured.
var ErrMissingCredentials = errors.New("smtp username, password and recipient are required")

// Sender delivers digests over SMTP with capped exponential-backoff retry.
type Sender struct {
	host       string
	port       int
	username   string
	password   string
	recipient  string
	maxRetries int
	logger     *slog.Logger
}

var _ ports.Mailer = (*Sender)(nil)

// NewSender validates credentials up front; a misconfigured account fails
// here, never at send time.
func NewSender(cfg config.EmailConfig, log *slog.Logger) (*Sender, error) {
	if cfg.Username == "" || cfg.Password == "" || cfg.Recipient == "" {
		return nil, ErrMissingCredentials
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Sender{
		host:       cfg.Host,
		port:       cfg.Port,
		username:   cfg.Username,
		password:   cfg.Password,
		recipient:  cfg.Recipient,
		maxRetries: maxRetries,
		logger:     log,
	}, nil
}

// SendDigest submits the digest, retrying transient failures with
// doubling delays capped at maxRetryDelay.
func (s *Sender) SendDigest(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(s.recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryDelay
	policy.MaxInterval = maxRetryDelay

	attempt := 0
	operation := func() error {
		attempt++
		if err := s.send(ctx, msg); err != nil {
			s.warn("email send attempt failed", "attempt", attempt, "error", err)
			return err
		}
		s.info("email sent", "attempt", attempt, "recipient", s.recipient)
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(s.maxRetries-1)), ctx))
	if err != nil {
		return fmt.Errorf("send digest email after %d attempts: %w", attempt, err)
	}
	return nil
}

func (s *Sender) send(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("dial and send: %w", err)
	}

	return nil
}

// SendFallback notifies the recipient that digest generation failed.
func (s *Sender) SendFallback(ctx context.Context, reason string) error {
	subject := "HN AI Digest - generation failed"
	body := fmt.Sprintf("The digest could not be generated.\n\nReason: %s\n", reason)
	return s.SendDigest(ctx, subject, body)
}

func (s *Sender) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sender) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
