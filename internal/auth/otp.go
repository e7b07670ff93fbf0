// Package auth implements the email one-time-code login flow.
//
// Codes are not actually delivered anywhere. They are logged so that a
// developer can complete the flow locally, which is all the product
// needs until a mail provider is wired in.
package auth

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"net/mail"
	"sync"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
)

const (
	codeLength  = 6
	codeTTL     = 5 * time.Minute
	maxAttempts = 5
)

var (
	ErrInvalidEmail = errors.NewSentinel("invalid email address")
	ErrInvalidCode  = errors.NewSentinel("invalid or expired code")
)

type issuedCode struct {
	code     string
	expires  time.Time
	attempts int
}

// OTPService issues and verifies one-time login codes.
type OTPService struct {
	clock  func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	codes map[string]issuedCode
}

func NewOTPService(clock func() time.Time, logger *slog.Logger) *OTPService {
	if clock == nil {
		clock = time.Now
	}
	return &OTPService{
		clock:  clock,
		logger: logger,
		codes:  make(map[string]issuedCode),
	}
}

// RequestCode issues a fresh code for the address, replacing any earlier
// one. Requesting again acts as a resend.
func (s *OTPService) RequestCode(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.Wrap(ErrInvalidEmail, "parse email")
	}
	code, err := generateCode()
	if err != nil {
		return errors.Wrap(err, "generate code")
	}
	s.mu.Lock()
	s.codes[email] = issuedCode{code: code, expires: s.clock().Add(codeTTL)}
	s.mu.Unlock()

	// Stands in for email delivery.
	s.logger.LogAttrs(ctx, slog.LevelInfo, "issued login code",
		slog.String("email", email), slog.String("code", code))
	return nil
}

// VerifyCode consumes the code for the address. A code survives a failed
// attempt only a few times before it is revoked.
func (s *OTPService) VerifyCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.codes[email]
	if !ok || s.clock().After(issued.expires) {
		delete(s.codes, email)
		return ErrInvalidCode
	}
	if issued.code != code {
		issued.attempts++
		if issued.attempts >= maxAttempts {
			delete(s.codes, email)
		} else {
			s.codes[email] = issued
		}
		return ErrInvalidCode
	}
	delete(s.codes, email)
	return nil
}

func generateCode() (string, error) {
	digits := make([]byte, codeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0') + byte(n.Int64())
	}
	return string(digits), nil
}
