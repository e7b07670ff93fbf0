package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/testhelpers"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newService(t *testing.T) (*OTPService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, time.May, 1, 7, 0, 0, 0, time.UTC)}
	return NewOTPService(clock.Now, testhelpers.NewLogger(testhelpers.NewWriter(t))), clock
}

// issuedFor digs the current code out of the service, standing in for
// reading the delivery email.
func issuedFor(t *testing.T, s *OTPService, email string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.codes[email]
	if !ok {
		t.Fatalf("no code issued for %s", email)
	}
	return issued.code
}

func TestRequestCodeValidatesEmail(t *testing.T) {
	t.Parallel()
	service, _ := newService(t)
	for _, email := range []string{"", "not-an-email", "a@", "@b.com", "spaces in@example.com"} {
		if err := service.RequestCode(t.Context(), email); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("RequestCode(%q): want ErrInvalidEmail, got %v", email, err)
		}
	}
	if err := service.RequestCode(t.Context(), "lifter@example.com"); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()
	service, clock := newService(t)
	ctx := t.Context()
	const email = "lifter@example.com"
	if err := service.RequestCode(ctx, email); err != nil {
		t.Fatal(err)
	}
	code := issuedFor(t, service, email)
	if len(code) != codeLength || strings.Trim(code, "0123456789") != "" {
		t.Fatalf("unexpected code %q", code)
	}

	if err := service.VerifyCode(ctx, email, "000000"); code != "000000" && !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code accepted: %v", err)
	}
	if err := service.VerifyCode(ctx, email, code); err != nil {
		t.Fatalf("correct code rejected: %v", err)
	}
	// Codes are single use.
	if err := service.VerifyCode(ctx, email, code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("code reused: %v", err)
	}

	// Expired codes are rejected.
	if err := service.RequestCode(ctx, email); err != nil {
		t.Fatal(err)
	}
	code = issuedFor(t, service, email)
	clock.now = clock.now.Add(codeTTL + time.Second)
	if err := service.VerifyCode(ctx, email, code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expired code accepted: %v", err)
	}
}

func TestResendReplacesCode(t *testing.T) {
	t.Parallel()
	service, _ := newService(t)
	ctx := t.Context()
	const email = "lifter@example.com"
	if err := service.RequestCode(ctx, email); err != nil {
		t.Fatal(err)
	}
	first := issuedFor(t, service, email)
	if err := service.RequestCode(ctx, email); err != nil {
		t.Fatal(err)
	}
	second := issuedFor(t, service, email)
	if first != second {
		// The original code must no longer work.
		if err := service.VerifyCode(ctx, email, first); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("stale code accepted: %v", err)
		}
	}
	if err := service.VerifyCode(ctx, email, second); err != nil {
		t.Fatalf("fresh code rejected: %v", err)
	}
}

func TestVerifyCodeLimitsAttempts(t *testing.T) {
	t.Parallel()
	service, _ := newService(t)
	ctx := t.Context()
	const email = "lifter@example.com"
	if err := service.RequestCode(ctx, email); err != nil {
		t.Fatal(err)
	}
	code := issuedFor(t, service, email)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for range maxAttempts {
		if err := service.VerifyCode(ctx, email, wrong); !errors.Is(err, ErrInvalidCode) {
			t.Fatal("wrong code accepted")
		}
	}
	// The code is revoked after too many failures.
	if err := service.VerifyCode(ctx, email, code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("revoked code accepted: %v", err)
	}
}
