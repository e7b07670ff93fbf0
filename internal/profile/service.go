package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/kv"
)

// ErrNoProfile is returned before onboarding has completed.
var ErrNoProfile = errors.NewSentinel("no profile")

// Service persists profiles and onboarding drafts as documents.
type Service struct {
	documents kv.Store
	clock     func() time.Time
	logger    *slog.Logger
}

func NewService(documents kv.Store, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{documents: documents, clock: clock, logger: logger}
}

// Get loads the stored profile.
func (s *Service) Get(ctx context.Context, userEmail string) (Profile, error) {
	raw, err := s.documents.Get(ctx, userEmail, kv.KeyProfile)
	if errors.Is(err, kv.ErrNotFound) {
		return Profile{}, ErrNoProfile
	}
	if err != nil {
		return Profile{}, errors.Wrap(err, "load profile")
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, errors.Wrap(err, "decode profile")
	}
	return p, nil
}

// Save validates and stores the profile, stamping the timestamps, and
// clears any onboarding draft. Email always follows the authenticated
// user.
func (s *Service) Save(ctx context.Context, userEmail string, p Profile) (Profile, error) {
	now := s.clock()
	if p.Weight != 0 {
		p.WeightKg = p.NormalizeWeight(p.Weight)
		p.Weight = 0
	}
	if err := p.Validate(now); err != nil {
		return Profile{}, err
	}
	p.Email = userEmail
	p.UpdatedAt = now
	if existing, err := s.Get(ctx, userEmail); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Profile{}, errors.Wrap(err, "encode profile")
	}
	if err := s.documents.Set(ctx, userEmail, kv.KeyProfile, raw); err != nil {
		return Profile{}, errors.Wrap(err, "store profile")
	}
	if err := s.documents.Delete(ctx, userEmail, kv.KeyOnboardingDraft); err != nil {
		return Profile{}, errors.Wrap(err, "clear onboarding draft")
	}
	return p, nil
}

// Delete removes the profile, used on logout.
func (s *Service) Delete(ctx context.Context, userEmail string) error {
	if err := s.documents.Delete(ctx, userEmail, kv.KeyProfile); err != nil {
		return errors.Wrap(err, "delete profile")
	}
	return nil
}

// Metrics derives the fitness figures from the stored profile.
func (s *Service) Metrics(ctx context.Context, userEmail string) (Metrics, error) {
	p, err := s.Get(ctx, userEmail)
	if err != nil {
		return Metrics{}, err
	}
	return p.DeriveMetrics(s.clock()), nil
}

// SaveDraft overwrites the onboarding draft.
func (s *Service) SaveDraft(ctx context.Context, userEmail string, draft Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return errors.Wrap(err, "encode onboarding draft")
	}
	if err := s.documents.Set(ctx, userEmail, kv.KeyOnboardingDraft, raw); err != nil {
		return errors.Wrap(err, "store onboarding draft")
	}
	return nil
}

// Draft loads the onboarding draft, empty when none was saved. A
// malformed draft is discarded rather than blocking onboarding.
func (s *Service) Draft(ctx context.Context, userEmail string) (Draft, error) {
	raw, err := s.documents.Get(ctx, userEmail, kv.KeyOnboardingDraft)
	if errors.Is(err, kv.ErrNotFound) {
		return Draft{}, nil
	}
	if err != nil {
		return Draft{}, errors.Wrap(err, "load onboarding draft")
	}
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding malformed onboarding draft",
			errors.SlogError(err))
		return Draft{}, s.ClearDraft(ctx, userEmail)
	}
	return draft, nil
}

// ClearDraft drops the onboarding draft.
func (s *Service) ClearDraft(ctx context.Context, userEmail string) error {
	if err := s.documents.Delete(ctx, userEmail, kv.KeyOnboardingDraft); err != nil {
		return errors.Wrap(err, "clear onboarding draft")
	}
	return nil
}
