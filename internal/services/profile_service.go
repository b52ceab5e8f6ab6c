package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/log"
)

// ProfileInput is the raw input of the onboarding and profile flows.
type ProfileInput struct {
	Name     string `validate:"required,max=50"`
	Currency string `validate:"required,iso4217"`
}

type ProfileService struct {
	store    ledger.UserStore
	recorder ActivityRecorder
}

// NewProfileService creates the service. recorder may be nil.
func NewProfileService(store ledger.UserStore, recorder ActivityRecorder) *ProfileService {
	return &ProfileService{store: store, recorder: recorder}
}

// GetProfile returns the settings row, or the default user before onboarding.
func (s *ProfileService) GetProfile(ctx context.Context) (core.User, error) {
	u, ok, err := s.store.GetUser(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		return core.DefaultUser(), nil
	}
	return u, nil
}

// CompleteOnboarding saves the user's name and currency and marks the
// installation as onboarded.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, in ProfileInput) (core.User, error) {
	u, err := s.save(ctx, in)
	if err != nil {
		return core.User{}, err
	}
	record(ctx, s.recorder, core.ActivityProfile, fmt.Sprintf("Welcome, %s", u.Name))
	return u, nil
}

// UpdateProfile changes the name and currency.
func (s *ProfileService) UpdateProfile(ctx context.Context, in ProfileInput) (core.User, error) {
	u, err := s.save(ctx, in)
	if err != nil {
		return core.User{}, err
	}
	record(ctx, s.recorder, core.ActivityProfile, "Updated profile")
	return u, nil
}

func (s *ProfileService) save(ctx context.Context, in ProfileInput) (core.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := validateInput(in); err != nil {
		return core.User{}, err
	}

	u := core.User{Name: in.Name, Currency: in.Currency, Onboarded: true}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("save user: %w", err)
	}
	slog.InfoContext(ctx, "Profile saved", log.FieldOperation, log.OpUpdate, "currency", u.Currency)
	return u, nil
}
