// File: internal/services/user_services/referral_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/user"
)

const maxInviteCodeAttempts = 10

// ErrInviteCodeExhausted means no free invite code was found within the
// attempt budget.
var ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")

// ReferralService owns profiles and the invite-code activation graph.
type ReferralService struct {
	profiles profile.ProfileRepository
	users    user.UserRepository
	tx       repository.Transactor
	logger   Logger
	metrics  *metrics.Metrics

	generateCode func() (string, error)
}

func NewReferralService(profiles profile.ProfileRepository, users user.UserRepository, tx repository.Transactor, logger Logger, m *metrics.Metrics) *ReferralService {
	return &ReferralService{
		profiles:     profiles,
		users:        users,
		tx:           tx,
		logger:       logger,
		metrics:      m,
		generateCode: domain.GenerateInviteCode,
	}
}

// CreateProfile creates the profile of a freshly created user. Each insert
// runs in its own savepoint so a code collision can be retried without
// aborting the caller's transaction.
func (s *ReferralService) CreateProfile(ctx context.Context, u *domain.User) (*domain.Profile, error) {
	for attempt := 1; attempt <= maxInviteCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}

		p := &domain.Profile{UserID: u.ID, InviteCode: code}
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.profiles.Create(ctx, p)
		})
		if err == nil {
			s.logger.Debug("profile created", "user_id", u.ID, "profile_id", p.ID)
			return p, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.logger.Warn("invite code collision, regenerating", "user_id", u.ID, "attempt", attempt)
	}
	return nil, ErrInviteCodeExhausted
}

// ProfileForUser loads the profile owned by userID.
func (s *ReferralService) ProfileForUser(ctx context.Context, userID uint) (*domain.Profile, error) {
	return s.profiles.FindByUserID(ctx, userID)
}

// Activate links the profile of userID to the owner of inviteCode. The whole check and
// write run in one transaction and end in a conditional update, so of two
// racing activations only one can succeed.
func (s *ReferralService) Activate(ctx context.Context, userID uint, inviteCode string) (*domain.Profile, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))

	var activated *domain.Profile
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.profiles.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if p.IsActivated() {
			return domain.ErrAlreadyActivated
		}
		if code == "" {
			return domain.NewMissingFieldError("invite_code")
		}

		target, err := s.profiles.FindByInviteCode(ctx, code)
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrInviteNotFound
		}
		if err != nil {
			return err
		}
		if target.ID == p.ID {
			return domain.ErrSelfActivation
		}
		if err := s.checkCycle(ctx, p.ID, target); err != nil {
			return err
		}

		ok, err := s.profiles.SetActivatedInviteCode(ctx, p.ID, target.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyActivated
		}

		activated, err = s.profiles.FindByID(ctx, p.ID)
		return err
	})

	s.metrics.InviteActivations.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		if domain.KindOf(err) == "" {
			s.logger.Error("invite activation failed", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to activate invite code: %w", err)
		}
		s.logger.Info("invite activation rejected", "user_id", userID, "reason", string(domain.KindOf(err)))
		return nil, err
	}

	s.logger.Info("invite code activated", "user_id", userID, "profile_id", activated.ID, "target_profile_id", *activated.ActivatedInviteCodeID)
	return activated, nil
}

// checkCycle follows the target's outbound activations and rejects the
// edge when the chain reaches the activating profile.
func (s *ReferralService) checkCycle(ctx context.Context, profileID uint, target *domain.Profile) error {
	seen := map[uint]struct{}{target.ID: {}}
	next := target.ActivatedInviteCodeID
	for next != nil {
		if *next == profileID {
			return domain.ErrReferralCycle
		}
		if _, ok := seen[*next]; ok {
			return nil
		}
		seen[*next] = struct{}{}

		p, err := s.profiles.FindByID(ctx, *next)
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		next = p.ActivatedInviteCodeID
	}
	return nil
}

// ReferredUsers returns the users whose profile activated profileID's
// invite code, ordered by id.
func (s *ReferralService) ReferredUsers(ctx context.Context, profileID uint) ([]domain.User, error) {
	ids, err := s.profiles.FindReferrerUserIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByIDs(ctx, ids)
}

// GetProfile builds the profile view of userID.
func (s *ReferralService) GetProfile(ctx context.Context, userID uint) (*domain.ProfileView, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	referred, err := s.ReferredUsers(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	view := &domain.ProfileView{
		PhoneNumber:          p.User.PhoneNumber,
		InviteCode:           p.InviteCode,
		ReferredUserIDs:      make([]uint, 0, len(referred)),
		ReferredPhoneNumbers: make([]string, 0, len(referred)),
	}
	if p.ActivatedInviteCode != nil {
		code := p.ActivatedInviteCode.InviteCode
		view.ActivatedInviteCode = &code
	}
	for _, u := range referred {
		view.ReferredUserIDs = append(view.ReferredUserIDs, u.ID)
		view.ReferredPhoneNumbers = append(view.ReferredPhoneNumbers, u.PhoneNumber)
	}
	return view, nil
}
