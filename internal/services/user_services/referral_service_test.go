package user_services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/hammer/internal/domain"
)

func TestActivateLinksProfiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.signUp(t, "5551110001")
	bob, _ := env.signUp(t, "5551110002")

	activated, err := env.referrals.Activate(ctx, bob.ID, strings.ToLower(aliceProfile.InviteCode))
	require.NoError(t, err)
	require.NotNil(t, activated.ActivatedInviteCodeID)
	assert.Equal(t, aliceProfile.ID, *activated.ActivatedInviteCodeID)

	view, err := env.referrals.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, view.ReferredUserIDs)
	assert.Equal(t, []string{"5551110002"}, view.ReferredPhoneNumbers)
	assert.Nil(t, view.ActivatedInviteCode)

	bobView, err := env.referrals.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, bobView.ActivatedInviteCode)
	assert.Equal(t, aliceProfile.InviteCode, *bobView.ActivatedInviteCode)
	assert.Empty(t, bobView.ReferredUserIDs)
}

func TestActivateRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, aliceProfile := env.signUp(t, "5551110001")
	bob, bobProfile := env.signUp(t, "5551110002")
	carol, carolProfile := env.signUp(t, "5551110003")

	_, err := env.referrals.Activate(ctx, alice.ID, aliceProfile.InviteCode)
	assert.ErrorIs(t, err, domain.ErrSelfActivation)

	_, err = env.referrals.Activate(ctx, alice.ID, "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)

	_, err = env.referrals.Activate(ctx, alice.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, err = env.referrals.Activate(ctx, bob.ID, aliceProfile.InviteCode)
	require.NoError(t, err)

	// Already activated wins over any other check.
	_, err = env.referrals.Activate(ctx, bob.ID, carolProfile.InviteCode)
	assert.ErrorIs(t, err, domain.ErrAlreadyActivated)
	_, err = env.referrals.Activate(ctx, bob.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyActivated)
	_, err = env.referrals.Activate(ctx, bob.ID, bobProfile.InviteCode)
	assert.ErrorIs(t, err, domain.ErrAlreadyActivated)

	// bob already points at alice.
	_, err = env.referrals.Activate(ctx, alice.ID, bobProfile.InviteCode)
	assert.ErrorIs(t, err, domain.ErrReferralCycle)

	_, err = env.referrals.Activate(ctx, carol.ID, bobProfile.InviteCode)
	require.NoError(t, err)
	_, err = env.referrals.Activate(ctx, alice.ID, carolProfile.InviteCode)
	assert.ErrorIs(t, err, domain.ErrReferralCycle)

	p, err := env.referrals.ProfileForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActivated())
}

func TestActivateUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.referrals.Activate(context.Background(), 999, "ABCDEF")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestReferredUsersOrderedByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, owner := env.signUp(t, "5552220000")

	const k = 5
	want := make([]uint, 0, k)
	for i := 0; i < k; i++ {
		u, _ := env.signUp(t, fmt.Sprintf("555222000%d", i+1))
		want = append(want, u.ID)
	}
	for i := k - 1; i >= 0; i-- {
		_, err := env.referrals.Activate(ctx, want[i], owner.InviteCode)
		require.NoError(t, err)
	}

	users, err := env.referrals.ReferredUsers(ctx, owner.ID)
	require.NoError(t, err)
	got := make([]uint, 0, len(users))
	for _, u := range users {
		got = append(got, u.ID)
	}
	assert.Equal(t, want, got)
}

func TestConcurrentActivationHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	caller, _ := env.signUp(t, "5553330000")
	codes := make([]string, 0, 6)
	for i := 0; i < cap(codes); i++ {
		_, p := env.signUp(t, fmt.Sprintf("555333000%d", i+1))
		codes = append(codes, p.InviteCode)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := env.referrals.Activate(ctx, caller.ID, code)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.KindOf(err) == domain.KindAlreadyActivated:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(code)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(codes)-1, rejected)
}

func TestCreateProfileRetriesCollisions(t *testing.T) {
	env := newTestEnv(t)

	_, taken := env.signUp(t, "5554440001")

	attempts := 0
	env.referrals.generateCode = func() (string, error) {
		attempts++
		if attempts < 3 {
			return taken.InviteCode, nil
		}
		return "FRESH1", nil
	}

	_, p := env.signUp(t, "5554440002")
	assert.Equal(t, "FRESH1", p.InviteCode)
	assert.Equal(t, 3, attempts)
}
