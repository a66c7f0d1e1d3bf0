package admin_services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/repotest"
	"github.com/iyunix/hammer/internal/repository/user"
	"github.com/iyunix/hammer/internal/repository/verification"
)

type fixture struct {
	db       *gorm.DB
	users    user.UserRepository
	profiles profile.ProfileRepository
	codes    verification.VerificationRepository
	svc      *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.NewDB(t)
	f := &fixture{
		db:       db,
		users:    user.NewGormUserRepository(db),
		profiles: profile.NewGormProfileRepository(db),
		codes:    verification.NewGormVerificationRepository(db),
	}
	f.svc = NewAdminService(f.users, f.profiles, f.codes, repository.NewTransactor(db))
	return f
}

func (f *fixture) addUser(t *testing.T, phone, invite string) (*domain.User, *domain.Profile) {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{PhoneNumber: phone, IsActive: true}
	require.NoError(t, u.SetUnusablePassword())
	require.NoError(t, f.users.Create(ctx, u))
	p := &domain.Profile{UserID: u.ID, InviteCode: invite}
	require.NoError(t, f.profiles.Create(ctx, p))
	return u, p
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.addUser(t, fmt.Sprintf("555000000%d", i), fmt.Sprintf("CODE0%d", i))
	}
	f.addUser(t, "4440000000", "OTHER1")

	page, err := f.svc.ListUsers(context.Background(), 1, 2, "5550")
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Users, 2)

	page, err = f.svc.ListUsers(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.Limit)
	assert.Equal(t, int64(6), page.Total)
}

func TestDeleteUserDetachesReferrals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, ownerProfile := f.addUser(t, "5550000001", "OWNER1")
	_, follower := f.addUser(t, "5550000002", "FOLLOW")
	ok, err := f.profiles.SetActivatedInviteCode(ctx, follower.ID, ownerProfile.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.svc.DeleteUser(ctx, owner.ID))

	_, err = f.users.FindByID(ctx, owner.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = f.profiles.FindByUserID(ctx, owner.ID)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	reloaded, err := f.profiles.FindByID(ctx, follower.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActivated())

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, owner.ID), domain.ErrUserNotFound)
}

func TestPurgeExpiredCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stale, err := domain.NewVerificationCode("5550000001", now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.codes.Replace(ctx, stale))
	fresh, err := domain.NewVerificationCode("5550000002", now)
	require.NoError(t, err)
	require.NoError(t, f.codes.Replace(ctx, fresh))

	n, err := f.svc.PurgeExpiredCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := f.codes.FindByPhone(ctx, "5550000002")
	require.NoError(t, err)
	assert.NotNil(t, left)
}
