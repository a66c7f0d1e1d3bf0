package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/repository/repotest"
)

func newCode(t *testing.T, phone string, now time.Time) *domain.VerificationCode {
	t.Helper()
	v, err := domain.NewVerificationCode(phone, now)
	require.NoError(t, err)
	return v
}

func TestReplaceKeepsOneRecordPerPhone(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	repo := NewGormVerificationRepository(db)
	now := time.Now().UTC()

	first := newCode(t, "5551234567", now)
	require.NoError(t, repo.Replace(ctx, first))
	second := newCode(t, "5551234567", now.Add(time.Second))
	require.NoError(t, repo.Replace(ctx, second))

	var count int64
	require.NoError(t, db.Model(&domain.VerificationCode{}).Where("phone_number = ?", "5551234567").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repo.FindByPhone(ctx, "5551234567")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, second.Code, got.Code)
}

func TestFindByPhoneMissing(t *testing.T) {
	repo := NewGormVerificationRepository(repotest.NewDB(t))

	got, err := repo.FindByPhone(context.Background(), "5550000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConsumeIsOneShot(t *testing.T) {
	ctx := context.Background()
	repo := NewGormVerificationRepository(repotest.NewDB(t))

	v := newCode(t, "5551234567", time.Now().UTC())
	require.NoError(t, repo.Replace(ctx, v))

	ok, err := repo.Consume(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByPhone(ctx, "5551234567")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewGormVerificationRepository(repotest.NewDB(t))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Replace(ctx, newCode(t, "5550000001", now.Add(-time.Hour))))
	require.NoError(t, repo.Replace(ctx, newCode(t, "5550000002", now)))

	removed, err := repo.DeleteExpired(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	gone, err := repo.FindByPhone(ctx, "5550000001")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.FindByPhone(ctx, "5550000002")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	require.NoError(t, repo.DeleteByPhone(ctx, "5550000002"))
	kept, err = repo.FindByPhone(ctx, "5550000002")
	require.NoError(t, err)
	assert.Nil(t, kept)
}
