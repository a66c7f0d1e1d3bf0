package user_services

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/hammer/internal/domain"
	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/repotest"
	"github.com/iyunix/hammer/internal/repository/user"
	"github.com/iyunix/hammer/internal/repository/verification"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// recordingNotifier captures submitted codes.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  map[string]string
	err   error
	calls int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: map[string]string{}}
}

func (n *recordingNotifier) Submit(phone, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.err != nil {
		return n.err
	}
	n.sent[phone] = code
	return nil
}

func (n *recordingNotifier) last(phone string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[phone]
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db           *gorm.DB
	notifier     *recordingNotifier
	clock        *fakeClock
	metrics      *metrics.Metrics
	codes        verification.VerificationRepository
	users        user.UserRepository
	profiles     profile.ProfileRepository
	issuer       *CodeIssuer
	verifier     *CodeVerifier
	referrals    *ReferralService
	directory    *UserDirectory
	auth         *AuthService
	verification *VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := repotest.NewDB(t)
	tx := repository.NewTransactor(db)
	m := metrics.NewUnregistered()
	log := nopLogger{}

	env := &testEnv{
		db:       db,
		notifier: newRecordingNotifier(),
		clock:    &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		metrics:  m,
		codes:    verification.NewGormVerificationRepository(db),
		users:    user.NewGormUserRepository(db),
		profiles: profile.NewGormProfileRepository(db),
	}

	env.issuer = NewCodeIssuer(env.codes, env.notifier, log, m)
	env.issuer.now = env.clock.Now
	env.verifier = NewCodeVerifier(env.codes, log, m)
	env.verifier.now = env.clock.Now
	env.referrals = NewReferralService(env.profiles, env.users, tx, log, m)
	env.directory = NewUserDirectory(env.users, env.referrals, tx, log, m)
	env.auth = NewAuthService(env.users, "test-secret", time.Hour, log)
	env.verification = NewVerificationService(env.issuer, env.verifier, env.directory, env.auth, log)
	return env
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// signUp creates a user with a profile through the directory.
func (e *testEnv) signUp(t *testing.T, phone string) (*domain.User, *domain.Profile) {
	t.Helper()
	u, created, err := e.directory.GetOrCreate(t.Context(), phone)
	if err != nil || !created {
		t.Fatalf("sign up %s: created=%v err=%v", phone, created, err)
	}
	p, err := e.referrals.ProfileForUser(t.Context(), u.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	return u, p
}

func wrongCode(code string) string {
	if code == "0000" {
		return "1111"
	}
	return "0000"
}
