package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/hammer/internal/metrics"
	"github.com/iyunix/hammer/internal/repository"
	"github.com/iyunix/hammer/internal/repository/profile"
	"github.com/iyunix/hammer/internal/repository/repotest"
	"github.com/iyunix/hammer/internal/repository/user"
	"github.com/iyunix/hammer/internal/repository/verification"
	"github.com/iyunix/hammer/internal/services"
	"github.com/iyunix/hammer/internal/services/admin_services"
	"github.com/iyunix/hammer/internal/services/user_services"
)

type discardNotifier struct{}

func (discardNotifier) Submit(string, string) error { return nil }

type testServer struct {
	*httptest.Server
	directory *user_services.UserDirectory
	auth      *user_services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := repotest.NewDB(t)
	tx := repository.NewTransactor(db)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := services.NewNopLogger()

	codes := verification.NewGormVerificationRepository(db)
	users := user.NewGormUserRepository(db)
	profiles := profile.NewGormProfileRepository(db)

	issuer := user_services.NewCodeIssuer(codes, discardNotifier{}, log, m)
	verifier := user_services.NewCodeVerifier(codes, log, m)
	referrals := user_services.NewReferralService(profiles, users, tx, log, m)
	directory := user_services.NewUserDirectory(users, referrals, tx, log, m)
	authService := user_services.NewAuthService(users, "handler-secret", time.Hour, log)
	verificationService := user_services.NewVerificationService(issuer, verifier, directory, authService, log)

	router := NewRouter(RouterConfig{
		Auth: NewAuthHandler(verificationService, log, AuthHandlerOptions{
			ExposeVerificationCode: true,
			TokenTTL:               time.Hour,
		}),
		Profile:  NewProfileHandler(referrals, log),
		Admin:    NewAdminHandler(admin_services.NewAdminService(users, profiles, codes, tx), log),
		Sessions: authService,
		Logger:   log,
		Gatherer: reg,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, directory: directory, auth: authService}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

// login runs the two-step phone flow and returns the session token.
func (s *testServer) login(t *testing.T, phone string) (string, bool) {
	t.Helper()

	resp, body := s.do(t, http.MethodPost, "/api/auth/request_code/", "", map[string]string{"phone_number": phone})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	code, _ := body["code"].(string)
	require.Len(t, code, 4)

	resp, body = s.do(t, http.MethodPost, "/api/auth/verify_code/", "", map[string]string{"phone_number": phone, "code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, body["token"], cookie.Value)

	return body["token"].(string), body["created"].(bool)
}

func TestPhoneLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	token, created := srv.login(t, "5551234567")
	assert.True(t, created)

	resp, body := srv.do(t, http.MethodGet, "/api/profile/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "5551234567", body["phone_number"])
	assert.Len(t, body["invite_code"], 6)
	assert.Nil(t, body["activated_invite_code"])
	assert.Equal(t, []interface{}{}, body["referred_users_phone_numbers"])

	_, created = srv.login(t, "5551234567")
	assert.False(t, created)
}

func TestVerifyCodeErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodPost, "/api/auth/verify_code/", "", map[string]string{"phone_number": "5551234567"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_FIELD", body["error_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/auth/verify_code/", "", map[string]string{"phone_number": "5551234567", "code": "1234"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/auth/request_code/", "", map[string]string{"phone_number": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["error_code"])
	assert.Equal(t, "phone_number", body["field"])
}

func TestRequestCodeAcceptsForm(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().PostForm(srv.URL+"/api/auth/request_code/", url.Values{"phone_number": {"555 123 4567"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestActivateInvite(t *testing.T) {
	srv := newTestServer(t)

	aliceToken, _ := srv.login(t, "5551110001")
	bobToken, _ := srv.login(t, "5551110002")

	_, alice := srv.do(t, http.MethodGet, "/api/profile/", aliceToken, nil)
	aliceCode := alice["invite_code"].(string)

	resp, body := srv.do(t, http.MethodPost, "/api/profile/activate_invite/", bobToken, map[string]string{"invite_code": aliceCode})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, aliceCode, body["activated_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/profile/activate_invite/", bobToken, map[string]string{"invite_code": aliceCode})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_ACTIVATED", body["error_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/profile/activate_invite/", aliceToken, map[string]string{"invite_code": aliceCode})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SELF_ACTIVATION", body["error_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/profile/activate_invite/", aliceToken, map[string]string{"invite_code": "NOPE00"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "CODE_NOT_FOUND", body["error_code"])

	_, alice = srv.do(t, http.MethodGet, "/api/profile/", aliceToken, nil)
	assert.Equal(t, []interface{}{"5551110002"}, alice["referred_users_phone_numbers"])
}

func TestProfileRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/api/profile/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/api/profile/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	srv := newTestServer(t)

	userToken, _ := srv.login(t, "5551110001")
	resp, _ := srv.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin, err := srv.directory.CreateSuperuser(t.Context(), "5559990000", "correct-horse")
	require.NoError(t, err)
	adminToken, err := srv.auth.IssueSession(admin)
	require.NoError(t, err)

	resp, body := srv.do(t, http.MethodGet, "/api/admin/users?search=555111", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	users := body["users"].([]interface{})
	id := int(users[0].(map[string]interface{})["id"].(float64))

	resp, _ = srv.do(t, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(id), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = srv.do(t, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(id), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "USER_NOT_FOUND", body["error_code"])

	resp, body = srv.do(t, http.MethodPost, "/api/admin/verification_codes/purge", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["deleted"])
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t, "5551234567")

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw := new(strings.Builder)
	_, err = io.Copy(raw, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "hammer_users_created_total 1")
}
