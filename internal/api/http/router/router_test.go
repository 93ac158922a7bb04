package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/folio-server/database"
	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/audit"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/password"
	"github.com/dtroode/folio-server/internal/ratelimit"
	"github.com/dtroode/folio-server/internal/repository/sqldb"
	"github.com/dtroode/folio-server/internal/service"
	"github.com/dtroode/folio-server/internal/session"
	"github.com/dtroode/folio-server/internal/testutil"
)

const adminPassword = "portfolio-admin"

type outbox struct {
	mu   sync.Mutex
	msgs []model.EmailMessage
}

func (o *outbox) Send(_ context.Context, msg model.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs, "no email sent")
	code := codePattern.FindString(o.msgs[len(o.msgs)-1].Text)
	require.NotEmpty(t, code)
	return code
}

type app struct {
	handler http.Handler
	audit   *audit.Logger
	clock   *testutil.Clock
	mail    *outbox
}

func newApp(t *testing.T) *app {
	t.Helper()

	ctx := context.Background()
	conn, err := sqldb.NewConnection(ctx, database.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	log := testutil.MakeNoopLogger()
	clock := testutil.NewClock()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	auditLog := audit.NewLogger(sqldb.NewAuditRepository(conn), clock.Now, log)

	creds := service.NewCredentials(sqldb.NewCredentialRepository(conn), hasher, clock.Now, log)
	codes := service.NewCodes(sqldb.NewCodeRepository(conn), model.CodeTTL, clock.Now, log)
	mail := &outbox{}
	mfa := service.NewMFA(creds, codes, mail, hasher, auditLog, log)
	auth := service.NewAuth(creds, mfa,
		session.NewRegistry(model.SessionTTL, clock.Now),
		session.NewRegistry(model.ChallengeTTL, clock.Now),
		auditLog, log)
	require.NoError(t, creds.Initialize(ctx, adminPassword))

	r := New(Services{
		Auth:    auth,
		MFA:     mfa,
		Audit:   auditLog,
		Auditor: auditLog,
		DB:      conn,
	}, Options{
		Environment:  "test",
		SessionTTL:   model.SessionTTL,
		CORSOrigins:  []string{"https://example.com"},
		LoginLimiter: ratelimit.NewMemory(ratelimit.Policy{Name: PolicyLogin, Max: 5, Window: ratelimit.DefaultWindow}, clock.Now),
		AdminLimiter: ratelimit.NewMemory(ratelimit.Policy{Name: PolicyAdmin, Max: 100, Window: ratelimit.DefaultWindow}, clock.Now),
		Clock:        clock.Now,
	}, httpctx.NewManager(), log)

	return &app{handler: r.Register(), audit: auditLog, clock: clock, mail: mail}
}

func (a *app) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.RemoteAddr = "203.0.113.50:40000"
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (a *app) count(t *testing.T, typ model.AuditType) int {
	t.Helper()
	events, err := a.audit.Recent(context.Background(), audit.MaxRecent)
	require.NoError(t, err)
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestRouter_SessionLifecycle(t *testing.T) {
	a := newApp(t)

	rec, _ := a.do(t, http.MethodGet, "/api/admin/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	rec, body = a.do(t, http.MethodGet, "/api/admin/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "test", body["environment"])

	rec, _ = a.do(t, http.MethodPost, "/api/admin/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodGet, "/api/admin/status", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/api/admin/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "logout is idempotent")
}

func TestRouter_LoginRateLimit(t *testing.T) {
	a := newApp(t)

	for i := 0; i < 5; i++ {
		rec, _ := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong-password"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, _ := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong-password"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, 5, a.count(t, model.AuditLoginFailed))
	assert.Equal(t, 1, a.count(t, model.AuditRateLimited))

	rec, _ = a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "the right password is blocked too until the window slides")
}

func TestRouter_MFAFlow(t *testing.T) {
	a := newApp(t)

	_, body := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	token := body["token"].(string)

	rec, body := a.do(t, http.MethodPost, "/api/admin/mfa/setup", token, map[string]string{"email": "admin@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	codes, ok := body["backupCodes"].([]any)
	require.True(t, ok)
	require.Len(t, codes, 8)

	_, body = a.do(t, http.MethodGet, "/api/admin/mfa/status", token, nil)
	assert.Equal(t, true, body["enabled"])
	assert.EqualValues(t, 8, body["backupCodesCount"])

	rec, body = a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["mfaRequired"])
	assert.Nil(t, body["token"])
	challenge := body["challengeId"].(string)

	rec, body = a.do(t, http.MethodPost, "/api/admin/login/verify", "", map[string]string{
		"challengeId": challenge,
		"backupCode":  codes[0].(string),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second, _ := body["token"].(string)
	require.NotEmpty(t, second)

	_, body = a.do(t, http.MethodGet, "/api/admin/mfa/status", second, nil)
	assert.EqualValues(t, 7, body["backupCodesCount"])

	rec, body = a.do(t, http.MethodPost, "/api/admin/mfa/verify-backup", second, map[string]string{"code": codes[0].(string)})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestRouter_ChangePasswordRequiresCurrent(t *testing.T) {
	a := newApp(t)

	_, body := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	token := body["token"].(string)

	rec, _ := a.do(t, http.MethodPost, "/api/admin/change-password", token, map[string]string{
		"currentPassword": "not-the-password",
		"newPassword":     "another-password",
		"confirmPassword": "another-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/api/admin/change-password", token, map[string]string{
		"currentPassword": adminPassword,
		"newPassword":     "short",
		"confirmPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	assert.Equal(t, http.StatusOK, rec.Code, "password is unchanged")
}

func TestRouter_PasswordResetWithoutEmail(t *testing.T) {
	a := newApp(t)

	_, body := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	token := body["token"].(string)

	rec, body := a.do(t, http.MethodPost, "/api/admin/password-reset/request", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 0, a.count(t, model.AuditCodeIssued))
}

func TestRouter_PasswordResetRejectsLongPassword(t *testing.T) {
	a := newApp(t)

	_, body := a.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": adminPassword})
	token := body["token"].(string)

	rec, _ := a.do(t, http.MethodPost, "/api/admin/mfa/setup", token, map[string]string{"email": "admin@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/api/admin/password-reset/request", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	code := a.mail.lastCode(t)

	rec, body = a.do(t, http.MethodPost, "/api/admin/password-reset/confirm", token, map[string]string{
		"code":        code,
		"newPassword": strings.Repeat("a", 80),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "newPassword", body["field"])

	rec, body = a.do(t, http.MethodPost, "/api/admin/password-reset/confirm", token, map[string]string{
		"code":        code,
		"newPassword": "fresh-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = a.do(t, http.MethodPost, "/api/admin/change-password", token, map[string]string{
		"currentPassword": "fresh-password",
		"newPassword":     strings.Repeat("b", 73),
		"confirmPassword": strings.Repeat("b", 73),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "newPassword", body["field"])
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	a := newApp(t)

	rec, body := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = a.do(t, http.MethodGet, "/api/admin/contacts", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	a := newApp(t)

	r := httptest.NewRequest(http.MethodOptions, "/api/admin/login", nil)
	r.Header.Set("Origin", "https://example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
