package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/mocks"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/testutil"
)

func newAuthHandler(t *testing.T, secure bool) (*Auth, *mocks.AuthService) {
	svc := mocks.NewAuthService(t)
	h := NewAuth(svc, httpctx.NewManager(), CookieConfig{Secure: secure, MaxAge: model.SessionTTL}, testutil.MakeNoopLogger())
	return h, svc
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpctx.SessionCookieName {
			return c
		}
	}
	t.Fatalf("cookie %s not set", httpctx.SessionCookieName)
	return nil
}

func TestAuth_Login(t *testing.T) {
	h, svc := newAuthHandler(t, true)

	expires := time.Date(2026, 1, 1, 16, 0, 0, 0, time.UTC)
	session := model.Session{Token: "tok", ExpiresAt: expires}
	svc.On("Login", mock.Anything, "hunter22", testClient).
		Return(model.LoginResult{Session: &session}, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "hunter22"}, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tok", body["token"])

	c := sessionCookie(t, rec)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(model.SessionTTL.Seconds()), c.MaxAge)
}

func TestAuth_Login_MFARequired(t *testing.T) {
	h, svc := newAuthHandler(t, false)

	svc.On("Login", mock.Anything, "hunter22", testClient).
		Return(model.LoginResult{MFARequired: true, ChallengeID: "chal", CodeSent: false}, nil)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "hunter22"}, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["mfaRequired"])
	assert.Equal(t, "chal", body["challengeId"])
	assert.Equal(t, false, body["codeSent"])
	assert.Contains(t, body["message"], "backup code")
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuth_Login_Errors(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		h, svc := newAuthHandler(t, false)
		svc.On("Login", mock.Anything, "nope", testClient).
			Return(model.LoginResult{}, model.ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "nope"}, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("malformed body", func(t *testing.T) {
		h, _ := newAuthHandler(t, false)

		r := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		h.Login(rec, r)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuth_VerifyLogin(t *testing.T) {
	h, svc := newAuthHandler(t, false)

	svc.On("CompleteLogin", mock.Anything, "chal", "", "ABCD-1234", testClient).
		Return(model.Session{Token: "tok2"}, nil)

	req := map[string]string{"challengeId": "chal", "backupCode": "ABCD-1234"}
	rec := httptest.NewRecorder()
	h.VerifyLogin(rec, newRequest(t, http.MethodPost, "/api/admin/login/verify", req, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok2", sessionCookie(t, rec).Value)
}

func TestAuth_VerifyLogin_BadCode(t *testing.T) {
	h, svc := newAuthHandler(t, false)

	svc.On("CompleteLogin", mock.Anything, "chal", "123456", "", testClient).
		Return(model.Session{}, model.ErrCodeExpired)

	req := map[string]string{"challengeId": "chal", "code": "123456"}
	rec := httptest.NewRecorder()
	h.VerifyLogin(rec, newRequest(t, http.MethodPost, "/api/admin/login/verify", req, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgAuthFailed, decodeBody(t, rec)["message"])
}

func TestAuth_Logout(t *testing.T) {
	h, svc := newAuthHandler(t, false)
	svc.On("Logout", mock.Anything, "tok", testClient).Return()

	r := newRequest(t, http.MethodPost, "/api/admin/logout", nil, nil)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestAuth_Logout_CookieAndBearer(t *testing.T) {
	h, svc := newAuthHandler(t, false)
	svc.On("Logout", mock.Anything, "stale", testClient).Return().Once()
	svc.On("Logout", mock.Anything, "tok", testClient).Return().Once()

	r := newRequest(t, http.MethodPost, "/api/admin/logout", nil, nil)
	r.AddCookie(&http.Cookie{Name: httpctx.SessionCookieName, Value: "stale"})
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Logout_WithoutToken(t *testing.T) {
	h, _ := newAuthHandler(t, false)

	rec := httptest.NewRecorder()
	h.Logout(rec, newRequest(t, http.MethodPost, "/api/admin/logout", nil, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestAuth_ChangePassword(t *testing.T) {
	session := &model.Session{Token: "tok"}
	req := map[string]string{
		"currentPassword": "old-password",
		"newPassword":     "new-password",
		"confirmPassword": "new-password",
	}

	t.Run("success", func(t *testing.T) {
		h, svc := newAuthHandler(t, false)
		svc.On("ChangePassword", mock.Anything, "tok", "old-password", "new-password", "new-password", testClient).
			Return(nil)

		rec := httptest.NewRecorder()
		h.ChangePassword(rec, newRequest(t, http.MethodPost, "/api/admin/change-password", req, session))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])
	})

	t.Run("wrong current password", func(t *testing.T) {
		h, svc := newAuthHandler(t, false)
		svc.On("ChangePassword", mock.Anything, "tok", "old-password", "new-password", "new-password", testClient).
			Return(model.ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		h.ChangePassword(rec, newRequest(t, http.MethodPost, "/api/admin/change-password", req, session))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		h, svc := newAuthHandler(t, false)
		svc.On("ChangePassword", mock.Anything, "tok", "old-password", "new-password", "new-password", testClient).
			Return(model.NewInputError("confirmPassword", "passwords do not match"))

		rec := httptest.NewRecorder()
		h.ChangePassword(rec, newRequest(t, http.MethodPost, "/api/admin/change-password", req, session))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "confirmPassword", decodeBody(t, rec)["field"])
	})

	t.Run("no session", func(t *testing.T) {
		h, _ := newAuthHandler(t, false)

		rec := httptest.NewRecorder()
		h.ChangePassword(rec, newRequest(t, http.MethodPost, "/api/admin/change-password", req, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
