package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/model"
)

var testClient = model.ClientInfo{IP: "203.0.113.7", UserAgent: "test-agent"}

func newRequest(t *testing.T, method, path string, body any, session *model.Session) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")

	m := httpctx.NewManager()
	ctx := m.SetClientToContext(r.Context(), testClient)
	if session != nil {
		ctx = m.SetSessionToContext(ctx, *session)
	}
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
