package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAlerter struct {
	mu  sync.Mutex
	got []store.ContactMessage
}

func (f *fakeAlerter) Go(m store.ContactMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, m)
}

type countingRecorder struct{ stored int }

func (r *countingRecorder) RecordMessageStored() { r.stored++ }

type fixture struct {
	router   *gin.Engine
	store    *store.Store
	alerter  *fakeAlerter
	recorder *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open("sqlite", filepath.Join(t.TempDir(), "api.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{store: s, alerter: &fakeAlerter{}, recorder: &countingRecorder{}}
	h := NewHandler(s, f.alerter, f.recorder, zerolog.Nop())

	r := gin.New()
	r.Use(CORS([]string{"https://coach.example.com"}))
	deny := func(c *gin.Context) {
		if c.GetHeader("X-Admin") != "yes" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Next()
	}
	h.Register(r.Group("/api"), deny)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRoot(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World", decode(t, rec)["message"])
}

func TestCreateContactMessage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/contact",
		`{"name":"Jordan","email":"jordan@example.com","message":"Looking for a speed block before the season."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, contactAccepted, out["message"])
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)

	stored, err := f.store.GetContactMessage(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", stored.Name)
	assert.Equal(t, store.StatusNew, stored.Status)

	assert.Equal(t, 1, f.recorder.stored)
	require.Len(t, f.alerter.got, 1)
	assert.Equal(t, id, f.alerter.got[0].ID)
}

func TestCreateContactMessage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"short name", `{"name":"J","email":"j@example.com","message":"long enough message"}`, "Name must be at least 2 characters"},
		{"bad email", `{"name":"Jordan","email":"not-an-email","message":"long enough message"}`, "Invalid email"},
		{"short message", `{"name":"Jordan","email":"j@example.com","message":"hi"}`, "Message must be at least 10 characters"},
		{"missing name", `{"email":"j@example.com","message":"long enough message"}`, "Name is required"},
		{"malformed", `{"name":`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodPost, "/api/contact", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tt.detail, decode(t, rec)["detail"])
			assert.Empty(t, f.alerter.got)
		})
	}
}

func TestCreateContactMessage_StorageFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	rec := f.do(http.MethodPost, "/api/contact",
		`{"name":"Jordan","email":"jordan@example.com","message":"Looking for a speed block."}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, contact.GenericFailure, decode(t, rec)["detail"])
	assert.Empty(t, f.alerter.got)
}

func TestListContactMessages_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/api/contact", `{"name":"Jordan","email":"jordan@example.com","message":"First message here"}`)

	rec := f.do(http.MethodGet, "/api/contact", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/contact", "", "X-Admin", "yes")
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []store.ContactMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "First message here", msgs[0].Message)
}

func TestStatusChecks(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/status", `{"client_name":"uptime"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uptime", decode(t, rec)["client_name"])

	rec = f.do(http.MethodPost, "/api/status", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Client name is required", decode(t, rec)["detail"])

	rec = f.do(http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var checks []store.StatusCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
	assert.Len(t, checks, 1)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodOptions, "/api/contact", "", "Origin", "https://coach.example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://coach.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = f.do(http.MethodOptions, "/api/contact", "", "Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(http.MethodGet, "/api/", "", "Origin", "https://coach.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://coach.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
