package admin

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kathitsondhi/portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const stubTemplates = `
{{define "privacy.html"}}privacy {{.retention}}{{end}}
{{define "admin-login.html"}}login {{.error}}{{end}}
{{define "admin-error.html"}}error {{.error}}{{end}}
{{define "admin-dashboard.html"}}visitors={{.stats.TotalVisitors}} messages={{len .messages}}{{end}}
{{define "admin-visitors.html"}}{{range .visitors}}[{{.Path}}]{{end}}{{end}}
{{define "admin-messages.html"}}{{range .messages}}[{{.Name}}:{{.Status}}]{{end}}{{end}}
`

type fixture struct {
	router  *gin.Engine
	store   *store.Store
	auth    *Auth
	handler *Handler
	tracker *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open("sqlite", filepath.Join(t.TempDir(), "admin.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	auth, err := NewAuth("coach", "s3cret")
	require.NoError(t, err)

	f := &fixture{store: s, auth: auth}
	f.handler = NewHandler(auth, s, 365*24*time.Hour, zerolog.Nop())
	f.tracker = NewTracker(auth, s, zerolog.Nop())

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(stubTemplates)))
	r.Use(f.tracker.Middleware())
	f.handler.Register(r)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "home") })
	f.router = r
	return f
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {"coach"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.serve(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatal("login did not set the admin cookie")
	return nil
}

func (f *fixture) authed(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(f.login(t))
	return f.serve(req)
}

func TestHashIP(t *testing.T) {
	a, err := NewAuth("u", "p")
	require.NoError(t, err)
	b, err := NewAuth("u", "p")
	require.NoError(t, err)

	h := a.HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, a.HashIP("203.0.113.7"))
	assert.NotEqual(t, h, a.HashIP("203.0.113.8"))
	assert.NotEqual(t, h, b.HashIP("203.0.113.7"), "salts differ per process")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"username": {"coach"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.serve(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestProtectedRoutes_RedirectWithoutCookie(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/admin/dashboard", "/admin/visitors", "/admin/messages", "/admin/export/stats"} {
		rec := f.serve(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})
	assert.Equal(t, http.StatusFound, f.serve(req).Code)
}

func TestRequireAdminAPI(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/api/secret", f.auth.RequireAdminAPI(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/secret", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.authed(t, http.MethodGet, "/api/secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(httptest.NewRequest(http.MethodGet, "/admin/logout", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestTracker_RecordsPageViews(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	req.Header.Set("User-Agent", "test-agent")
	f.serve(req)

	dnt := httptest.NewRequest(http.MethodGet, "/", nil)
	dnt.Header.Set("DNT", "1")
	f.serve(dnt)

	f.serve(httptest.NewRequest(http.MethodGet, "/privacy", nil))
	f.serve(httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	f.tracker.Wait()

	visits, err := f.store.RecentVisitors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "/", visits[0].Path)
	assert.Equal(t, "test-agent", visits[0].UserAgent)
	assert.Equal(t, f.auth.HashIP("198.51.100.4"), visits[0].HashedIP)
	assert.NotContains(t, visits[0].HashedIP, "198.51")
}

func TestDashboardAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveContactMessage(ctx, &store.ContactMessage{
		ID: "m1", Name: "Riley", Email: "riley@example.com", Message: "Hello there coach", CreatedAt: time.Now(),
	}))
	f.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	f.tracker.Wait()

	rec := f.authed(t, http.MethodGet, "/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visitors=1 messages=1", rec.Body.String())

	rec = f.authed(t, http.MethodGet, "/admin/visitors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[/]", rec.Body.String())

	rec = f.authed(t, http.MethodPost, "/admin/messages/m1/read")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.authed(t, http.MethodGet, "/admin/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[Riley:read]", rec.Body.String())

	rec = f.authed(t, http.MethodPost, "/admin/messages/missing/read")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportStats(t *testing.T) {
	f := newFixture(t)
	rec := f.authed(t, http.MethodGet, "/admin/export/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=admin-stats.json", rec.Header().Get("Content-Disposition"))

	var stats store.VisitorStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalVisitors)
}

func TestCleanup_RemovesOldVisits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, f.store.RecordVisit(ctx, &store.Visit{HashedIP: "aaaa", Path: "/", Timestamp: now.Add(-400 * 24 * time.Hour)}))
	require.NoError(t, f.store.RecordVisit(ctx, &store.Visit{HashedIP: "bbbb", Path: "/", Timestamp: now.Add(-time.Hour)}))

	rec := f.authed(t, http.MethodPost, "/admin/privacy/delete-visitor-data")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, 1, out["deleted"])

	visits, err := f.store.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "bbbb", visits[0].HashedIP)
}

func TestPrivacyPage(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(httptest.NewRequest(http.MethodGet, "/privacy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "privacy 12 months", rec.Body.String())
}

func TestRetentionLabel(t *testing.T) {
	assert.Equal(t, "12 months", retentionLabel(365*24*time.Hour))
	assert.Equal(t, "2 years", retentionLabel(2*365*24*time.Hour))
	assert.Equal(t, "90 days", retentionLabel(90*24*time.Hour))
	assert.Equal(t, "1 day", retentionLabel(24*time.Hour))
}
