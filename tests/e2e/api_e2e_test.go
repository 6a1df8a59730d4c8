package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/handler"
	"github.com/vitrine/internal/mailer"
	"github.com/vitrine/internal/router"
	"github.com/vitrine/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const baseURL = "http://example.test"

type e2eSuite struct {
	handler   http.Handler
	public    httpClient
	admin     httpClient
	transport *outbox
	adminPass string

	defaultProfileID uint
	scopedProfileID  uint
	scopedSlug       string
	publishedID      uint
	publishedSlug    string
	draftSlug        string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

// outbox 记录发出的邮件
type outbox struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (o *outbox) Send(_ context.Context, _ mailer.Credentials, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

func TestE2E_PortfolioFlow(t *testing.T) {
	suite := newE2ESuite(t)
	suite.login(t)

	t.Run("admin setup", suite.testAdminSetup)
	t.Run("public pages", suite.testPublicPages)
	t.Run("contact", suite.testContact)
	t.Run("logout", suite.testLogout)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file:e2e?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	if _, err := db.EnsureUser(gdb, "admin", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	transport := &outbox{}
	mediaDir := t.TempDir()
	api := handler.NewAPI(handler.Options{
		DB:        gdb,
		Transport: transport,
		Store:     storage.NewLocalStore(mediaDir, "/media"),
		Logger:    quiet,
	})
	engine, err := router.SetupRouter(router.Options{
		API:           api,
		Logger:        quiet,
		SessionSecret: "test-session-secret",
		MediaDir:      mediaDir,
		MediaURLPath:  "/media",
	})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	return &e2eSuite{
		handler:   engine,
		public:    newLocalClient(engine, false),
		admin:     newLocalClient(engine, true),
		transport: transport,
		adminPass: "e2e-secret",
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	form := url.Values{"username": {"admin"}, "password": {s.adminPass}}
	req := newRequest(t, http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := mustDo(t, s.admin, req)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testAdminSetup(t *testing.T) {
	resp := s.adminJSON(t, http.MethodPost, "/admin/api/profiles", map[string]any{
		"firstName":   "Yama",
		"lastName":    "Sakho",
		"profession":  "Data Analyst",
		"isDefault":   true,
		"isPublished": true,
		"bio":         "Analyste de données basée à Dakar.",
	})
	expectStatus(t, resp, http.StatusCreated)
	s.defaultProfileID = uint(decodeBody(t, resp)["profile"].(map[string]any)["id"].(float64))

	resp = s.adminJSON(t, http.MethodPost, "/admin/api/profiles", map[string]any{
		"firstName":      "Awa",
		"lastName":       "Diop",
		"profession":     "Designer",
		"isPublished":    true,
		"email":          "awa@example.com",
		"mailCredential": "app-password",
	})
	expectStatus(t, resp, http.StatusCreated)
	scoped := decodeBody(t, resp)["profile"].(map[string]any)
	s.scopedProfileID = uint(scoped["id"].(float64))
	s.scopedSlug = scoped["slug"].(string)
	if s.scopedSlug != "awa-diop-designer" {
		t.Fatalf("unexpected scoped slug %q", s.scopedSlug)
	}

	resp = s.adminJSON(t, http.MethodPost, "/admin/api/content/projects", map[string]any{
		"title":       "Identité visuelle",
		"summary":     "Charte graphique complète",
		"isPublished": true,
	})
	expectStatus(t, resp, http.StatusCreated)
	item := decodeBody(t, resp)["item"].(map[string]any)
	s.publishedID = uint(item["id"].(float64))
	s.publishedSlug = item["slug"].(string)

	resp = s.adminJSON(t, http.MethodPost, "/admin/api/content/projects", map[string]any{
		"title": "Maquette confidentielle",
	})
	expectStatus(t, resp, http.StatusCreated)
	s.draftSlug = decodeBody(t, resp)["item"].(map[string]any)["slug"].(string)

	resp = s.adminJSON(t, http.MethodPost, "/admin/api/content/services", map[string]any{
		"title":       "Audit de données",
		"price":       150.5,
		"duration":    "2 jours",
		"isPublished": true,
	})
	expectStatus(t, resp, http.StatusCreated)

	for _, kind := range []string{"published", "featured"} {
		path := fmt.Sprintf("/admin/api/profiles/%d/pools/projects/%s", s.scopedProfileID, kind)
		resp = s.adminJSON(t, http.MethodPut, path, map[string]any{"ids": []uint{s.publishedID}})
		expectStatus(t, resp, http.StatusOK)
	}

	resp = s.adminJSON(t, http.MethodPost, fmt.Sprintf("/admin/api/profiles/%d/educations", s.defaultProfileID), map[string]any{
		"title":        "Master Statistique",
		"organization": "UCAD",
		"date":         "2018 - 2020",
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = mustDo(t, s.admin, newRequest(t, http.MethodGet, fmt.Sprintf("/admin/api/profiles/%d", s.scopedProfileID), nil))
	expectStatus(t, resp, http.StatusOK)
	if body := readBody(t, resp); strings.Contains(body, "app-password") {
		t.Fatalf("profile payload leaked the mail credential")
	}

	resp = mustDo(t, s.admin, newRequest(t, http.MethodGet, "/admin/dashboard", nil))
	expectStatus(t, resp, http.StatusOK)
	if body := readBody(t, resp); !strings.Contains(body, s.scopedSlug) {
		t.Fatalf("dashboard should list %q", s.scopedSlug)
	}
}

func (s *e2eSuite) testPublicPages(t *testing.T) {
	scopedBase := "/profil/nom=awa-diop&profession=designer"

	cases := []struct {
		name     string
		path     string
		status   int
		contains []string
		absent   []string
	}{
		{name: "default home", path: "/", status: http.StatusOK, contains: []string{"Yama Sakho", "Master Statistique", "Identité visuelle"}, absent: []string{"Maquette confidentielle"}},
		{name: "global projects", path: "/projets/", status: http.StatusOK, contains: []string{"Identité visuelle"}, absent: []string{"Maquette confidentielle"}},
		{name: "services", path: "/services/", status: http.StatusOK, contains: []string{"Audit de données"}},
		{name: "project detail", path: "/projets/" + s.publishedSlug + "/", status: http.StatusOK, contains: []string{"Identité visuelle"}},
		{name: "draft detail hidden", path: "/projets/" + s.draftSlug + "/", status: http.StatusNotFound},
		{name: "scoped home", path: scopedBase + "/", status: http.StatusOK, contains: []string{"Awa Diop", "Identité visuelle"}},
		{name: "scoped projects", path: scopedBase + "/projets/", status: http.StatusOK, contains: []string{"Identité visuelle"}},
		{name: "scoped contact", path: scopedBase + "/contact/", status: http.StatusOK},
		{name: "unknown profile", path: "/profil/nom=inconnu&profession=fantome/", status: http.StatusNotFound},
		{name: "legacy blog", path: "/blogue/", status: http.StatusMovedPermanently},
		{name: "health", path: "/healthz", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := mustDo(t, s.public, newRequest(t, http.MethodGet, tc.path, nil))
			expectStatus(t, resp, tc.status)
			body := readBody(t, resp)
			for _, want := range tc.contains {
				if !strings.Contains(body, want) {
					t.Fatalf("expected %s to contain %q", tc.path, want)
				}
			}
			for _, unwanted := range tc.absent {
				if strings.Contains(body, unwanted) {
					t.Fatalf("expected %s not to contain %q", tc.path, unwanted)
				}
			}
		})
	}
}

func (s *e2eSuite) testContact(t *testing.T) {
	next := "/profil/nom=awa-diop&profession=designer/contact/"
	form := url.Values{
		"profile": {s.scopedSlug},
		"next":    {next},
		"name":    {"Moussa"},
		"email":   {"moussa@example.com"},
		"subject": {"Collaboration"},
		"message": {"Bonjour, parlons d'un projet."},
	}
	req := newRequest(t, http.MethodPost, "/contact/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// 带 cookie jar 的客户端才能读到 flash
	client := newLocalClient(s.handler, true)
	resp := mustDo(t, client, req)
	expectStatus(t, resp, http.StatusSeeOther)
	if got := resp.Header.Get("Location"); got != next {
		t.Fatalf("unexpected redirect %q", got)
	}
	if s.transport.count() != 1 {
		t.Fatalf("expected one delivered message, got %d", s.transport.count())
	}

	resp = mustDo(t, client, newRequest(t, http.MethodGet, next, nil))
	expectStatus(t, resp, http.StatusOK)
	if body := readBody(t, resp); !strings.Contains(body, "votre message a été envoyé") {
		t.Fatalf("expected success flash on the contact page")
	}
}

func (s *e2eSuite) testLogout(t *testing.T) {
	resp := mustDo(t, s.admin, newRequest(t, http.MethodGet, "/admin/logout", nil))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected logout redirect, got %d", resp.StatusCode)
	}

	resp = mustDo(t, s.admin, newRequest(t, http.MethodGet, "/admin/api/profiles", nil))
	expectStatus(t, resp, http.StatusUnauthorized)
}

func (s *e2eSuite) adminJSON(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	req := newRequest(t, method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return mustDo(t, s.admin, req)
}

func newRequest(t *testing.T, method, path string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	return req
}

func mustDo(t *testing.T, client httpClient, req *http.Request) *http.Response {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, readBody(t, resp))
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(data)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(readBody(t, resp)), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return payload
}
