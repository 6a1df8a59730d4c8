package handler_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
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
	"github.com/vitrine/internal/service"
	"github.com/vitrine/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type recordingTransport struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (t *recordingTransport) Send(_ context.Context, _ mailer.Credentials, msg mailer.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.messages = append(t.messages, msg)
	return nil
}

func (t *recordingTransport) sent() []mailer.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]mailer.Message(nil), t.messages...)
}

type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	transport *recordingTransport
	profiles  *service.ProfileService
	content   *service.ContentService
	mediaDir  string
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB.Close()
	})

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	transport := &recordingTransport{}
	mediaDir := t.TempDir()
	api := handler.NewAPI(handler.Options{
		DB:        gdb,
		Transport: transport,
		Store:     storage.NewLocalStore(mediaDir, "/media"),
		Logger:    quiet,
	})

	r, err := router.SetupRouter(router.Options{
		API:           api,
		Logger:        quiet,
		SessionSecret: "test-secret",
		MediaDir:      mediaDir,
		MediaURLPath:  "/media",
	})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	return &testEnv{
		db:        gdb,
		router:    r,
		transport: transport,
		profiles:  service.NewProfileService(gdb, quiet),
		content:   service.NewContentService(gdb),
		mediaDir:  mediaDir,
	}
}

func (e *testEnv) createProfile(t *testing.T, first, last, profession string, isDefault bool) *db.SiteProfile {
	t.Helper()
	profile := db.NewSiteProfile()
	profile.FirstName = first
	profile.LastName = last
	profile.Profession = profession
	profile.IsDefault = isDefault
	profile.IsPublished = true
	if err := e.profiles.Create(context.Background(), &profile); err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return &profile
}

func (e *testEnv) createProject(t *testing.T, title string, published bool) *db.Project {
	t.Helper()
	item := db.Project{Publishable: db.Publishable{Title: title, Summary: title + " summary", IsPublished: published}}
	if err := e.content.Projects.Create(context.Background(), &item); err != nil {
		t.Fatalf("create project failed: %v", err)
	}
	return &item
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func (e *testEnv) sendJSON(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, cookies...)
}

// login 创建管理员并返回登录后的会话 cookie
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	if _, err := db.EnsureUser(e.db, "admin", "s3cret"); err != nil {
		t.Fatalf("ensure user failed: %v", err)
	}
	w := e.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	if w.Code != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie after login")
	}
	return cookies
}
