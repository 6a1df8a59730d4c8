package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json %s: %v", body, err)
	}
	return payload
}

func TestAdminAPIRequiresSession(t *testing.T) {
	env := setupHandlerTest(t)

	if w := env.get("/admin/api/profiles"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for api without session, got %d", w.Code)
	}
	w := env.get("/admin/dashboard")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := setupHandlerTest(t)
	env.login(t)

	w := env.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestDashboardListsProfiles(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)
	env.createProfile(t, "Yama", "Sakho", "Data Analyst", true)

	w := env.get("/admin/dashboard", cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "yama-sakho-data-analyst") {
		t.Fatalf("expected dashboard to list the profile slug")
	}
}

func TestProfileAPIKeepsCredentialOnUpdate(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)

	w := env.sendJSON(http.MethodPost, "/admin/api/profiles", `{"firstName":"Yama","lastName":"Sakho","profession":"Data Analyst","isPublished":true,"isDefault":true,"email":"yama@example.com","mailCredential":"secret"}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeJSON(t, w.Body.Bytes())["profile"].(map[string]any)
	if created["slug"] != "yama-sakho-data-analyst" || created["hasMailCredential"] != true {
		t.Fatalf("unexpected created profile %+v", created)
	}
	if _, leaked := created["mailCredential"]; leaked {
		t.Fatalf("mail credential must not be serialized")
	}
	id := int(created["id"].(float64))

	w = env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/profiles/%d", id), `{"firstName":"Yama","lastName":"Sakho","profession":"Data Scientist","isPublished":true,"isDefault":true,"email":"yama@example.com"}`, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decodeJSON(t, w.Body.Bytes())["profile"].(map[string]any)
	if updated["slug"] != "yama-sakho-data-scientist" {
		t.Fatalf("expected slug to follow the profession, got %v", updated["slug"])
	}
	if updated["hasMailCredential"] != true {
		t.Fatalf("blank credential on update should keep the stored one")
	}

	w = env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/profiles/%d", id), `{"navbarAvatarShape":"hexagon"}`, cookies...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid avatar shape, got %d", w.Code)
	}

	if w := env.get("/admin/api/profiles/9999", cookies...); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing profile, got %d", w.Code)
	}
}

func TestContentAPIAndPools(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)
	profile := env.createProfile(t, "Awa", "Diop", "Designer", false)

	w := env.sendJSON(http.MethodPost, "/admin/api/content/projects", `{"title":"Refonte du site","isPublished":true,"repositoryUrl":"https://example.com/repo"}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	item := decodeJSON(t, w.Body.Bytes())["item"].(map[string]any)
	if item["slug"] != "refonte-du-site" || item["repositoryUrl"] != "https://example.com/repo" {
		t.Fatalf("unexpected project payload %+v", item)
	}
	id := int(item["id"].(float64))

	w = env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/content/projets/%d", id), `{"title":"Refonte complète","isPublished":true}`, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeJSON(t, w.Body.Bytes())["item"].(map[string]any)["slug"]; got != "refonte-du-site" {
		t.Fatalf("slug must not change on update, got %v", got)
	}

	w = env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/profiles/%d/pools/projects/featured", profile.ID), fmt.Sprintf(`{"ids":[%d,%d]}`, id, id), cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ids := decodeJSON(t, w.Body.Bytes())["ids"].([]any); len(ids) != 1 {
		t.Fatalf("expected deduplicated pool, got %v", ids)
	}

	w = env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/profiles/%d/pools/projects/featured", profile.ID), `{"ids":[424242]}`, cookies...)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown content id, got %d", w.Code)
	}
	if w := env.sendJSON(http.MethodPut, fmt.Sprintf("/admin/api/profiles/%d/pools/recettes/featured", profile.ID), `{"ids":[]}`, cookies...); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", w.Code)
	}

	if w := env.sendJSON(http.MethodPost, "/admin/api/content/blog", `{"title":"   "}`, cookies...); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", w.Code)
	}

	w = env.get("/admin/api/fields/services", cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if groups := decodeJSON(t, w.Body.Bytes())["groups"].([]any); len(groups) != 5 {
		t.Fatalf("expected five field groups, got %d", len(groups))
	}

	if w := env.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/api/content/projects/%d", id), nil), cookies...); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/api/content/projects/%d", id), nil), cookies...); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestSectionAPI(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)
	profile := env.createProfile(t, "Yama", "Sakho", "Data Analyst", true)

	w := env.sendJSON(http.MethodPost, fmt.Sprintf("/admin/api/profiles/%d/sections", profile.ID), `{"type":"competences","title":"Compétences"}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	section := decodeJSON(t, w.Body.Bytes())["section"].(map[string]any)
	sectionID := int(section["id"].(float64))

	w = env.sendJSON(http.MethodPost, fmt.Sprintf("/admin/api/sections/%d/items", sectionID), `{"title":"Python","subtitle":"Avancé"}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.sendJSON(http.MethodPost, fmt.Sprintf("/admin/api/profiles/%d/experiences", profile.ID), `{"title":"Analyste","organization":"Orange","date":"2022 - 2024"}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	page := env.get("/")
	if !strings.Contains(page.Body.String(), "Compétences") || !strings.Contains(page.Body.String(), "Orange") {
		t.Fatalf("expected home page to render sections and experiences")
	}

	if w := env.sendJSON(http.MethodPost, fmt.Sprintf("/admin/api/profiles/%d/sections", profile.ID), `{"type":"unknown","title":"X"}`, cookies...); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid section type, got %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/api/sections/%d", sectionID), nil), cookies...); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", w.Code)
	}
	if w := env.sendJSON(http.MethodPost, fmt.Sprintf("/admin/api/sections/%d/items", sectionID), `{"title":"Go"}`, cookies...); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted section, got %d", w.Code)
	}
}

func TestUploadImageStoresFile(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", name)
		if err != nil {
			t.Fatalf("create form file failed: %v", err)
		}
		part.Write(data)
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/admin/api/uploads", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return env.do(req, cookies...)
	}

	w := upload("pixel.png", pngData.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeJSON(t, w.Body.Bytes())["data"].(map[string]any)
	fileURL := data["url"].(string)
	if !strings.HasPrefix(fileURL, "/media/uploads/") || !strings.HasSuffix(fileURL, ".png") {
		t.Fatalf("unexpected file url %q", fileURL)
	}
	if data["width"].(float64) != 4 || data["height"].(float64) != 3 {
		t.Fatalf("unexpected dimensions %+v", data)
	}
	if _, err := os.Stat(filepath.Join(env.mediaDir, strings.TrimPrefix(fileURL, "/media/"))); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}
	if served := env.get(fileURL); served.Code != http.StatusOK {
		t.Fatalf("expected stored media to be served, got %d", served.Code)
	}

	if w := upload("notes.txt", []byte("pas une image")); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non image upload, got %d", w.Code)
	}
}

func TestDeleteUploadRemovesStoredFile(t *testing.T) {
	env := setupHandlerTest(t)
	cookies := env.login(t)

	stored := filepath.Join(env.mediaDir, "uploads", "20240102-logo.png")
	if err := os.MkdirAll(filepath.Dir(stored), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(stored, []byte("png"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	outside := filepath.Join(env.mediaDir, "keep.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if w := env.do(httptest.NewRequest(http.MethodDelete, "/admin/api/uploads/uploads/20240102-logo.png", nil)); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}

	w := env.do(httptest.NewRequest(http.MethodDelete, "/admin/api/uploads/uploads/20240102-logo.png", nil), cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}

	// 再次删除保持幂等
	if w := env.do(httptest.NewRequest(http.MethodDelete, "/admin/api/uploads/uploads/20240102-logo.png", nil), cookies...); w.Code != http.StatusOK {
		t.Fatalf("expected idempotent delete, got %d", w.Code)
	}

	for _, target := range []string{"/admin/api/uploads/keep.txt", "/admin/api/uploads/uploads/"} {
		if w := env.do(httptest.NewRequest(http.MethodDelete, target, nil), cookies...); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", target, w.Code)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside uploads must survive: %v", err)
	}
}
