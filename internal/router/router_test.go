package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/decodeit/internal/handler"
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, uploadDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := handler.NewAPI(handler.Services{Tokens: service.NewTokenService("router-test", 0)})
	return SetupRouter(api, Options{SessionSecret: "test-secret", UploadDir: uploadDir, UploadURLPath: "static/uploads/"})
}

func TestSetupRouterServesUploads(t *testing.T) {
	uploadDir := t.TempDir()
	fileName := "example.png"
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := newTestRouter(t, uploadDir)

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/"+fileName, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestSetupRouterRoutes(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", status: http.StatusOK},
		{name: "openapi", method: http.MethodGet, path: "/api/openapi.json", status: http.StatusOK},
		{name: "profile requires token", method: http.MethodGet, path: "/api/user/profile", status: http.StatusUnauthorized},
		{name: "deed requires token", method: http.MethodGet, path: "/api/deed/today", status: http.StatusUnauthorized},
		{name: "stats requires token", method: http.MethodGet, path: "/api/games/bottle/stats", status: http.StatusUnauthorized},
		{name: "userdata requires token", method: http.MethodPut, path: "/api/data/userdata", status: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestWithCORS(t *testing.T) {
	r := newTestRouter(t, t.TempDir())

	tests := []struct {
		name        string
		origins     []string
		origin      string
		allowOrigin string
		credentials string
	}{
		{name: "any origin", origins: nil, origin: "http://localhost:3000", allowOrigin: "*"},
		{name: "listed origin", origins: []string{"https://decode.example.com/", " http://localhost:3000"}, origin: "http://localhost:3000", allowOrigin: "http://localhost:3000", credentials: "true"},
		{name: "unlisted origin", origins: []string{"https://decode.example.com"}, origin: "http://evil.example.com", allowOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := WithCORS(r, tt.origins)

			req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.allowOrigin {
				t.Fatalf("expected allow origin %q, got %q", tt.allowOrigin, got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != tt.credentials {
				t.Fatalf("expected allow credentials %q, got %q", tt.credentials, got)
			}
		})
	}
}
