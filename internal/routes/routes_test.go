package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/config"
	"github.com/ordoo/ordoo_backend/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:        "ordoo-test",
		AppEnv:         "dev",
		JWTSecret:      "test-secret",
		SessionTTL:     time.Hour,
		OTPTTL:         10 * time.Minute,
		ResetTokenTTL:  time.Hour,
		BcryptCost:     4,
		FrontendURL:    "http://localhost:3000",
		UploadChunkTTL: time.Hour,
	}

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func jsonRequest(t *testing.T, app *fiber.App, method, target, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 && strings.Contains(resp.Header.Get(fiber.HeaderContentType), "json") {
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", payload, err)
		}
	}
	return resp, decoded
}

func TestSignupLoginProfileFlow(t *testing.T) {
	app := newTestApp(t)

	resp, body := jsonRequest(t, app, fiber.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email":    "flow@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("signup status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("signup response missing token: %v", body)
	}

	// Protected route rejects anonymous requests.
	resp, _ = jsonRequest(t, app, fiber.MethodGet, "/api/user/profile", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("anonymous profile status = %d, want 401", resp.StatusCode)
	}

	resp, body = jsonRequest(t, app, fiber.MethodGet, "/api/user/profile", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("profile status = %d, want 200: %v", resp.StatusCode, body)
	}
	userBody, _ := body["user"].(map[string]any)
	if userBody["email"] != "flow@example.com" {
		t.Fatalf("profile user = %v", body["user"])
	}

	// Login replaces the session and the old token stops working.
	resp, body = jsonRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "flow@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status = %d, want 200: %v", resp.StatusCode, body)
	}
	newToken, _ := body["token"].(string)
	if newToken == "" {
		t.Fatalf("login response missing token: %v", body)
	}

	resp, _ = jsonRequest(t, app, fiber.MethodGet, "/api/user/profile", newToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("profile with new token status = %d, want 200", resp.StatusCode)
	}

	// Logout invalidates the current token.
	resp, _ = jsonRequest(t, app, fiber.MethodPost, "/api/auth/logout", newToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}
	resp, _ = jsonRequest(t, app, fiber.MethodGet, "/api/user/profile", newToken, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("profile after logout status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginDistinguishesUnknownUserFromBadPassword(t *testing.T) {
	app := newTestApp(t)

	resp, _ := jsonRequest(t, app, fiber.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email":    "known@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	resp, _ = jsonRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown user status = %d, want 404", resp.StatusCode)
	}

	resp, _ = jsonRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "known@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", resp.StatusCode)
	}
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	app := newTestApp(t)

	for i, want := range []int{fiber.StatusCreated, fiber.StatusConflict} {
		resp, body := jsonRequest(t, app, fiber.MethodPost, "/api/auth/signup", "", fiber.Map{
			"email":    "dup@example.com",
			"password": "secret123",
		})
		if resp.StatusCode != want {
			t.Fatalf("signup #%d status = %d, want %d: %v", i+1, resp.StatusCode, want, body)
		}
	}
}

func TestProfileSetupAndUploadPaths(t *testing.T) {
	app := newTestApp(t)

	resp, body := jsonRequest(t, app, fiber.MethodPost, "/api/auth/signup", "", fiber.Map{
		"email":    "paths@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	token, _ := body["token"].(string)

	resp, body = jsonRequest(t, app, fiber.MethodPut, "/api/user/profile/setup", token, fiber.Map{
		"fullName": "Ada Lovelace",
		"bio":      "first programmer",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("PUT /api/user/profile/setup status = %d, want 200: %v", resp.StatusCode, body)
	}
	profileBody, _ := body["profile"].(map[string]any)
	if profileBody["full_name"] != "Ada Lovelace" {
		t.Fatalf("profile = %v", body["profile"])
	}

	// The upload endpoints reject a request without a multipart file part
	// with 400, which also pins that the paths are registered at all.
	for _, target := range []string{"/api/upload", "/api/upload-chunk"} {
		resp, body = jsonRequest(t, app, fiber.MethodPost, target, token, fiber.Map{})
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("POST %s status = %d, want 400: %v", target, resp.StatusCode, body)
		}
	}
}

func TestHealthzWithoutBackends(t *testing.T) {
	app := newTestApp(t)

	resp, body := jsonRequest(t, app, fiber.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("healthz status = %d, want 200: %v", resp.StatusCode, body)
	}
}
