package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasknest.org/internal/auth"
	"tasknest.org/internal/todo"
)

func newGateAPI(t *testing.T) (*API, *auth.Service, *auth.MemoryStore) {
	t.Helper()
	users := auth.NewMemoryStore()
	tokens := auth.NewTokenService("gate-test-secret-0123456789")
	authSvc := auth.NewService(users, tokens)
	api := New(Options{
		Auth:     authSvc,
		Resolver: auth.NewResolver(users),
		Todos:    todo.NewService(todo.NewInMemory()),
		Version:  "test",
	})
	return api, authSvc, users
}

// probeHandler records whether a principal was attached.
func probeHandler(gotPrincipal *bool, gotUser *auth.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.PrincipalFromContext(r.Context())
		*gotPrincipal = ok
		if ok {
			*gotUser = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestGateAttachesPrincipalForValidToken(t *testing.T) {
	api, authSvc, _ := newGateAPI(t)

	_, pair, err := authSvc.Register(context.Background(), "Alice", "alice@example.com", "alice-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var attached bool
	var user auth.User
	handler := api.withAuth(probeHandler(&attached, &user))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !attached || user.Email != "alice@example.com" {
		t.Fatalf("expected principal attached, got attached=%v user=%+v", attached, user)
	}
}

func TestGateNeverRejects(t *testing.T) {
	api, authSvc, users := newGateAPI(t)
	ctx := context.Background()

	inactive, pair, err := authSvc.Register(ctx, "Bob", "bob@example.com", "bob-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := users.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	cases := map[string]string{
		"no header":          "",
		"wrong scheme":       "Basic dXNlcjpwYXNz",
		"lowercase bearer":   "bearer " + pair.AccessToken,
		"garbage token":      "Bearer not-a-token",
		"deactivated holder": "Bearer " + pair.AccessToken,
	}
	for name, header := range cases {
		var attached bool
		var user auth.User
		handler := api.withAuth(probeHandler(&attached, &user))

		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: gate must pass through, got %d", name, rr.Code)
		}
		if attached {
			t.Fatalf("%s: expected anonymous request, got principal %+v", name, user)
		}
	}
}

func TestGateSkipsPublicPaths(t *testing.T) {
	api, _, _ := newGateAPI(t)

	for _, path := range []string{
		"/healthz",
		"/readyz",
		"/metrics",
		"/v1/info",
		"/api/auth/login",
		"/static/app.css",
		"/public/logo.png",
		"/index.html",
		"/favicon.ico",
		"/app.js",
	} {
		var attached bool
		var user auth.User
		handler := api.withAuth(probeHandler(&attached, &user))

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer completely-bogus")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected pass-through, got %d", path, rr.Code)
		}
	}
}

func TestExtractBearerTokenIsStrict(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"valid":            {"Bearer abc.def.ghi", "abc.def.ghi", true},
		"empty":            {"", "", false},
		"no token":         {"Bearer ", "", false},
		"lowercase scheme": {"bearer abc", "", false},
		"no space":         {"Bearerabc", "", false},
		"basic scheme":     {"Basic abc", "", false},
	}
	for name, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("%s: got (%q, %v), want (%q, %v)", name, token, ok, tc.token, tc.ok)
		}
	}
}

func TestRequireRoleEnforcesAdmin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// No principal: 401.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	// Plain user: 403.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), auth.User{ID: "u-1", Role: auth.RoleUser}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	// Admin: 200.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), auth.User{ID: "u-2", Role: auth.RoleAdmin}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
