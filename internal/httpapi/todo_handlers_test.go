package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"tasknest.org/internal/todo"
)

func TestTodoCRUDOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Alice", "alice@example.com", "alice-pass")
	hdr := bearerHeader(pair.AccessToken)

	resp := c.post("/api/todos", map[string]any{
		"title":    "buy milk",
		"priority": "high",
		"category": "home",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created todo.Todo
	decodeBody(t, resp, &created)
	if created.ID == "" || created.Title != "buy milk" || created.Priority != todo.PriorityHigh {
		t.Fatalf("unexpected todo: %+v", created)
	}

	resp = c.get("/api/todos/"+created.ID, nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}

	resp = c.do(http.MethodPut, "/api/todos/"+created.ID, map[string]any{
		"title":    "buy oat milk",
		"priority": "low",
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	var updated todo.Todo
	decodeBody(t, resp, &updated)
	if updated.Title != "buy oat milk" || updated.Priority != todo.PriorityLow {
		t.Fatalf("unexpected update: %+v", updated)
	}

	resp = c.do(http.MethodPatch, "/api/todos/"+created.ID, nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", resp.StatusCode)
	}
	var toggled todo.Todo
	decodeBody(t, resp, &toggled)
	if !toggled.Completed || toggled.CompletedAt == nil {
		t.Fatalf("expected completed todo, got %+v", toggled)
	}

	resp = c.do(http.MethodDelete, "/api/todos/"+created.ID, nil, hdr)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/todos/"+created.ID, nil, hdr)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestTodosRequireAuthentication(t *testing.T) {
	c := newTestAPI(t)

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodGet, "/api/todos/some-id"},
		{http.MethodGet, "/api/todos/stats"},
		{http.MethodGet, "/api/todos/categories"},
	} {
		resp := c.do(probe.method, probe.path, nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", probe.method, probe.path, resp.StatusCode)
		}
		var body map[string]any
		decodeBody(t, resp, &body)
		if body["error"] != "authentication required" {
			t.Fatalf("%s %s: unexpected error %q", probe.method, probe.path, body["error"])
		}
	}
}

func TestForeignTodoLooksMissing(t *testing.T) {
	c := newTestAPI(t)
	owner := c.register("Owner", "owner@example.com", "owner-pass")
	intruder := c.register("Intruder", "intruder@example.com", "intruder-pass")

	resp := c.post("/api/todos", map[string]any{"title": "private"}, bearerHeader(owner.AccessToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created todo.Todo
	decodeBody(t, resp, &created)

	// The intruder gets the same 404 as for an id that never existed.
	foreign := c.get("/api/todos/"+created.ID, nil, bearerHeader(intruder.AccessToken))
	missing := c.get("/api/todos/01ZZZZZZZZZZZZZZZZZZZZZZZZ", nil, bearerHeader(intruder.AccessToken))
	if foreign.StatusCode != http.StatusNotFound || missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404/404, got %d/%d", foreign.StatusCode, missing.StatusCode)
	}
	var foreignBody, missingBody map[string]any
	decodeBody(t, foreign, &foreignBody)
	decodeBody(t, missing, &missingBody)
	if foreignBody["error"] != missingBody["error"] {
		t.Fatalf("bodies must be indistinguishable: %v vs %v", foreignBody["error"], missingBody["error"])
	}
}

func TestListFiltersOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Bob", "bob@example.com", "bob-pass")
	hdr := bearerHeader(pair.AccessToken)

	for _, body := range []map[string]any{
		{"title": "pay rent", "priority": "high", "category": "home"},
		{"title": "walk dog", "priority": "low", "category": "home"},
		{"title": "write report", "priority": "high", "category": "work"},
	} {
		resp := c.post("/api/todos", body, hdr)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := c.get("/api/todos", url.Values{"priority": {"high"}}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var list listTodosResponse
	decodeBody(t, resp, &list)
	if list.Count != 2 {
		t.Fatalf("expected 2 high-priority todos, got %d", list.Count)
	}

	resp = c.get("/api/todos", url.Values{"priority": {"urgent"}}, hdr)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad priority: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/todos", url.Values{"search": {"report"}}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &list)
	if list.Count != 1 || list.Items[0].Title != "write report" {
		t.Fatalf("unexpected search result: %+v", list)
	}
}

func TestBulkDeleteOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Carol", "carol@example.com", "carol-pass")
	hdr := bearerHeader(pair.AccessToken)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		resp := c.post("/api/todos", map[string]any{"title": title}, hdr)
		var created todo.Todo
		decodeBody(t, resp, &created)
		ids = append(ids, created.ID)
	}

	resp := c.post("/api/todos/bulk-delete", map[string]any{
		"ids": []string{ids[0], ids[1], "no-such-id"},
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bulk delete: expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	decodeBody(t, resp, &body)
	if body.DeletedCount != 2 {
		t.Fatalf("expected 2 deletions, got %d", body.DeletedCount)
	}

	list := c.get("/api/todos", nil, hdr)
	var remaining listTodosResponse
	decodeBody(t, list, &remaining)
	if remaining.Count != 1 || remaining.Items[0].ID != ids[2] {
		t.Fatalf("unexpected remaining todos: %+v", remaining)
	}
}

func TestStatsAndOverdueOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Dave", "dave@example.com", "dave-pass")
	hdr := bearerHeader(pair.AccessToken)

	resp := c.post("/api/todos", map[string]any{
		"title":    "ancient task",
		"due_date": "2020-01-01T00:00:00Z",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/todos/stats", nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats todo.Stats
	decodeBody(t, resp, &stats)
	if stats.Total != 1 || stats.Overdue != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = c.get("/api/todos/overdue", nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overdue: expected 200, got %d", resp.StatusCode)
	}
	var overdue listTodosResponse
	decodeBody(t, resp, &overdue)
	if overdue.Count != 1 || overdue.Items[0].Title != "ancient task" {
		t.Fatalf("unexpected overdue: %+v", overdue)
	}
}

func TestReorderAndCategoriesOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Eve", "eve@example.com", "eve-pass")
	hdr := bearerHeader(pair.AccessToken)

	var ids []string
	for _, body := range []map[string]any{
		{"title": "a", "category": "work"},
		{"title": "b", "category": "home"},
	} {
		resp := c.post("/api/todos", body, hdr)
		var created todo.Todo
		decodeBody(t, resp, &created)
		ids = append(ids, created.ID)
	}

	resp := c.post("/api/todos/reorder", []map[string]any{
		{"id": ids[1], "order": 0},
		{"id": ids[0], "order": 1},
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/todos/categories", nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", resp.StatusCode)
	}
	var cats []string
	decodeBody(t, resp, &cats)
	if len(cats) != 2 || cats[0] != "home" || cats[1] != "work" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestDeleteCompletedOverHTTP(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Frank", "frank@example.com", "frank-pass")
	hdr := bearerHeader(pair.AccessToken)

	resp := c.post("/api/todos", map[string]any{"title": "done", "completed": true}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = c.post("/api/todos", map[string]any{"title": "open"}, hdr)
	resp.Body.Close()

	resp = c.do(http.MethodDelete, "/api/todos/completed", nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete completed: expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	decodeBody(t, resp, &body)
	if body.DeletedCount != 1 {
		t.Fatalf("expected 1 deletion, got %d", body.DeletedCount)
	}
}

func TestAdminUsersRequiresAdminRole(t *testing.T) {
	c := newTestAPI(t)
	pair := c.register("Grace", "grace@example.com", "grace-pass")

	resp := c.get("/api/admin/users", nil, bearerHeader(pair.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("plain user: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/api/admin/users", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
