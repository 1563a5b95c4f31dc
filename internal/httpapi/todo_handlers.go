package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tasknest.org/internal/audit"
	"tasknest.org/internal/auth"
	"tasknest.org/internal/todo"
)

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type listTodosResponse struct {
	Items []*todo.Todo `json:"items"`
	Count int          `json:"count"`
}

func (a *API) handleTodosCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTodos(w, r)
	case http.MethodPost:
		a.createTodo(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTodoResource dispatches /api/todos/{id} and the fixed subpaths
// (bulk-delete, reorder, categories, stats, overdue, completed).
func (a *API) handleTodoResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/todos/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch path {
	case "bulk-delete":
		a.bulkDeleteTodos(w, r)
		return
	case "reorder":
		a.reorderTodos(w, r)
		return
	case "categories":
		a.listCategories(w, r)
		return
	case "stats":
		a.todoStats(w, r)
		return
	case "overdue":
		a.listOverdue(w, r)
		return
	case "completed":
		a.deleteCompleted(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getTodo(w, r, path)
	case http.MethodPut:
		a.updateTodo(w, r, path)
	case http.MethodPatch:
		a.toggleTodo(w, r, path)
	case http.MethodDelete:
		a.deleteTodo(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) listTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.todos.List(r.Context(), user.ID, f)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	if items == nil {
		items = []*todo.Todo{}
	}
	writeJSON(w, http.StatusOK, listTodosResponse{Items: items, Count: len(items)})
}

func (a *API) createTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in todo.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.todos.Create(r.Context(), user.ID, in)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "todo.created", map[string]any{
		"todo_id": t.ID,
	})
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) getTodo(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	t, err := a.todos.Get(r.Context(), user.ID, id)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var in todo.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.todos.Update(r.Context(), user.ID, id, in)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) toggleTodo(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	t, err := a.todos.Toggle(r.Context(), user.ID, id)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := a.todos.Delete(r.Context(), user.ID, id); err != nil {
		handleTodoError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "todo.deleted", map[string]any{
		"todo_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) bulkDeleteTodos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids are required")
		return
	}
	deleted, err := a.todos.BulkDelete(r.Context(), user.ID, req.IDs)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "todo.bulk_deleted", map[string]any{
		"deleted_count": deleted,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted_count": deleted,
	})
}

func (a *API) reorderTodos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPost, http.MethodPut)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var items []todo.ReorderItem
	if err := decodeJSON(w, r, &items); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.todos.Reorder(r.Context(), user.ID, items); err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order updated",
	})
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cats, err := a.todos.Categories(r.Context(), user.ID)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (a *API) todoStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	stats, err := a.todos.Stats(r.Context(), user.ID)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) listOverdue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	items, err := a.todos.Overdue(r.Context(), user.ID)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	if items == nil {
		items = []*todo.Todo{}
	}
	writeJSON(w, http.StatusOK, listTodosResponse{Items: items, Count: len(items)})
}

func (a *API) deleteCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	deleted, err := a.todos.DeleteCompleted(r.Context(), user.ID)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted_count": deleted,
	})
}

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := requireRole(w, r, auth.RoleAdmin); !ok {
		return
	}
	users, err := a.auth.ListActive(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if users == nil {
		users = []*auth.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func parseFilter(r *http.Request) (todo.Filter, error) {
	q := r.URL.Query()
	var f todo.Filter
	if raw := q.Get("completed"); raw != "" {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return todo.Filter{}, errors.New("completed must be true or false")
		}
		f.Completed = &val
	}
	if raw := q.Get("priority"); raw != "" {
		p := todo.Priority(raw)
		if !p.Valid() {
			return todo.Filter{}, errors.New("priority must be low, medium or high")
		}
		f.Priority = &p
	}
	f.Category = q.Get("category")
	f.Search = q.Get("search")
	return f, nil
}
