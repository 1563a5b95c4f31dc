package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tasknest.org/internal/todo"
)

var todoRows = []string{
	"id", "user_id", "title", "description", "completed", "priority",
	"category", "due_date", "display_order", "created_at", "updated_at", "completed_at",
}

func TestFindIsOwnerScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select (.+) from todos where id=\\$1 and user_id=\\$2").
		WithArgs("t-1", "u-1").
		WillReturnRows(sqlmock.NewRows(todoRows).
			AddRow("t-1", "u-1", "buy milk", "", false, "medium", "", nil, nil, now, now, nil))

	store := NewStore(db)
	got, err := store.Find(context.Background(), "u-1", "t-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != "t-1" || got.Priority != todo.PriorityMedium {
		t.Fatalf("unexpected todo: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindForeignOwnerIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select (.+) from todos where id=\\$1 and user_id=\\$2").
		WithArgs("t-1", "u-other").
		WillReturnRows(sqlmock.NewRows(todoRows))

	store := NewStore(db)
	if _, err := store.Find(context.Background(), "u-other", "t-1"); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update todos").
		WithArgs("t-9", "u-1", "title", "", false, "low", "", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	err = store.Update(context.Background(), &todo.Todo{
		ID: "t-9", UserID: "u-1", Title: "title", Priority: todo.PriorityLow,
	})
	if !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteManyReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from todos where user_id=\\$1 and id=any").
		WithArgs("u-1", "{a,b,c}").
		WillReturnResult(sqlmock.NewResult(0, 2))

	store := NewStore(db)
	deleted, err := store.DeleteMany(context.Background(), "u-1", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCategoriesQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select distinct category from todos").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("home").AddRow("work"))

	store := NewStore(db)
	cats, err := store.Categories(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "home" || cats[1] != "work" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
