package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tasknest.org/internal/ids"
	"tasknest.org/internal/todo"
)

// Store implements todo.Store on PostgreSQL. Every query is owner-scoped:
// the user id is part of the WHERE clause, so a foreign id behaves exactly
// like a missing one.
type Store struct {
	db *sql.DB
}

var _ todo.Store = (*Store)(nil)

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle (used with sqlmock in tests).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const todoColumns = `id, user_id, title, description, completed, priority, category, due_date, display_order, created_at, updated_at, completed_at`

func (s *Store) Create(ctx context.Context, t *todo.Todo) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into todos(id, user_id, title, description, completed, priority, category, due_date, display_order, completed_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, t.ID, t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), t.Category, t.DueDate, t.DisplayOrder, t.CompletedAt)
	return err
}

func (s *Store) Find(ctx context.Context, userID, id string) (*todo.Todo, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+todoColumns+` from todos where id=$1 and user_id=$2`, id, userID)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, todo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, userID string, f todo.Filter) ([]*todo.Todo, error) {
	var (
		completed sql.NullBool
		priority  sql.NullString
		category  sql.NullString
		search    sql.NullString
	)
	if f.Completed != nil {
		completed = sql.NullBool{Bool: *f.Completed, Valid: true}
	}
	if f.Priority != nil {
		priority = sql.NullString{String: string(*f.Priority), Valid: true}
	}
	if f.Category != "" {
		category = sql.NullString{String: f.Category, Valid: true}
	}
	if f.Search != "" {
		search = sql.NullString{String: f.Search, Valid: true}
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+todoColumns+` from todos
		where user_id=$1
		  and ($2::boolean is null or completed=$2)
		  and ($3::text is null or priority=$3)
		  and ($4::text is null or category=$4)
		  and ($5::text is null or title ilike '%'||$5||'%' or description ilike '%'||$5||'%')
		order by created_at desc
	`, userID, completed, priority, category, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*todo.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *Store) Update(ctx context.Context, t *todo.Todo) error {
	res, err := s.db.ExecContext(ctx, `
		update todos
		set title=$3, description=$4, completed=$5, priority=$6, category=$7,
		    due_date=$8, display_order=$9, completed_at=$10, updated_at=now()
		where id=$1 and user_id=$2
	`, t.ID, t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), t.Category, t.DueDate, t.DisplayOrder, t.CompletedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from todos where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteMany(ctx context.Context, userID string, todoIDs []string) (int64, error) {
	// ids are ULIDs, safe to pack into an array literal
	arr := "{" + strings.Join(todoIDs, ",") + "}"
	res, err := s.db.ExecContext(ctx,
		`delete from todos where user_id=$1 and id=any($2::text[])`, userID, arr)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteCompleted(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from todos where user_id=$1 and completed=true`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SetDisplayOrder(ctx context.Context, userID, id string, order int) error {
	res, err := s.db.ExecContext(ctx,
		`update todos set display_order=$3, updated_at=now() where id=$1 and user_id=$2`,
		id, userID, order)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return todo.ErrNotFound
	}
	return nil
}

func (s *Store) Categories(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select distinct category from todos
		where user_id=$1 and category is not null and category <> ''
		order by category
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, err
		}
		res = append(res, cat)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*todo.Todo, error) {
	var (
		t        todo.Todo
		priority string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &priority,
		&t.Category, &t.DueDate, &t.DisplayOrder, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = todo.Priority(priority)
	return &t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return todo.ErrNotFound
	}
	return nil
}
