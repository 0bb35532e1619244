package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	deadline_ms BIGINT NULL,
	estimated_hours DOUBLE PRECISION NULL,
	difficulty TEXT NOT NULL DEFAULT '',
	done BOOLEAN NOT NULL DEFAULT FALSE
)`

var taskColumns = []string{"id", "position", "name", "deadline_ms", "estimated_hours", "difficulty", "done"}

// SQLRepository persists the ordered task list into sqlite or Postgres.
type SQLRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.TaskRepository = (*SQLRepository)(nil)

// Open connects to the database named by driver and dsn and creates the
// tasks table when missing.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}

	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLRepository wires an existing sql.DB. Placeholders follow the driver.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLRepository{db: db, builder: builder}
}

// Close releases the underlying database handle.
func (r *SQLRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

// LoadTasks returns every stored task in list order.
func (r *SQLRepository) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	query, args, err := r.builder.Select(taskColumns...).From("tasks").OrderBy("position ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return tasks, nil
}

// SaveTasks replaces the stored list with tasks, keeping their order.
func (r *SQLRepository) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.Delete("tasks").ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for i, task := range tasks {
		if err := r.insert(ctx, tx, task, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// AddTask appends task to the end of the list.
func (r *SQLRepository) AddTask(ctx context.Context, task domain.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.Select("COALESCE(MAX(position), -1) + 1").From("tasks").ToSql()
	if err != nil {
		return fmt.Errorf("build position: %w", err)
	}
	var next int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	if err := r.insert(ctx, tx, task, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add: %w", err)
	}
	return nil
}

// SetDone flips the completion flag of a stored task.
func (r *SQLRepository) SetDone(ctx context.Context, id uuid.UUID, done bool) error {
	query, args, err := r.builder.Update("tasks").
		Set("done", done).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.execOne(ctx, "set done", query, args)
}

// RemoveTask deletes a stored task.
func (r *SQLRepository) RemoveTask(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.builder.Delete("tasks").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return r.execOne(ctx, "remove task", query, args)
}

func (r *SQLRepository) execOne(ctx context.Context, op, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *SQLRepository) insert(ctx context.Context, tx *sql.Tx, task domain.Task, position int) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	var deadline sql.NullInt64
	if task.Deadline != nil {
		deadline = sql.NullInt64{Int64: task.Deadline.UnixMilli(), Valid: true}
	}
	var hours sql.NullFloat64
	if task.EstimatedHours != nil {
		hours = sql.NullFloat64{Float64: *task.EstimatedHours, Valid: true}
	}

	query, args, err := r.builder.Insert("tasks").
		Columns(taskColumns...).
		Values(task.ID.String(), position, task.Name, deadline, hours, task.Difficulty, task.Done).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert task %s: %w", task.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		rawID    string
		position int
		task     domain.Task
		deadline sql.NullInt64
		hours    sql.NullFloat64
	)
	if err := row.Scan(&rawID, &position, &task.Name, &deadline, &hours, &task.Difficulty, &task.Done); err != nil {
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("parse task id %q: %w", rawID, err)
	}
	task.ID = id

	if deadline.Valid {
		t := time.UnixMilli(deadline.Int64).UTC()
		task.Deadline = &t
	}
	if hours.Valid {
		h := hours.Float64
		task.EstimatedHours = &h
	}
	return task, nil
}
