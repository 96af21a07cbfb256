package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ogulcanaydogan/token-ledger/pkg/clock"
	"github.com/ogulcanaydogan/token-ledger/pkg/model"

	_ "modernc.org/sqlite"
)

// DefaultAllowance is the allowance given to a period record created implicitly.
const DefaultAllowance = 60.00

// timeLayout is fixed-width so that lexical order on the column equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dsnParams make every pooled connection wait on locks and take the write
// lock when a transaction begins, so append-and-accrue never interleaves.
const dsnParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Option configures a SQLite store.
type Option func(*SQLite)

// WithClock sets the clock used to stamp events.
func WithClock(c clock.Clock) Option {
	return func(s *SQLite) { s.clock = c }
}

// WithDefaultAllowance sets the allowance for implicitly created period records.
func WithDefaultAllowance(amount float64) Option {
	return func(s *SQLite) { s.defaultAllowance = amount }
}

// SQLite implements Storage on an SQLite database file.
type SQLite struct {
	db               *sql.DB
	clock            clock.Clock
	defaultAllowance float64
}

// NewSQLite opens or creates an SQLite database at dbPath and initializes its schema.
func NewSQLite(dbPath string, opts ...Option) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnParams)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	s := &SQLite{
		db:               db,
		clock:            clock.System{},
		defaultAllowance: DefaultAllowance,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) Initialize(ctx context.Context) error {
	if err := runMigrations(ctx, s.db); err != nil {
		return storageErr("run migrations", err)
	}
	return nil
}

func (s *SQLite) Append(ctx context.Context, event *model.UsageEvent) (*model.BudgetRecord, error) {
	ts := s.clock.Now()
	period := model.PeriodOf(ts)
	stamp := formatTime(ts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin append", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO usage_events (timestamp, actor, resource_class, in_quantity, out_quantity, total_quantity, cost, session_id, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stamp, event.Actor, event.ResourceClass,
		event.InQuantity, event.OutQuantity, event.TotalQuantity, event.Cost,
		nullString(event.SessionID), nullString(event.Notes),
	)
	if err != nil {
		return nil, storageErr("insert usage event", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("read event id", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO budgets (period, allowance, accrued, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(period) DO UPDATE SET
		   accrued = accrued + excluded.accrued,
		   updated_at = excluded.updated_at`,
		period, s.defaultAllowance, event.Cost, stamp, stamp,
	)
	if err != nil {
		return nil, storageErr("accrue budget", err)
	}

	record := &model.BudgetRecord{Period: period}
	err = tx.QueryRowContext(ctx,
		`SELECT allowance, accrued FROM budgets WHERE period = ?`, period,
	).Scan(&record.Allowance, &record.Accrued)
	if err != nil {
		return nil, storageErr("read accrued budget", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit append", err)
	}

	event.ID = id
	event.Timestamp = ts
	return record, nil
}

func (s *SQLite) SetAllowance(ctx context.Context, period string, amount float64) error {
	now := formatTime(s.clock.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (period, allowance, accrued, created_at, updated_at)
		 VALUES (?, ?, 0.0, ?, ?)
		 ON CONFLICT(period) DO UPDATE SET
		   allowance = excluded.allowance,
		   updated_at = excluded.updated_at`,
		period, amount, now, now,
	)
	if err != nil {
		return storageErr("set allowance", err)
	}
	return nil
}

func (s *SQLite) QueryEvents(ctx context.Context, since time.Time) ([]model.UsageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, actor, resource_class, in_quantity, out_quantity, total_quantity, cost, session_id, notes
		 FROM usage_events
		 WHERE timestamp >= ?
		 ORDER BY timestamp DESC, id DESC`, formatTime(since))
	if err != nil {
		return nil, storageErr("query events", err)
	}
	defer rows.Close()

	events := []model.UsageEvent{}
	for rows.Next() {
		var (
			e              model.UsageEvent
			stamp          string
			session, notes sql.NullString
		)
		if err := rows.Scan(&e.ID, &stamp, &e.Actor, &e.ResourceClass, &e.InQuantity, &e.OutQuantity,
			&e.TotalQuantity, &e.Cost, &session, &notes); err != nil {
			return nil, storageErr("scan event row", err)
		}
		if e.Timestamp, err = time.Parse(timeLayout, stamp); err != nil {
			return nil, storageErr("parse event timestamp", err)
		}
		e.SessionID = session.String
		e.Notes = notes.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate events", err)
	}
	return events, nil
}

func (s *SQLite) Aggregate(ctx context.Context, since time.Time) (*model.Summary, error) {
	cutoff := formatTime(since)

	summary := &model.Summary{Since: since}
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(in_quantity), 0),
			COALESCE(SUM(out_quantity), 0),
			COALESCE(SUM(total_quantity), 0),
			COALESCE(SUM(cost), 0)
		 FROM usage_events
		 WHERE timestamp >= ?`, cutoff,
	).Scan(
		&summary.Events,
		&summary.InQuantity,
		&summary.OutQuantity,
		&summary.TotalQuantity,
		&summary.Cost,
	)
	if err != nil {
		return nil, storageErr("aggregate usage", err)
	}

	if summary.ByActor, err = s.aggregateByField(ctx, "actor", cutoff); err != nil {
		return nil, err
	}
	if summary.ByResourceClass, err = s.aggregateByField(ctx, "resource_class", cutoff); err != nil {
		return nil, err
	}

	return summary, nil
}

// aggregateByField groups events by a column. field is always a constant
// from this package, never caller input.
func (s *SQLite) aggregateByField(ctx context.Context, field, cutoff string) ([]model.Breakdown, error) {
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*), COALESCE(SUM(total_quantity), 0), COALESCE(SUM(cost), 0)
		FROM usage_events
		WHERE timestamp >= ?
		GROUP BY %[1]s
		ORDER BY 4 DESC, %[1]s ASC`, field)

	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, storageErr("aggregate by "+field, err)
	}
	defer rows.Close()

	result := []model.Breakdown{}
	for rows.Next() {
		var b model.Breakdown
		if err := rows.Scan(&b.Name, &b.Events, &b.Quantity, &b.Cost); err != nil {
			return nil, storageErr("scan "+field+" aggregate", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate "+field+" aggregate", err)
	}
	return result, nil
}

func (s *SQLite) GetBudget(ctx context.Context, period string) (*model.BudgetRecord, error) {
	b := model.BudgetRecord{Period: period}
	err := s.db.QueryRowContext(ctx,
		`SELECT allowance, accrued FROM budgets WHERE period = ?`, period,
	).Scan(&b.Allowance, &b.Accrued)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.BudgetRecord{Period: period, Allowance: s.defaultAllowance}, nil
	}
	if err != nil {
		return nil, storageErr("get budget", err)
	}
	return &b, nil
}

func (s *SQLite) ListBudgets(ctx context.Context) ([]model.BudgetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT period, allowance, accrued FROM budgets ORDER BY period DESC`)
	if err != nil {
		return nil, storageErr("list budgets", err)
	}
	defer rows.Close()

	budgets := []model.BudgetRecord{}
	for rows.Next() {
		var b model.BudgetRecord
		if err := rows.Scan(&b.Period, &b.Allowance, &b.Accrued); err != nil {
			return nil, storageErr("scan budget row", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate budgets", err)
	}
	return budgets, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrStorageFailure, op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
