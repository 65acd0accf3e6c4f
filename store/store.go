package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lixenwraith/gridpath/navigation"
)

// Driver names a database/sql driver
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverPgx    Driver = "pgx"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrNotFound      = errors.New("run not found")
	ErrClosed        = errors.New("store closed")
)

func (d Driver) dialect() string {
	if d == DriverPgx {
		return "postgres"
	}
	return "sqlite3"
}

// Run is one recorded query
type Run struct {
	ID           string
	Scenario     string
	Query        string
	Fingerprint  string
	Width        int
	Height       int
	Start        navigation.Position
	Goal         navigation.Position
	Status       string
	Cost         int
	Expanded     int
	RawPoints    int
	SmoothPoints int
	Duration     time.Duration
	CreatedAt    time.Time
}

// NewRun fills a Run from a solve result
func NewRun(scenario, query string, g *navigation.Grid, start, goal navigation.Position, res navigation.Result, took time.Duration) Run {
	return Run{
		Scenario:     scenario,
		Query:        query,
		Fingerprint:  g.Fingerprint(),
		Width:        g.Width(),
		Height:       g.Height(),
		Start:        start,
		Goal:         goal,
		Status:       res.Status.String(),
		Cost:         res.Cost,
		Expanded:     res.Expanded,
		RawPoints:    len(res.Raw),
		SmoothPoints: len(res.Smooth),
		Duration:     took,
	}
}

// Store records run history through database/sql.
// Enqueue is non-blocking and drained by a single writer goroutine.
type Store struct {
	db     *sql.DB
	driver Driver
	log    *zap.Logger

	// sendMu orders Enqueue sends before close(ch)
	sendMu  sync.RWMutex
	closed  bool
	ch      chan Run
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64

	errMu    sync.Mutex
	writeErr error
}

// Open connects, applies migrations and starts the writer
func Open(ctx context.Context, driver Driver, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if err := initPragmas(ctx, db); err != nil {
			return nil, multierr.Append(err, db.Close())
		}
	case DriverPgx:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, multierr.Append(fmt.Errorf("ping: %w", err), db.Close())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	if err := runMigrations(ctx, db, driver); err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	s := &Store{
		db:     db,
		driver: driver,
		log:    log,
		ch:     make(chan Run, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	log.Info("store opened", zap.String("driver", string(driver)))
	return s, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close drains queued runs and closes the database
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.ch)
		s.sendMu.Unlock()
		s.wg.Wait()

		s.errMu.Lock()
		err = multierr.Append(s.writeErr, s.db.Close())
		s.errMu.Unlock()

		if n := s.dropped.Load(); n > 0 {
			s.log.Warn("store dropped runs", zap.Int64("count", n))
		}
	})
	return err
}

// Enqueue schedules r for writing, dropping it when the writer falls behind
func (s *Store) Enqueue(r Run) {
	if s == nil {
		return
	}
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

// Dropped counts runs discarded by Enqueue
func (s *Store) Dropped() int64 { return s.dropped.Load() }

func (s *Store) loop() {
	for r := range s.ch {
		if _, err := s.Record(context.Background(), r); err != nil {
			s.log.Error("store write failed", zap.String("scenario", r.Scenario), zap.Error(err))
			s.errMu.Lock()
			s.writeErr = multierr.Append(s.writeErr, err)
			s.errMu.Unlock()
		}
	}
}

// Record writes r synchronously, assigning an ID and timestamp when unset
func (s *Store) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO runs (
		id, scenario, query, fingerprint, width, height,
		start_x, start_y, goal_x, goal_y,
		status, cost, expanded, raw_points, smooth_points, duration_ns, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Scenario, r.Query, r.Fingerprint, r.Width, r.Height,
		r.Start.X, r.Start.Y, r.Goal.X, r.Goal.Y,
		r.Status, r.Cost, r.Expanded, r.RawPoints, r.SmoothPoints,
		int64(r.Duration), r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// timeLayout is fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = `id, scenario, query, fingerprint, width, height,
	start_x, start_y, goal_x, goal_y,
	status, cost, expanded, raw_points, smooth_points, duration_ns, created_at`

// Get loads one run by id
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// Recent lists the newest runs first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary is an aggregate over recorded runs
type Summary struct {
	Runs     int
	ByStatus map[string]int
	Expanded int64
	Duration time.Duration
	Grids    int
}

// Summarize aggregates all recorded runs
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{ByStatus: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*), COALESCE(SUM(expanded), 0), COALESCE(SUM(duration_ns), 0) FROM runs GROUP BY status`)
	if err != nil {
		return sum, fmt.Errorf("summarize runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status   string
			count    int
			expanded int64
			duration int64
		)
		if err := rows.Scan(&status, &count, &expanded, &duration); err != nil {
			return sum, fmt.Errorf("scan summary: %w", err)
		}
		sum.ByStatus[status] = count
		sum.Runs += count
		sum.Expanded += expanded
		sum.Duration += time.Duration(duration)
	}
	if err := rows.Err(); err != nil {
		return sum, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT fingerprint) FROM runs`).Scan(&sum.Grids); err != nil {
		return sum, fmt.Errorf("count grids: %w", err)
	}
	return sum, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		duration int64
		created  string
	)
	err := sc.Scan(
		&r.ID, &r.Scenario, &r.Query, &r.Fingerprint, &r.Width, &r.Height,
		&r.Start.X, &r.Start.Y, &r.Goal.X, &r.Goal.Y,
		&r.Status, &r.Cost, &r.Expanded, &r.RawPoints, &r.SmoothPoints, &duration, &created,
	)
	if err != nil {
		return Run{}, err
	}
	r.Duration = time.Duration(duration)
	if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return r, nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPgx {
		return query
	}
	var sb strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}
