// Package store keeps the history of race runs and availability checks so an
// operator can diagnose a run after the fact.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/slot-sniper/internal/db"
	"github.com/example/slot-sniper/internal/domain/booking"
)

type Run struct {
	ID         uuid.UUID
	Provider   string
	TargetDate time.Time
	Reserved   bool
	Attempts   int
	Elapsed    time.Duration
	LastError  *string
	StartedAt  time.Time
	FinishedAt *time.Time
}

type Attempt struct {
	RunID   uuid.UUID
	N       int
	Outcome string
	Reason  string
	At      time.Time
}

type Check struct {
	ID        uuid.UUID
	Provider  string
	Date      string
	Success   bool
	Total     int
	Times     []string
	Error     *string
	CheckedAt time.Time
}

type Repo struct {
	db *db.DB
}

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) CreateRun(ctx context.Context, provider string, targetDate time.Time) (uuid.UUID, error) {
	id := uuid.New()
	err := r.db.Exec(ctx, `
INSERT INTO runs(id, provider, target_date) VALUES ($1,$2,$3)`,
		id, provider, targetDate)
	return id, db.WrapNotFound(err)
}

func (r *Repo) RecordAttempt(ctx context.Context, runID uuid.UUID, n int, outcome booking.AttemptOutcome) error {
	return r.db.Exec(ctx, `
INSERT INTO run_attempts(run_id, n, outcome, reason) VALUES ($1,$2,$3,$4)`,
		runID, n, outcome.Kind.String(), outcome.Reason)
}

func (r *Repo) FinishRun(ctx context.Context, runID uuid.UUID, res booking.LoopResult, runErr error) error {
	var lastErr *string
	if runErr != nil {
		s := runErr.Error()
		lastErr = &s
	}
	return r.db.Exec(ctx, `
UPDATE runs SET reserved=$2, attempts=$3, elapsed_ms=$4, last_error=$5, finished_at=now()
WHERE id=$1`,
		runID, res.Reserved, res.Attempts, res.Elapsed.Milliseconds(), lastErr)
}

func (r *Repo) SaveCheck(ctx context.Context, c Check) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return r.db.Exec(ctx, `
INSERT INTO availability_checks(id, provider, check_date, success, total, times, error, checked_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Provider, c.Date, c.Success, c.Total, strings.Join(c.Times, ","), c.Error, c.CheckedAt)
}

func (r *Repo) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, provider, target_date, reserved, attempts, elapsed_ms, last_error, started_at, finished_at
FROM runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.Provider, &r.TargetDate, &r.Reserved, &r.Attempts, &elapsedMS, &r.LastError, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *Repo) RecentChecks(ctx context.Context, limit int) ([]Check, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, provider, check_date, success, total, times, error, checked_at
FROM availability_checks
ORDER BY checked_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Check
	for rows.Next() {
		var c Check
		var times string
		if err := rows.Scan(&c.ID, &c.Provider, &c.Date, &c.Success, &c.Total, &times, &c.Error, &c.CheckedAt); err != nil {
			return nil, err
		}
		if times != "" {
			c.Times = strings.Split(times, ",")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
