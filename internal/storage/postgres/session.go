package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session outcomes recorded in the journal.
const (
	OutcomeWon          = "won"
	OutcomeStopped      = "stopped"
	OutcomeDisconnected = "disconnected"
)

// ValidOutcome reports whether outcome is a recognised session outcome.
func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeWon, OutcomeStopped, OutcomeDisconnected:
		return true
	}
	return false
}

// ErrInvalidOutcome is returned when a result carries an unrecognised outcome.
var ErrInvalidOutcome = errors.New("invalid session outcome")

// Result is the journal entry of one finished session.
type Result struct {
	ID                uuid.UUID
	Seed              uint32
	Outcome           string
	DiamondsCollected int
	Moves             int
	Digs              int
	RemoteAddr        string
	StartedAt         time.Time
	EndedAt           time.Time
}

// Duration returns how long the session lasted.
func (r Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SessionRepository records finished sessions.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Record inserts res.
//
// Precondition: res.ID must be set; res.Outcome must satisfy ValidOutcome.
// Postcondition: the row is stored, or an error is returned. Recording the
// same ID twice is an error.
func (r *SessionRepository) Record(ctx context.Context, res Result) error {
	if !ValidOutcome(res.Outcome) {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, res.Outcome)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions
		   (id, seed, outcome, diamonds_collected, moves, digs, remote_addr, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, int64(res.Seed), res.Outcome, res.DiamondsCollected, res.Moves, res.Digs,
		res.RemoteAddr, res.StartedAt, res.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", res.ID, err)
	}
	return nil
}

// Recent returns up to limit sessions, most recently ended first.
//
// Precondition: limit must be positive.
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]Result, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seed, outcome, diamonds_collected, moves, digs, remote_addr, started_at, ended_at
		 FROM sessions ORDER BY ended_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

// ErrSessionNotFound is returned when a session lookup yields no results.
var ErrSessionNotFound = errors.New("session not found")

// Get returns the session recorded under id.
//
// Postcondition: Returns the Result, or ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (Result, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, seed, outcome, diamonds_collected, moves, digs, remote_addr, started_at, ended_at
		 FROM sessions WHERE id = $1`,
		id,
	)
	res, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrSessionNotFound
	}
	return res, err
}

func scanResult(row pgx.Row) (Result, error) {
	var (
		res  Result
		seed int64
	)
	err := row.Scan(&res.ID, &seed, &res.Outcome, &res.DiamondsCollected, &res.Moves, &res.Digs,
		&res.RemoteAddr, &res.StartedAt, &res.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("scanning session: %w", err)
	}
	res.Seed = uint32(seed)
	return res, nil
}
