package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/data/db"
)

// BisectStore implements history.Store using SQLite.
type BisectStore struct {
	db *db.DB
}

var _ history.Store = (*BisectStore)(nil)

// NewBisectStore creates a new SQLite-backed bisect history store.
func NewBisectStore(db *db.DB) *BisectStore {
	return &BisectStore{db: db}
}

// Create inserts a new session. Steps on sess are ignored.
func (s *BisectStore) Create(ctx context.Context, sess history.Session) error {
	status := sess.Status
	if status == "" {
		status = history.StatusRunning
	}

	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := sess.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO bisect_sessions (id, good, bad, range_size, status, result_good, result_bad, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Good, sess.Bad, sess.RangeSize, string(status),
		nullString(sess.ResultGood), nullString(sess.ResultBad),
		createdAt.UnixNano(), updatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create bisect session: %w", err)
	}
	return nil
}

// AddStep appends a verdict to a session. Returns history.ErrNotFound if the
// session does not exist.
func (s *BisectStore) AddStep(ctx context.Context, sessionID string, step history.Step) error {
	createdAt := step.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE bisect_sessions SET updated_at = ? WHERE id = ?`,
			createdAt.UnixNano(), sessionID,
		)
		if err != nil {
			return fmt.Errorf("failed to touch bisect session: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bisect_steps (session_id, version, good, created_at)
			VALUES (?, ?, ?, ?)`,
			sessionID, step.Version, step.Good, createdAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to add bisect step: %w", err)
		}
		return nil
	})
}

// Finish records the final status and result pair.
func (s *BisectStore) Finish(ctx context.Context, sessionID string, status history.Status, resultGood, resultBad string) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE bisect_sessions
		SET status = ?, result_good = ?, result_bad = ?, updated_at = ?
		WHERE id = ?`,
		string(status), nullString(resultGood), nullString(resultBad), time.Now().UnixNano(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish bisect session: %w", err)
	}
	return requireRow(res)
}

// Get returns a session with its steps. Returns history.ErrNotFound if not found.
func (s *BisectStore) Get(ctx context.Context, sessionID string) (history.Session, error) {
	row := s.db.Conn().QueryRowContext(ctx, selectSessions+` WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if IsNotFoundError(err) {
		return history.Session{}, history.ErrNotFound
	}
	if err != nil {
		return history.Session{}, fmt.Errorf("failed to get bisect session: %w", err)
	}

	steps, err := s.steps(ctx, sessionID)
	if err != nil {
		return history.Session{}, err
	}
	sess.Steps = steps

	return sess, nil
}

// List returns the most recent sessions first, with their steps. A limit of
// zero or less returns every session.
func (s *BisectStore) List(ctx context.Context, limit int) ([]history.Session, error) {
	query := selectSessions + ` ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bisect sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []history.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bisect session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bisect sessions: %w", err)
	}

	for i := range sessions {
		steps, err := s.steps(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Steps = steps
	}

	return sessions, nil
}

// DeleteOlderThan removes finished sessions last updated before cutoff.
// Running sessions are kept regardless of age.
func (s *BisectStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM bisect_sessions WHERE status != ? AND updated_at < ?`,
		string(history.StatusRunning), cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune bisect sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune bisect sessions: %w", err)
	}
	return n, nil
}

func (s *BisectStore) steps(ctx context.Context, sessionID string) ([]history.Step, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT version, good, created_at FROM bisect_steps WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bisect steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []history.Step
	for rows.Next() {
		var (
			step      history.Step
			createdAt int64
		)
		if err := rows.Scan(&step.Version, &step.Good, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bisect step: %w", err)
		}
		step.CreatedAt = time.Unix(0, createdAt)
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

const selectSessions = `
	SELECT id, good, bad, range_size, status, result_good, result_bad, created_at, updated_at
	FROM bisect_sessions`

type scanner interface {
	Scan(dest ...any) error
}

// scanSession converts a bisect_sessions row to a history.Session.
func scanSession(row scanner) (history.Session, error) {
	var (
		sess                  history.Session
		status                string
		resultGood, resultBad sql.NullString
		createdAt, updatedAt  int64
	)
	err := row.Scan(&sess.ID, &sess.Good, &sess.Bad, &sess.RangeSize, &status,
		&resultGood, &resultBad, &createdAt, &updatedAt)
	if err != nil {
		return history.Session{}, err
	}

	sess.Status = history.Status(status)
	sess.ResultGood = resultGood.String
	sess.ResultBad = resultBad.String
	sess.CreatedAt = time.Unix(0, createdAt)
	sess.UpdatedAt = time.Unix(0, updatedAt)
	return sess, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return history.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
