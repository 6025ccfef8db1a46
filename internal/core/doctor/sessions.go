package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/vbisect/internal/core/history"
)

// DefaultStaleAfter is how long a running session may go without a verdict
// before it counts as abandoned.
const DefaultStaleAfter = 24 * time.Hour

// SessionsCheck finds sessions left running by a process that exited
// without finishing them. Fix marks them cancelled.
type SessionsCheck struct {
	store      history.Store
	staleAfter time.Duration
	now        func() time.Time
}

// NewSessionsCheck creates a sessions check over store.
func NewSessionsCheck(store history.Store, staleAfter time.Duration) *SessionsCheck {
	return &SessionsCheck{store: store, staleAfter: staleAfter, now: time.Now}
}

func (c *SessionsCheck) Name() string {
	return "Sessions"
}

func (c *SessionsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	stale, total, err := c.stale(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "history",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "history",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d sessions recorded", total),
	})

	for _, s := range stale {
		result.Items = append(result.Items, CheckItem{
			Label:   s.ID,
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("running since %s (%s..%s)", s.UpdatedAt.Local().Format(time.DateTime), s.Good, s.Bad),
			Fixable: true,
		})
	}

	return result
}

// Fix marks every stale session cancelled.
func (c *SessionsCheck) Fix(ctx context.Context) error {
	stale, _, err := c.stale(ctx)
	if err != nil {
		return err
	}
	for _, s := range stale {
		if err := c.store.Finish(ctx, s.ID, history.StatusCancelled, "", ""); err != nil {
			return fmt.Errorf("cancel session %s: %w", s.ID, err)
		}
	}
	return nil
}

func (c *SessionsCheck) stale(ctx context.Context) ([]history.Session, int, error) {
	sessions, err := c.store.List(ctx, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	cutoff := c.now().Add(-c.staleAfter)
	var stale []history.Session
	for _, s := range sessions {
		if s.Status == history.StatusRunning && s.UpdatedAt.Before(cutoff) {
			stale = append(stale, s)
		}
	}
	return stale, len(sessions), nil
}
