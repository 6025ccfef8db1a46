package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCheck struct {
	name  string
	items []CheckItem
}

func (c *staticCheck) Name() string { return c.name }

func (c *staticCheck) Run(context.Context) Result {
	return Result{Name: c.name, Items: c.items}
}

// fixableCheck reports one fixable warning until Fix succeeds.
type fixableCheck struct {
	fixed  bool
	fixErr error
	runs   int
}

func (c *fixableCheck) Name() string { return "fixable" }

func (c *fixableCheck) Run(context.Context) Result {
	c.runs++
	if c.fixed {
		return Result{Name: c.Name(), Items: []CheckItem{{Label: "thing", Status: StatusPass}}}
	}
	return Result{Name: c.Name(), Items: []CheckItem{{Label: "thing", Status: StatusWarn, Fixable: true}}}
}

func (c *fixableCheck) Fix(context.Context) error {
	if c.fixErr != nil {
		return c.fixErr
	}
	c.fixed = true
	return nil
}

func TestRunAll_Summary(t *testing.T) {
	report := RunAll(context.Background(), []Check{
		&staticCheck{name: "a", items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn, Fixable: true}}},
		&staticCheck{name: "b", items: []CheckItem{{Status: StatusFail}, {Status: StatusPass, Fixable: true}}},
	}, false)

	assert.False(t, report.Healthy)
	assert.Equal(t, Tally{Passed: 2, Warned: 1, Failed: 1, Fixable: 1}, report.Summary)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "b", report.Checks[1].Name)

	empty := RunAll(context.Background(), nil, false)
	assert.True(t, empty.Healthy)
}

func TestRunAll_Autofix(t *testing.T) {
	t.Run("without autofix only reports", func(t *testing.T) {
		check := &fixableCheck{}
		report := RunAll(context.Background(), []Check{check}, false)

		assert.False(t, check.fixed)
		assert.Equal(t, 1, report.Summary.Fixable)
	})

	t.Run("autofix reruns the check", func(t *testing.T) {
		check := &fixableCheck{}
		report := RunAll(context.Background(), []Check{check}, true)

		assert.True(t, check.fixed)
		assert.Equal(t, 2, check.runs)
		assert.Zero(t, report.Summary.Fixable)
		require.Len(t, report.Checks[0].Items, 1)
		assert.Equal(t, StatusPass, report.Checks[0].Items[0].Status)
	})

	t.Run("fix errors are reported", func(t *testing.T) {
		check := &fixableCheck{fixErr: errors.New("read-only database")}
		report := RunAll(context.Background(), []Check{check}, true)

		items := report.Checks[0].Items
		require.Len(t, items, 2)
		assert.Equal(t, CheckItem{Label: "autofix", Status: StatusFail, Detail: "read-only database"}, items[1])
		assert.False(t, report.Healthy)
	})
}
