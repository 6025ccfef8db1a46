package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/vbisect/internal/data/db"
)

// Schema reports and applies database migrations.
type Schema interface {
	SchemaStatus(ctx context.Context) (db.SchemaStatus, error)
	Migrate(ctx context.Context) error
}

// DatabaseCheck verifies the session database is on the latest schema.
// Fix applies pending migrations.
type DatabaseCheck struct {
	schema Schema
}

// NewDatabaseCheck creates a database check.
func NewDatabaseCheck(schema Schema) *DatabaseCheck {
	return &DatabaseCheck{schema: schema}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	status, err := c.schema.SchemaStatus(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	item := CheckItem{
		Label:  "schema",
		Status: StatusPass,
		Detail: fmt.Sprintf("version %d", status.Current),
	}
	if !status.UpToDate() {
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("version %d, %d migration(s) pending up to %d",
			status.Current, len(status.Pending), status.Latest)
		item.Fixable = true
	}
	result.Items = append(result.Items, item)

	return result
}

func (c *DatabaseCheck) Fix(ctx context.Context) error {
	return c.schema.Migrate(ctx)
}
