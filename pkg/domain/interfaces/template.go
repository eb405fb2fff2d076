package interfaces

import (
	"context"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// TemplateRepository defines the interface for instruction template access.
// Templates are created and embedded by an administrative process; this core
// reads the active set and records usage.
type TemplateRepository interface {
	// ListActive retrieves all active templates with their embeddings
	ListActive(ctx context.Context) ([]*model.Template, error)

	// Get retrieves a template by ID regardless of its active flag
	Get(ctx context.Context, id types.TemplateID) (*model.Template, error)

	// Put creates or replaces a template
	Put(ctx context.Context, template *model.Template) error

	// IncrementUsage atomically increments the template's usage counter and
	// refreshes its updated timestamp. Best-effort telemetry: callers must
	// not fail a query when this returns an error.
	IncrementUsage(ctx context.Context, id types.TemplateID) error
}
