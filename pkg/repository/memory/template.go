package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type templateRepository struct {
	mu        sync.RWMutex
	templates map[types.TemplateID]*model.Template
}

func newTemplateRepository() *templateRepository {
	return &templateRepository{
		templates: make(map[types.TemplateID]*model.Template),
	}
}

func (r *templateRepository) ListActive(ctx context.Context) ([]*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Template, 0, len(r.templates))
	for _, t := range r.templates {
		if !t.IsActive {
			continue
		}
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *templateRepository) Get(ctx context.Context, id types.TemplateID) (*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.templates[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V("id", id))
	}

	return t.Clone(), nil
}

func (r *templateRepository) Put(ctx context.Context, template *model.Template) error {
	if err := template.Validate(); err != nil {
		return goerr.Wrap(err, "invalid template")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := template.Clone()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.templates[stored.ID] = stored
	return nil
}

func (r *templateRepository) IncrementUsage(ctx context.Context, id types.TemplateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.templates[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "template not found", goerr.V("id", id))
	}

	t.UsageCount++
	t.UpdatedAt = time.Now().UTC()
	return nil
}
