package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
)

// templateDoc is the Firestore document representation of model.Template.
// Embedding is stored as firestore.Vector32 so vector indexes apply to it.
type templateDoc struct {
	ID         int64              `firestore:"ID"`
	PromptText string             `firestore:"PromptText"`
	Keywords   []string           `firestore:"Keywords"`
	Embedding  firestore.Vector32 `firestore:"Embedding,omitempty"`
	IsActive   bool               `firestore:"IsActive"`
	UsageCount int64              `firestore:"UsageCount"`
	CreatedAt  time.Time          `firestore:"CreatedAt"`
	UpdatedAt  time.Time          `firestore:"UpdatedAt"`
}

func toTemplateDoc(t *model.Template) *templateDoc {
	doc := &templateDoc{
		ID:         int64(t.ID),
		PromptText: t.PromptText,
		Keywords:   t.Keywords,
		IsActive:   t.IsActive,
		UsageCount: t.UsageCount,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if len(t.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(t.Embedding)
	}
	return doc
}

func fromTemplateDoc(d *templateDoc) *model.Template {
	t := &model.Template{
		ID:         types.TemplateID(d.ID),
		PromptText: d.PromptText,
		Keywords:   d.Keywords,
		IsActive:   d.IsActive,
		UsageCount: d.UsageCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		t.Embedding = []float32(d.Embedding)
	}
	return t
}

func docToTemplate(doc *firestore.DocumentSnapshot) (*model.Template, error) {
	var d templateDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromTemplateDoc(&d), nil
}

type templateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTemplateRepository(client *firestore.Client) *templateRepository {
	return &templateRepository{client: client}
}

func (r *templateRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "templates")
}

func (r *templateRepository) ListActive(ctx context.Context) ([]*model.Template, error) {
	iter := r.collection().
		Where("IsActive", "==", true).
		OrderBy("ID", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	templates := make([]*model.Template, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate templates")
		}

		t, err := docToTemplate(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal template")
		}
		templates = append(templates, t)
	}

	return templates, nil
}

func (r *templateRepository) Get(ctx context.Context, id types.TemplateID) (*model.Template, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V("id", id))
	}

	t, err := docToTemplate(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal template", goerr.V("id", id))
	}

	return t, nil
}

func (r *templateRepository) Put(ctx context.Context, template *model.Template) error {
	if err := template.Validate(); err != nil {
		return goerr.Wrap(err, "invalid template")
	}

	stored := template.Clone()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	docRef := r.collection().Doc(stored.ID.String())
	if _, err := docRef.Set(ctx, toTemplateDoc(stored)); err != nil {
		return goerr.Wrap(err, "failed to put template", goerr.V("id", stored.ID))
	}

	return nil
}

func (r *templateRepository) IncrementUsage(ctx context.Context, id types.TemplateID) error {
	docRef := r.collection().Doc(id.String())
	if _, err := docRef.Update(ctx, []firestore.Update{
		{Path: "UsageCount", Value: firestore.Increment(1)},
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "template not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to increment template usage", goerr.V("id", id))
	}

	return nil
}
