package model_test

import (
	"testing"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestTemplate_Validate(t *testing.T) {
	t.Run("valid without embedding", func(t *testing.T) {
		tmpl := &model.Template{ID: 1, PromptText: "You are an export assistant.", IsActive: true}
		gt.NoError(t, tmpl.Validate())
	})

	t.Run("valid with full-dimension embedding", func(t *testing.T) {
		tmpl := &model.Template{
			ID:         2,
			PromptText: "Answer duty questions.",
			Embedding:  make([]float32, model.EmbeddingDimension),
		}
		gt.NoError(t, tmpl.Validate())
	})

	t.Run("empty prompt text", func(t *testing.T) {
		tmpl := &model.Template{ID: 3, PromptText: "  "}
		gt.Error(t, tmpl.Validate())
	})

	t.Run("wrong embedding dimension", func(t *testing.T) {
		tmpl := &model.Template{ID: 4, PromptText: "x", Embedding: make([]float32, 16)}
		gt.Error(t, tmpl.Validate())
	})
}

func TestTemplate_KeywordMatches(t *testing.T) {
	tmpl := &model.Template{
		ID:         1,
		PromptText: "x",
		Keywords:   []string{"duty", "Tariff", "export"},
	}

	gt.Number(t, tmpl.KeywordMatches("How much export DUTY do I owe?")).Equal(2)
	gt.Number(t, tmpl.KeywordMatches("what documents do I need")).Equal(0)
}

func TestTemplate_Clone(t *testing.T) {
	tmpl := &model.Template{
		ID:         7,
		PromptText: "x",
		Keywords:   []string{"duty"},
		Embedding:  []float32{0.1, 0.2},
	}

	copied := tmpl.Clone()
	copied.Keywords[0] = "changed"
	copied.Embedding[0] = 9

	gt.Value(t, tmpl.Keywords[0]).Equal("duty")
	gt.Value(t, tmpl.Embedding[0]).Equal(float32(0.1))
}

func TestDefaultTemplate(t *testing.T) {
	tmpl := model.DefaultTemplate()
	gt.Value(t, tmpl.ID.String()).Equal("0")
	gt.Bool(t, tmpl.IsActive).True()
	gt.NoError(t, tmpl.Validate())
}
