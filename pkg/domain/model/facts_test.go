package model_test

import (
	"testing"

	"github.com/exportin-lab/exportin/pkg/domain/model"
	"github.com/exportin-lab/exportin/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestExtractedFacts_Setters(t *testing.T) {
	t.Run("blank values stay unknown", func(t *testing.T) {
		var f model.ExtractedFacts
		f.SetProduct("   ")
		f.SetDestination("")
		f.SetWeightKg(0)
		f.SetWeightKg(-5)

		gt.Value(t, f.Product).Nil()
		gt.Value(t, f.Destination).Nil()
		gt.Value(t, f.WeightKg).Nil()
	})

	t.Run("values are trimmed", func(t *testing.T) {
		var f model.ExtractedFacts
		f.SetProduct("  Coffee ")
		gt.Value(t, f.Product).NotNil()
		gt.Value(t, *f.Product).Equal("Coffee")
	})
}

func TestExtractedFacts_Missing(t *testing.T) {
	t.Run("all missing", func(t *testing.T) {
		var f model.ExtractedFacts
		gt.Array(t, f.Missing()).Equal([]types.FactField{
			types.FieldProduct, types.FieldWeight, types.FieldDestination,
		})
		gt.Bool(t, f.Complete()).False()
	})

	t.Run("only weight missing", func(t *testing.T) {
		var f model.ExtractedFacts
		f.SetProduct("Coffee")
		f.SetDestination("India")

		gt.Array(t, f.Missing()).Equal([]types.FactField{types.FieldWeight})
	})

	t.Run("complete", func(t *testing.T) {
		var f model.ExtractedFacts
		f.SetProduct("Coffee")
		f.SetWeightKg(500)
		f.SetDestination("India")

		gt.Bool(t, f.Complete()).True()
		gt.Array(t, f.Missing()).Length(0)
	})
}
