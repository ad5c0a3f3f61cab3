package specification

import (
	"context"
	"testing"

	"weighthub/domain/shared"
	"weighthub/domain/weight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownSpec struct{}

func (unknownSpec) IsSatisfiedBy(context.Context, *weight.Weight) bool { return true }

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "yolo", EscapeLike("yolo"))
	assert.Equal(t, "100!%", EscapeLike("100%"))
	assert.Equal(t, "sam!_hq", EscapeLike("sam_hq"))
	assert.Equal(t, "a!!b", EscapeLike("a!b"))
}

func TestClause(t *testing.T) {
	tr := NewWeightTranslator()

	clause, args, ok := tr.clause(weight.NewNameContainsSpecification("SAM_hq"))
	require.True(t, ok)
	assert.Equal(t, "`name_key` LIKE ? ESCAPE '!'", clause)
	assert.Equal(t, []any{"%sam!_hq%"}, args)

	spec := shared.And(weight.NewNameContainsSpecification("yolo"), shared.Not(weight.NewByEnableSpecification(weight.FlagDisabled)))
	clause, args, ok = tr.clause(spec)
	require.True(t, ok)
	assert.Equal(t, "(`name_key` LIKE ? ESCAPE '!') AND (NOT (`enable` = ?))", clause)
	assert.Equal(t, []any{"%yolo%", 0}, args)

	clause, _, ok = tr.clause(shared.Or(weight.NewByEnableSpecification(weight.FlagEnabled), weight.NewByEnableSpecification(weight.FlagDisabled)))
	require.True(t, ok)
	assert.Equal(t, "(`enable` = ?) OR (`enable` = ?)", clause)
}

func TestTranslate(t *testing.T) {
	tr := NewWeightTranslator()

	scope, ok := tr.Translate(nil)
	assert.True(t, ok)
	assert.NotNil(t, scope)

	_, ok = tr.Translate(unknownSpec{})
	assert.False(t, ok)

	_, ok = tr.Translate(shared.And[*weight.Weight](weight.NewByEnableSpecification(weight.FlagEnabled), unknownSpec{}))
	assert.False(t, ok, "unknown nested specs are rejected")
}
