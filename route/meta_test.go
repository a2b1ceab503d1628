package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta(t *testing.T) {
	metas, err := ParseMeta(`tag = "Users", skip, operation_id = "list", deprecated = true, rank = 2,`)
	require.NoError(t, err)
	assert.Equal(t, []Meta{
		{Name: "tag", Value: "Users", Kind: StringValue, Offset: 0},
		{Value: "skip", Kind: IdentValue, Offset: 15},
		{Name: "operation_id", Value: "list", Kind: StringValue, Offset: 21},
		{Name: "deprecated", Value: "true", Kind: IdentValue, Offset: 44},
		{Name: "rank", Value: "2", Kind: NumberValue, Offset: 63},
	}, metas)

	metas, err = ParseMeta("")
	require.NoError(t, err)
	assert.Empty(t, metas)

	_, err = ParseMeta(`tag = `)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of arguments")

	_, err = ParseMeta(`tag = (`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected "("`)
}
