package json

import (
	"testing"

	"github.com/bytedance/sonic/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	root, err := Parse([]byte(`{"z":1,"a":[true,null],"m":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, ast.V_OBJECT, root.TypeSafe())

	it, err := root.Properties()
	require.NoError(t, err)
	var (
		keys []string
		pair ast.Pair
	)
	for it.Next(&pair) {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	_, err = Parse([]byte(`{"a":`))
	assert.Error(t, err)
}
