package lili

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allTypes = []VarType{Any, Integer, Char, String, List, Nothing}

func TestLatticeIdentities(t *testing.T) {
	for _, x := range allTypes {
		assert.Equal(t, x, Sup(Any, x), "Sup(Any, %s)", x)
		assert.Equal(t, x, Inf(Nothing, x), "Inf(Nothing, %s)", x)
		assert.Equal(t, x, Sup(x, x), "Sup(%s, %s)", x, x)
		assert.Equal(t, x, Inf(x, x), "Inf(%s, %s)", x, x)
	}
}

func TestLatticeSymmetry(t *testing.T) {
	for _, x := range allTypes {
		for _, y := range allTypes {
			assert.Equal(t, Sup(x, y), Sup(y, x), "Sup(%s, %s)", x, y)
			assert.Equal(t, Inf(x, y), Inf(y, x), "Inf(%s, %s)", x, y)
		}
	}
}

func TestLatticeConflicts(t *testing.T) {
	assert.Equal(t, Nothing, Sup(Integer, String))
	assert.Equal(t, Nothing, Sup(Char, List))
	assert.Equal(t, Any, Inf(Integer, String))
	assert.Equal(t, Any, Inf(Char, Any))
}

func TestIsCompatible(t *testing.T) {
	for _, x := range allTypes {
		assert.True(t, IsCompatible(Any, x))
		assert.True(t, IsCompatible(x, Any))
		assert.True(t, IsCompatible(x, x))
	}
	assert.False(t, IsCompatible(Integer, String))
	assert.False(t, IsCompatible(Char, Integer))
	assert.False(t, IsCompatible(Integer, Nothing))
}

func TestVarTypeString(t *testing.T) {
	assert.Equal(t, "Integer", Integer.String())
	assert.Equal(t, "Nothing", Nothing.String())
	assert.Equal(t, "VarType(?)", VarType(42).String())
}
