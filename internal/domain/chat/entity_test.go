package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyForIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "1:2", PairKeyFor(1, 2))
	assert.Equal(t, "1:2", PairKeyFor(2, 1))
	assert.Equal(t, "3:3", PairKeyFor(3, 3))
	assert.Equal(t, PairKeyFor(10, 9), PairKeyFor(9, 10))
}
