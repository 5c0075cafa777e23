package pairing

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-tasks/internal/apperr"
)

func TestCanonicalPair(t *testing.T) {
	for x := Account(0); x < 200; x++ {
		lo, hi := CanonicalPair(x)
		if x%2 == 0 {
			assert.Equal(t, x, lo)
			assert.Equal(t, x+1, hi)
		} else {
			assert.Equal(t, x-1, lo)
			assert.Equal(t, x, hi)
		}
		assert.Equal(t, PairOf(lo), PairOf(hi))
		assert.Equal(t, PairOf(x), PairOf(lo))
	}
}

func TestPairOf(t *testing.T) {
	assert.Equal(t, PairID(50000), PairOf(100000))
	assert.Equal(t, PairID(50000), PairOf(100001))
	assert.Equal(t, PairID(50001), PairOf(100002))
}

func TestPartnerAndMembers(t *testing.T) {
	assert.Equal(t, Account(100001), Partner(100000))
	assert.Equal(t, Account(100000), Partner(100001))
	lo, hi := Members(50000)
	assert.Equal(t, Account(100000), lo)
	assert.Equal(t, Account(100001), hi)
	assert.True(t, SamePair(100000, 100001))
	assert.False(t, SamePair(100001, 100002))
}

func TestParseAccount(t *testing.T) {
	a, err := ParseAccount(" 100001 ")
	require.NoError(t, err)
	assert.Equal(t, Account(100001), a)

	for _, raw := range []string{"", "abc", "-4", "12a", "1.5", "99999999999999999999"} {
		_, err := ParseAccount(raw)
		assert.Truef(t, apperr.IsValidation(err), "input %q", raw)
	}
}

func TestGeneratePair(t *testing.T) {
	g := NewGenerator(100000, 999998, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 1000; i++ {
		a, b := g.GeneratePair()
		require.Zero(t, a%2)
		require.Equal(t, a+1, b)
		require.GreaterOrEqual(t, int64(a), int64(100000))
		require.Less(t, int64(a), int64(999998))
		require.Equal(t, PairOf(a), PairOf(b))
	}
}

func TestGeneratePair_OddMinimum(t *testing.T) {
	g := NewGenerator(11, 14, rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 50; i++ {
		a, _ := g.GeneratePair()
		assert.Contains(t, []Account{12}, a)
	}
}
