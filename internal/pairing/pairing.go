// Package pairing derives pair identity from account numbers.
//
// Accounts 2k and 2k+1 form pair k. Nothing is stored: the pairing is a pure
// function of the number and is fixed for the lifetime of an account.
package pairing

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"pair-tasks/internal/apperr"
)

// Account is a numeric account identifier.
type Account int64

// PairID identifies the pair an account belongs to.
type PairID int64

func (a Account) String() string { return strconv.FormatInt(int64(a), 10) }

func (p PairID) String() string { return strconv.FormatInt(int64(p), 10) }

// PairOf returns the pair identifier of an account (floor division by two).
func PairOf(a Account) PairID {
	if a < 0 {
		// floor, not truncation
		return PairID((a - 1) / 2)
	}
	return PairID(a / 2)
}

// CanonicalPair returns the two members of a's pair, lowest first.
func CanonicalPair(a Account) (lo, hi Account) {
	return Members(PairOf(a))
}

// Members returns the two accounts of pair p.
func Members(p PairID) (lo, hi Account) {
	lo = Account(p) * 2
	return lo, lo + 1
}

// Partner returns the other member of a's pair.
func Partner(a Account) Account {
	lo, hi := CanonicalPair(a)
	if a == lo {
		return hi
	}
	return lo
}

// SamePair reports whether a and b belong to the same pair.
func SamePair(a, b Account) bool {
	return PairOf(a) == PairOf(b)
}

// ParseAccount parses user input into an account number. Only digits are
// accepted.
func ParseAccount(raw string) (Account, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Invalid("account", "account number is required")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, apperr.Invalid("account", "digits only, got %q", raw)
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("account", "account number out of range: %q", raw)
	}
	return Account(n), nil
}

// Generator hands out fresh account pairs. It does not check whether a
// generated pair already has data.
type Generator struct {
	Min, Max int64
	rnd      *rand.Rand
}

// NewGenerator returns a generator drawing even bases from [min, max).
// A nil rnd uses a randomly seeded source.
func NewGenerator(min, max int64, rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{Min: min, Max: max, rnd: rnd}
}

// GeneratePair returns a random even account a and its partner a+1.
func (g *Generator) GeneratePair() (Account, Account) {
	lo := g.Min
	if lo%2 != 0 {
		lo++
	}
	slots := (g.Max - lo + 1) / 2
	if slots <= 0 {
		return Account(lo), Account(lo + 1)
	}
	base := lo + 2*g.rnd.Int64N(slots)
	return Account(base), Account(base + 1)
}
