// Package dice provides the randomness abstraction used by dungeon generation
// and seed selection.
package dice

// Source is the randomness provider for generation draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Range returns a random int in [lo, hi) drawn from src.
//
// Precondition: lo < hi; src must be non-nil.
// Postcondition: lo <= result < hi.
func Range(src Source, lo, hi int) int {
	if lo >= hi {
		panic("dice: Range called with lo >= hi")
	}
	return lo + src.Intn(hi-lo)
}

// Coin returns true with probability 1/2.
func Coin(src Source) bool {
	return src.Intn(2) == 0
}
