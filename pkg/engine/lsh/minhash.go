// Package lsh implements MinHash signatures and a banded
// locality-sensitive-hash index over integer token multisets, grounded on
// the blake3+xxhash seeded MinHash and FNV-style band hashing used for
// clone detection in the example corpus, with the band/row derivation and
// recall/precision estimators taken from the companion LSH index in the
// rest of the retrieval pack.
package lsh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Signature is a MinHash sketch: one minimum hash value per permutation.
type Signature []uint64

// MinHasher computes MinHash signatures over integer token sequences using
// NumPerm independent seeded hash functions. Each token is first digested
// with blake3 to spread out small-integer tokens, then combined with a
// per-permutation seed via xxhash; the minimum over all tokens is the
// signature entry for that permutation.
type MinHasher struct {
	numPerm int
	seeds   []uint64
}

// NewMinHasher returns a MinHasher with numPerm permutations (32-256 per
// spec, default 128). Seeds are derived deterministically from the
// permutation index, so two MinHashers built with the same numPerm always
// agree.
func NewMinHasher(numPerm int) *MinHasher {
	if numPerm <= 0 {
		numPerm = 128
	}
	seeds := make([]uint64, numPerm)
	for i := range seeds {
		seeds[i] = permutationSeed(i)
	}
	return &MinHasher{numPerm: numPerm, seeds: seeds}
}

// NumPerm returns the configured permutation count.
func (m *MinHasher) NumPerm() int {
	return m.numPerm
}

func permutationSeed(i int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i))
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

func baseHash(token int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(token))
	sum := blake3.Sum256(buf[:])
	return binary.LittleEndian.Uint64(sum[:8])
}

// Signature computes the MinHash signature of tokens. An empty token
// sequence yields a signature of all-max values, which never collides
// with any non-empty signature in a band.
func (m *MinHasher) Signature(tokens []int) Signature {
	sig := make(Signature, m.numPerm)
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	if len(tokens) == 0 {
		return sig
	}
	base := make([]uint64, len(tokens))
	for i, t := range tokens {
		base[i] = baseHash(t)
	}
	var seedBuf [16]byte
	for p, seed := range m.seeds {
		binary.LittleEndian.PutUint64(seedBuf[8:], seed)
		min := uint64(math.MaxUint64)
		for _, b := range base {
			binary.LittleEndian.PutUint64(seedBuf[:8], b)
			h := xxhash.Sum64(seedBuf[:])
			if h < min {
				min = h
			}
		}
		sig[p] = min
	}
	return sig
}

// EstimateJaccard returns the fraction of matching entries between two
// signatures of equal length, the standard MinHash Jaccard estimator.
func EstimateJaccard(a, b Signature) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// DeriveBandRows picks a (bands, rows) split of numPerm whose LSH S-curve
// inflection point, (1/bands)^(1/rows), lies as close as possible to
// threshold. Only exact divisor pairs of numPerm are considered so every
// permutation is assigned to exactly one band.
func DeriveBandRows(numPerm int, threshold float64) (bands, rows int) {
	if threshold <= 0 {
		threshold = 0.5
	}
	bestB, bestR := 1, numPerm
	bestDiff := math.MaxFloat64
	for r := 1; r <= numPerm; r++ {
		if numPerm%r != 0 {
			continue
		}
		b := numPerm / r
		est := math.Pow(1.0/float64(b), 1.0/float64(r))
		diff := math.Abs(est - threshold)
		if diff < bestDiff {
			bestDiff = diff
			bestB, bestR = b, r
		}
	}
	return bestB, bestR
}

// EstimateFalseNegativeRate returns the probability that a true pair at
// Jaccard similarity s is missed by an LSH index with the given band/row
// split: 1 - P(pair lands in a shared bucket).
func EstimateFalseNegativeRate(s float64, bands, rows int) float64 {
	return 1 - sCurve(s, bands, rows)
}

// EstimateFalsePositiveRate approximates the probability that an
// unrelated pair (Jaccard 0) nonetheless collides in some band, which for
// truly unrelated signatures is governed by hash collision chance and is
// negligible for 64-bit hashes; retained for parity with the corpus's LSH
// diagnostics API.
func EstimateFalsePositiveRate(bands, rows int) float64 {
	return sCurve(1e-9, bands, rows)
}

func sCurve(s float64, bands, rows int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(rows)), float64(bands))
}
