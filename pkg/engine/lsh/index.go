package lsh

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
)

// Index is a banded MinHash-LSH index over integer token multisets. Block
// ids are mapped to a dense internal index space so that bucket
// membership can be stored in compact roaring bitmaps instead of the
// plain slices the corpus's own duplicate detector uses.
type Index struct {
	hasher    *MinHasher
	bands     int
	rows      int
	threshold float64

	blockIDs   []string
	idOf       map[string]uint32
	signatures []Signature
	buckets    map[uint64]*roaring.Bitmap
}

// Config bundles the construction parameters named in the spec.
type Config struct {
	NumPermutations int     // 32-256, default 128
	JaccardThreshold float64 // 0.0-1.0
}

// NewIndex builds an empty Index. Band and row counts are derived from
// NumPermutations and JaccardThreshold so the LSH S-curve's inflection
// point sits near the threshold.
func NewIndex(cfg Config) *Index {
	numPerm := cfg.NumPermutations
	if numPerm <= 0 {
		numPerm = 128
	}
	threshold := cfg.JaccardThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	bands, rows := DeriveBandRows(numPerm, threshold)
	return &Index{
		hasher:    NewMinHasher(numPerm),
		bands:     bands,
		rows:      rows,
		threshold: threshold,
		idOf:      make(map[string]uint32),
		buckets:   make(map[uint64]*roaring.Bitmap),
	}
}

// Bands and Rows expose the derived LSH parameters, useful for
// diagnostics and tests.
func (idx *Index) Bands() int { return idx.bands }
func (idx *Index) Rows() int  { return idx.rows }

// Insert adds one block's token multiset to the index. tokens may be
// empty; an empty-token block never becomes a candidate for any query
// (per spec: empty token set yields empty query result).
func (idx *Index) Insert(blockID string, tokens []int) {
	if _, exists := idx.idOf[blockID]; exists {
		return
	}
	id := uint32(len(idx.blockIDs))
	idx.idOf[blockID] = id
	idx.blockIDs = append(idx.blockIDs, blockID)
	sig := idx.hasher.Signature(tokens)
	idx.signatures = append(idx.signatures, sig)
	if len(tokens) == 0 {
		return
	}
	for b := 0; b < idx.bands; b++ {
		key := idx.bandKey(b, sig)
		bm, ok := idx.buckets[key]
		if !ok {
			bm = roaring.New()
			idx.buckets[key] = bm
		}
		bm.Add(id)
	}
}

func (idx *Index) bandKey(band int, sig Signature) uint64 {
	start := band * idx.rows
	end := start + idx.rows
	if end > len(sig) {
		end = len(sig)
	}
	buf := make([]byte, 8*(end-start)+8)
	binary.LittleEndian.PutUint64(buf, uint64(band))
	off := 8
	for i := start; i < end; i++ {
		binary.LittleEndian.PutUint64(buf[off:], sig[i])
		off += 8
	}
	return xxhash.Sum64(buf)
}

// Query returns the set of candidate block ids whose estimated Jaccard
// similarity to tokens meets the index's configured threshold. An empty
// tokens slice always yields an empty result.
func (idx *Index) Query(tokens []int) []string {
	if len(tokens) == 0 {
		return nil
	}
	sig := idx.hasher.Signature(tokens)
	union := roaring.New()
	for b := 0; b < idx.bands; b++ {
		key := idx.bandKey(b, sig)
		if bm, ok := idx.buckets[key]; ok {
			union.Or(bm)
		}
	}
	candidates := make([]string, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		id := it.Next()
		if EstimateJaccard(sig, idx.signatures[id]) >= idx.threshold {
			candidates = append(candidates, idx.blockIDs[id])
		}
	}
	return candidates
}

// Size returns the number of blocks inserted.
func (idx *Index) Size() int {
	return len(idx.blockIDs)
}

// String renders the derived parameters, for logging at construction
// sites.
func (idx *Index) String() string {
	return fmt.Sprintf("lsh.Index{perm=%d bands=%d rows=%d threshold=%.2f size=%d}",
		idx.hasher.NumPerm(), idx.bands, idx.rows, idx.threshold, idx.Size())
}
