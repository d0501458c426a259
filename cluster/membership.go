package cluster

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// MembershipIndex maps each label value to the bitmap of row positions
// carrying it. Noise rows sit under the Noise key. The index is built once
// per label vector and consumed by the evaluator and the plotters.
type MembershipIndex struct {
	bitmaps map[int]*roaring.Bitmap
}

// NewMembershipIndex indexes a label vector.
func NewMembershipIndex(labels []int) *MembershipIndex {
	idx := &MembershipIndex{bitmaps: make(map[int]*roaring.Bitmap)}
	for row, label := range labels {
		bm, ok := idx.bitmaps[label]
		if !ok {
			bm = roaring.New()
			idx.bitmaps[label] = bm
		}
		bm.Add(uint32(row))
	}
	return idx
}

// Labels returns the distinct label values in ascending order, so the noise
// sentinel, when present, comes first.
func (idx *MembershipIndex) Labels() []int {
	out := make([]int, 0, len(idx.bitmaps))
	for l := range idx.bitmaps {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Rows returns the row positions carrying the given label.
func (idx *MembershipIndex) Rows(label int) []uint32 {
	bm, ok := idx.bitmaps[label]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// Size returns the number of rows carrying the given label.
func (idx *MembershipIndex) Size(label int) int {
	bm, ok := idx.bitmaps[label]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// NumClusters returns the number of real clusters, excluding noise.
func (idx *MembershipIndex) NumClusters() int {
	n := len(idx.bitmaps)
	if _, ok := idx.bitmaps[Noise]; ok {
		n--
	}
	return n
}
