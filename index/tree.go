package index

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/tidwall/rtree"
	"math"
	"snapindex/feature"
)

var ErrEmptyBound = errors.New("Bounding box is empty")

// spatialTree is an R-tree over the bounding boxes of the cached geometries. Each feature ID is stored at most once.
type spatialTree struct {
	rtree rtree.RTreeG[feature.ID]
}

func newSpatialTree() *spatialTree {
	return &spatialTree{}
}

// insert adds the bounding box of a feature. Empty or non-finite boxes can't be indexed and are rejected.
func (t *spatialTree) insert(id feature.ID, bound orb.Bound) error {
	if !isIndexable(bound) {
		return errors.Wrapf(ErrEmptyBound, "Unable to index feature %d with bounding box %v", id, bound)
	}
	t.rtree.Insert(bound.Min, bound.Max, id)
	return nil
}

// remove deletes the entry of the feature. The bound must be the one the feature has been inserted with.
func (t *spatialTree) remove(id feature.ID, bound orb.Bound) {
	t.rtree.Delete(bound.Min, bound.Max, id)
}

// nearestNeighbors visits all features in non-decreasing distance between their bounding box and the point. The
// visitor gets the box distance and stops the scan by returning false.
func (t *spatialTree) nearestNeighbors(point orb.Point, visitor func(id feature.ID, boxDistance float64) bool) {
	target := [2]float64{point[0], point[1]}
	t.rtree.Nearby(
		rtree.BoxDist[float64, feature.ID](target, target, nil),
		func(min, max [2]float64, id feature.ID, squaredDistance float64) bool {
			return visitor(id, math.Sqrt(squaredDistance))
		},
	)
}

// rangeQuery visits all features whose bounding box intersects the given rectangle in no particular order. The
// visitor stops the scan by returning false.
func (t *spatialTree) rangeQuery(rect orb.Bound, visitor func(id feature.ID) bool) {
	t.rtree.Search(rect.Min, rect.Max, func(min, max [2]float64, id feature.ID) bool {
		return visitor(id)
	})
}

func (t *spatialTree) len() int {
	return t.rtree.Len()
}

func isIndexable(bound orb.Bound) bool {
	if bound.IsEmpty() {
		return false
	}
	for _, v := range []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
