package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"snapindex/feature"
)

// NearestVertex returns the vertex closest to the point within the tolerance, or the invalid match. Intersections of
// segments of the same geometry count as vertices. A vertex rejected by the filter is skipped and the search goes on.
func (l *PointLocator) NearestVertex(point orb.Point, tolerance float64, filter MatchFilter) Match {
	if !l.prepare() {
		return Match{}
	}

	best := Match{}
	visited := 0

	l.tree.nearestNeighbors(point, func(id feature.ID, boxDistance float64) bool {
		// No vertex can be closer to the point than the bounding box of its geometry
		if boxDistance > tolerance || best.IsValid() && boxDistance > best.distance {
			return false
		}
		visited++

		candidates, ok := l.cache.vertices(id)
		if !ok {
			sigolo.Errorf("Feature %d is in the spatial tree but not in the geometry cache", id)
			return true
		}

		for _, v := range candidates {
			distance := planar.Distance(point, v.point)
			if distance > tolerance || !isBetterThan(best, distance, id, v.index) {
				continue
			}

			match := NewVertexMatch(id, distance, v.point, v.index)
			if accepts(filter, match) {
				best = match
			}
		}
		return true
	})

	sigolo.Tracef("Nearest vertex to %v (tolerance %f) after %d candidates: %s", point, tolerance, visited, best.String())
	return best
}

// NearestEdge returns the point on an edge closest to the given point within the tolerance, or the invalid match. An
// edge rejected by the filter is skipped and the search goes on.
func (l *PointLocator) NearestEdge(point orb.Point, tolerance float64, filter MatchFilter) Match {
	if !l.prepare() {
		return Match{}
	}

	best := Match{}
	visited := 0

	l.tree.nearestNeighbors(point, func(id feature.ID, boxDistance float64) bool {
		if boxDistance > tolerance || best.IsValid() && boxDistance > best.distance {
			return false
		}
		visited++

		geometry, ok := l.cache.get(id)
		if !ok {
			sigolo.Errorf("Feature %d is in the spatial tree but not in the geometry cache", id)
			return true
		}

		for _, s := range segments(geometry) {
			closestPoint := s.closestPoint(point)
			distance := planar.Distance(point, closestPoint)
			if distance > tolerance || !isBetterThan(best, distance, id, s.index) {
				continue
			}

			match := NewEdgeMatch(id, distance, closestPoint, s.index, s.start, s.end)
			if accepts(filter, match) {
				best = match
			}
		}
		return true
	})

	sigolo.Tracef("Nearest edge to %v (tolerance %f) after %d candidates: %s", point, tolerance, visited, best.String())
	return best
}
