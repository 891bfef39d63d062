package index

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"slices"
	"snapindex/feature"
)

// NearestArea returns an area match for the first polygon containing the point that the filter accepts. When no
// polygon contains the point and the tolerance is positive, it falls back to the nearest edge.
func (l *PointLocator) NearestArea(point orb.Point, tolerance float64, filter MatchFilter) Match {
	if !l.prepare() {
		return Match{}
	}

	matches := l.pointInPolygon(point, filter, true)
	if len(matches) > 0 {
		return matches[0]
	}

	if tolerance > 0 {
		sigolo.Tracef("No area contains %v, fall back to nearest edge", point)
		return l.NearestEdge(point, tolerance, filter)
	}
	return Match{}
}

// PointInPolygon returns an area match for every polygon containing the point, ordered by feature ID.
func (l *PointLocator) PointInPolygon(point orb.Point) MatchList {
	if !l.prepare() {
		return MatchList{}
	}
	return l.pointInPolygon(point, nil, false)
}

func (l *PointLocator) pointInPolygon(point orb.Point, filter MatchFilter, firstOnly bool) MatchList {
	matches := MatchList{}

	for _, id := range l.candidatesInRect(orb.Bound{Min: point, Max: point}) {
		geometry, ok := l.cache.get(id)
		if !ok || !hasArea(geometry) || !containsPoint(geometry, point) {
			continue
		}

		match := NewAreaMatch(id, point)
		if !accepts(filter, match) {
			continue
		}

		matches = append(matches, match)
		if firstOnly {
			break
		}
	}

	sigolo.Tracef("Found %d areas containing %v", len(matches), point)
	return matches
}

// EdgesInRect returns an edge match for every edge intersecting the rectangle. The matches have distance 0 and the
// midpoint of the edge as point. They are ordered by feature ID and vertex index.
func (l *PointLocator) EdgesInRect(rect orb.Bound, filter MatchFilter) MatchList {
	matches := MatchList{}
	if !l.prepare() {
		return matches
	}

	for _, id := range l.candidatesInRect(rect) {
		geometry, ok := l.cache.get(id)
		if !ok {
			continue
		}

		for _, s := range segments(geometry) {
			if !s.intersectsBound(rect) {
				continue
			}

			match := NewEdgeMatch(id, 0, s.midpoint(), s.index, s.start, s.end)
			if accepts(filter, match) {
				matches = append(matches, match)
			}
		}
	}

	sigolo.Tracef("Found %d edges in %v", len(matches), rect)
	return matches
}

// EdgesInRectAround is EdgesInRect for the square with the point as center and twice the tolerance as side length.
func (l *PointLocator) EdgesInRectAround(point orb.Point, tolerance float64, filter MatchFilter) MatchList {
	rect := orb.Bound{
		Min: orb.Point{point[0] - tolerance, point[1] - tolerance},
		Max: orb.Point{point[0] + tolerance, point[1] + tolerance},
	}
	return l.EdgesInRect(rect, filter)
}

// candidatesInRect returns the IDs of all features whose bounding box intersects the rectangle, ordered by ID.
func (l *PointLocator) candidatesInRect(rect orb.Bound) []feature.ID {
	var ids []feature.ID
	l.tree.rangeQuery(rect, func(id feature.ID) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}
