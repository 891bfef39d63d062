package index

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
	"snapindex/feature"
)

type vertex struct {
	point orb.Point
	index int
}

type segment struct {
	start orb.Point
	end   orb.Point
	index int // Vertex index of the start point.
	part  int // Number of the linear part the segment belongs to.
}

// parameterEpsilon is the tolerance for segment parameters counting as an endpoint of the segment.
const parameterEpsilon = 1e-9

// pointEpsilon is the distance up to which a point counts as lying on a segment.
const pointEpsilon = 1e-9

func (s segment) bound() orb.Bound {
	return orb.Bound{Min: s.start, Max: s.start}.Extend(s.end)
}

func (s segment) midpoint() orb.Point {
	return orb.Point{(s.start[0] + s.end[0]) / 2, (s.start[1] + s.end[1]) / 2}
}

// closestPoint returns the point on the segment with the smallest distance to p.
func (s segment) closestPoint(p orb.Point) orb.Point {
	dx := s.end[0] - s.start[0]
	dy := s.end[1] - s.start[1]
	squaredLength := dx*dx + dy*dy
	if squaredLength == 0 {
		return s.start
	}

	t := ((p[0]-s.start[0])*dx + (p[1]-s.start[1])*dy) / squaredLength
	if t <= 0 {
		return s.start
	}
	if t >= 1 {
		return s.end
	}
	return orb.Point{s.start[0] + t*dx, s.start[1] + t*dy}
}

// intersection returns the single point both segments have in common. Parallel and collinear segments have no
// single intersection point.
func (s segment) intersection(other segment) (orb.Point, bool) {
	t, _, ok := s.intersectionParameters(other)
	if !ok {
		return orb.Point{}, false
	}
	return s.pointAt(t), true
}

// intersectionParameters returns the positions t on this segment and u on the other segment (0 = start, 1 = end) of
// the single intersection point of both segments.
func (s segment) intersectionParameters(other segment) (float64, float64, bool) {
	rx := s.end[0] - s.start[0]
	ry := s.end[1] - s.start[1]
	sx := other.end[0] - other.start[0]
	sy := other.end[1] - other.start[1]

	denominator := rx*sy - ry*sx
	if denominator == 0 {
		return 0, 0, false
	}

	qpx := other.start[0] - s.start[0]
	qpy := other.start[1] - s.start[1]

	t := (qpx*sy - qpy*sx) / denominator
	u := (qpx*ry - qpy*rx) / denominator
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}

	return t, u, true
}

func (s segment) pointAt(t float64) orb.Point {
	return orb.Point{s.start[0] + t*(s.end[0]-s.start[0]), s.start[1] + t*(s.end[1]-s.start[1])}
}

// contains is true when the point lies on the segment.
func (s segment) contains(p orb.Point) bool {
	return planar.Distance(s.closestPoint(p), p) <= pointEpsilon
}

// touches is true when both segments have at least one point in common. Unlike intersection, this includes
// collinear overlaps and zero-length segments.
func (s segment) touches(other segment) bool {
	if _, ok := s.intersection(other); ok {
		return true
	}
	return s.contains(other.start) || s.contains(other.end) || other.contains(s.start) || other.contains(s.end)
}

func (s segment) intersectsBound(bound orb.Bound) bool {
	if !s.bound().Intersects(bound) {
		return false
	}
	if bound.Contains(s.start) || bound.Contains(s.end) {
		return true
	}

	lowerLeft := bound.Min
	lowerRight := orb.Point{bound.Max[0], bound.Min[1]}
	upperRight := bound.Max
	upperLeft := orb.Point{bound.Min[0], bound.Max[1]}
	sides := []segment{
		{start: lowerLeft, end: lowerRight},
		{start: lowerRight, end: upperRight},
		{start: upperRight, end: upperLeft},
		{start: upperLeft, end: lowerLeft},
	}
	// Sides of a bound without width or height have zero length or overlap the segment, so a plain intersection
	// test isn't enough
	for _, side := range sides {
		if s.touches(side) {
			return true
		}
	}
	return false
}

// walkParts calls the handler for each linear part (single points, line strings and rings) of the geometry. The
// firstIndex is the vertex index of the first point of the part, vertices are numbered across all parts in storage
// order.
func walkParts(geometry orb.Geometry, handler func(points []orb.Point, firstIndex int)) {
	nextIndex := 0
	var walk func(g orb.Geometry)
	walk = func(g orb.Geometry) {
		switch geom := g.(type) {
		case orb.Point:
			handler([]orb.Point{geom}, nextIndex)
			nextIndex++
		case orb.MultiPoint:
			for _, p := range geom {
				walk(p)
			}
		case orb.LineString:
			handler(geom, nextIndex)
			nextIndex += len(geom)
		case orb.Ring:
			handler(geom, nextIndex)
			nextIndex += len(geom)
		case orb.MultiLineString:
			for _, ls := range geom {
				walk(ls)
			}
		case orb.Polygon:
			for _, r := range geom {
				walk(r)
			}
		case orb.MultiPolygon:
			for _, p := range geom {
				walk(p)
			}
		case orb.Collection:
			for _, c := range geom {
				walk(c)
			}
		case orb.Bound:
			walk(geom.ToRing())
		}
	}
	walk(geometry)
}

// vertices returns all vertices of the geometry. The last point of a closed part duplicates its first point and is
// skipped.
func vertices(geometry orb.Geometry) []vertex {
	var result []vertex
	walkParts(geometry, func(points []orb.Point, firstIndex int) {
		count := len(points)
		if isClosed(points) {
			count--
		}
		for i := 0; i < count; i++ {
			result = append(result, vertex{point: points[i], index: firstIndex + i})
		}
	})
	return result
}

// segments returns the edges of all parts. Segments of one part are contiguous and ordered by vertex index.
func segments(geometry orb.Geometry) []segment {
	var result []segment
	part := 0
	walkParts(geometry, func(points []orb.Point, firstIndex int) {
		for i := 0; i+1 < len(points); i++ {
			result = append(result, segment{start: points[i], end: points[i+1], index: firstIndex + i, part: part})
		}
		part++
	})
	return result
}

// selfIntersections returns the points where segments of the geometry cross each other. Segments sharing a vertex
// by construction are never tested, and intersections at an endpoint of one of the segments are left out since that
// endpoint is a vertex already. Each intersection carries the vertex index of the first segment involved.
func selfIntersections(segments []segment) []vertex {
	var result []vertex
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			a := segments[i]
			b := segments[j]
			if areAdjacent(segments, i, j) || !a.bound().Intersects(b.bound()) {
				continue
			}

			t, u, ok := a.intersectionParameters(b)
			if !ok || isEndpointParameter(t) || isEndpointParameter(u) {
				continue
			}
			result = append(result, vertex{point: a.pointAt(t), index: a.index})
		}
	}
	return result
}

// areAdjacent is true for segments i < j following each other within their part, and for the first and last
// segment of a closed part.
func areAdjacent(segments []segment, i int, j int) bool {
	a := segments[i]
	b := segments[j]
	if a.part != b.part {
		return false
	}
	if b.index == a.index+1 {
		return true
	}

	isFirstOfPart := i == 0 || segments[i-1].part != a.part
	isLastOfPart := j == len(segments)-1 || segments[j+1].part != b.part
	return isFirstOfPart && isLastOfPart && a.start == b.end
}

func isEndpointParameter(t float64) bool {
	return t <= parameterEpsilon || t >= 1-parameterEpsilon
}

func isClosed(points []orb.Point) bool {
	return len(points) > 2 && points[0] == points[len(points)-1]
}

// containsPoint is true when a polygonal part of the geometry contains the point.
func containsPoint(geometry orb.Geometry, point orb.Point) bool {
	switch g := geometry.(type) {
	case orb.Ring:
		return planar.RingContains(g, point)
	case orb.Polygon:
		return planar.PolygonContains(g, point)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, point)
	case orb.Bound:
		return g.Contains(point)
	case orb.Collection:
		for _, c := range g {
			if containsPoint(c, point) {
				return true
			}
		}
	}
	return false
}

func hasArea(geometry orb.Geometry) bool {
	switch g := geometry.(type) {
	case orb.Collection:
		for _, c := range g {
			if hasArea(c) {
				return true
			}
		}
		return false
	}
	return feature.GeometryTypeOf(geometry) == feature.GeometryPolygon
}

// intersectsExtent is true when the geometry shares at least one point with the extent.
func intersectsExtent(geometry orb.Geometry, extent orb.Bound) bool {
	if !geometry.Bound().Intersects(extent) {
		return false
	}

	if containsPoint(geometry, extent.Center()) {
		return true
	}

	// Clipping modifies its input
	clipped := clip.Geometry(extent, orb.Clone(geometry))
	return clipped != nil && !feature.IsEmpty(clipped)
}
