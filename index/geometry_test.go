package index

import (
	"github.com/paulmach/orb"
	"snapindex/util"
	"testing"
)

var testSquare = orb.Polygon{orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}

func TestVertices_skipRingClosingPoint(t *testing.T) {
	// Act
	result := vertices(testSquare)

	// Assert
	util.AssertEqual(t, []vertex{
		{point: orb.Point{0, 0}, index: 0},
		{point: orb.Point{0, 10}, index: 1},
		{point: orb.Point{10, 10}, index: 2},
		{point: orb.Point{10, 0}, index: 3},
	}, result)
}

func TestVertices_numberingAcrossParts(t *testing.T) {
	// Arrange
	polygonWithHole := orb.Polygon{
		orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
		orb.Ring{{2, 2}, {4, 2}, {4, 4}, {2, 2}},
	}

	// Act
	result := vertices(polygonWithHole)

	// Assert
	util.AssertEqual(t, 7, len(result))
	util.AssertEqual(t, vertex{point: orb.Point{2, 2}, index: 5}, result[4])
	util.AssertEqual(t, vertex{point: orb.Point{4, 4}, index: 7}, result[6])
}

func TestSegments_doNotSpanParts(t *testing.T) {
	// Arrange
	lines := orb.MultiLineString{
		{{0, 0}, {1, 0}},
		{{5, 5}, {6, 5}, {6, 6}},
	}

	// Act
	result := segments(lines)

	// Assert
	util.AssertEqual(t, []segment{
		{start: orb.Point{0, 0}, end: orb.Point{1, 0}, index: 0, part: 0},
		{start: orb.Point{5, 5}, end: orb.Point{6, 5}, index: 2, part: 1},
		{start: orb.Point{6, 5}, end: orb.Point{6, 6}, index: 3, part: 1},
	}, result)
}

func TestSegments_point(t *testing.T) {
	util.AssertEqual(t, 0, len(segments(orb.Point{1, 1})))
	util.AssertEqual(t, 1, len(vertices(orb.Point{1, 1})))
}

func TestSegment_closestPoint(t *testing.T) {
	// Arrange
	s := segment{start: orb.Point{0, 0}, end: orb.Point{10, 0}}

	// Act & Assert
	util.AssertEqual(t, orb.Point{5, 0}, s.closestPoint(orb.Point{5, -1}))
	util.AssertEqual(t, orb.Point{0, 0}, s.closestPoint(orb.Point{-3, 4}))
	util.AssertEqual(t, orb.Point{10, 0}, s.closestPoint(orb.Point{12, 1}))

	zeroLength := segment{start: orb.Point{1, 1}, end: orb.Point{1, 1}}
	util.AssertEqual(t, orb.Point{1, 1}, zeroLength.closestPoint(orb.Point{4, 5}))
}

func TestSegment_intersection(t *testing.T) {
	// Arrange
	a := segment{start: orb.Point{0, 0}, end: orb.Point{10, 10}}
	b := segment{start: orb.Point{0, 10}, end: orb.Point{10, 0}}
	parallel := segment{start: orb.Point{0, 1}, end: orb.Point{10, 11}}
	apart := segment{start: orb.Point{20, 0}, end: orb.Point{30, 10}}

	// Act & Assert
	p, ok := a.intersection(b)
	util.AssertTrue(t, ok)
	util.AssertPointApprox(t, orb.Point{5, 5}, p, 0.000001)

	_, ok = a.intersection(parallel)
	util.AssertFalse(t, ok)

	_, ok = a.intersection(apart)
	util.AssertFalse(t, ok)
}

func TestSegment_intersectsBound(t *testing.T) {
	// Arrange
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}

	// Act & Assert
	util.AssertTrue(t, segment{start: orb.Point{1, 1}, end: orb.Point{5, 5}}.intersectsBound(bound))
	util.AssertTrue(t, segment{start: orb.Point{-1, 1}, end: orb.Point{3, 1}}.intersectsBound(bound))
	util.AssertFalse(t, segment{start: orb.Point{-1, 3}, end: orb.Point{3, 3}}.intersectsBound(bound))
	util.AssertFalse(t, segment{start: orb.Point{-1, 5.5}, end: orb.Point{5.5, -1}}.intersectsBound(bound))
}

func TestSegment_intersectsBoundWithoutArea(t *testing.T) {
	// Arrange
	s := segment{start: orb.Point{0, 0}, end: orb.Point{10, 0}}
	pointBound := orb.Bound{Min: orb.Point{5, 0}, Max: orb.Point{5, 0}}
	lineBound := orb.Bound{Min: orb.Point{2, 0}, Max: orb.Point{4, 0}}
	verticalLineBound := orb.Bound{Min: orb.Point{5, -1}, Max: orb.Point{5, 1}}

	// Act & Assert
	util.AssertTrue(t, s.intersectsBound(pointBound))
	util.AssertTrue(t, s.intersectsBound(lineBound))
	util.AssertTrue(t, s.intersectsBound(verticalLineBound))
	util.AssertFalse(t, s.intersectsBound(orb.Bound{Min: orb.Point{5, 1}, Max: orb.Point{5, 1}}))
	util.AssertFalse(t, s.intersectsBound(orb.Bound{Min: orb.Point{11, 0}, Max: orb.Point{11, 0}}))
}

func TestSegment_touches(t *testing.T) {
	// Arrange
	s := segment{start: orb.Point{0, 0}, end: orb.Point{10, 0}}

	// Act & Assert
	util.AssertTrue(t, s.touches(segment{start: orb.Point{5, 0}, end: orb.Point{5, 0}}))
	util.AssertTrue(t, s.touches(segment{start: orb.Point{8, 0}, end: orb.Point{12, 0}}))
	util.AssertTrue(t, s.touches(segment{start: orb.Point{10, 0}, end: orb.Point{10, 5}}))
	util.AssertFalse(t, s.touches(segment{start: orb.Point{11, 0}, end: orb.Point{12, 0}}))
	util.AssertFalse(t, s.touches(segment{start: orb.Point{0, 1}, end: orb.Point{10, 1}}))
}

func TestSelfIntersections(t *testing.T) {
	// Arrange
	bowTie := orb.LineString{{0, 0}, {10, 10}, {10, 0}, {0, 10}}

	// Act
	result := selfIntersections(segments(bowTie))

	// Assert
	util.AssertEqual(t, 1, len(result))
	util.AssertPointApprox(t, orb.Point{5, 5}, result[0].point, 0.000001)
	util.AssertEqual(t, 0, result[0].index)
}

func TestSelfIntersections_adjacentSegmentsIgnored(t *testing.T) {
	util.AssertEqual(t, 0, len(selfIntersections(segments(testSquare))))
}

func TestSelfIntersections_sharedVertexWithRoundingError(t *testing.T) {
	// Arrange
	// Intersecting both segments numerically gives a point next to the shared vertex, not the vertex itself
	line := orb.LineString{
		{68.00846759202162, 22.155305259276428},
		{20.418687664732285, 36.387141685690594},
		{57.16732760710226, 86.54914374478864},
	}

	// Act
	result := selfIntersections(segments(line))

	// Assert
	util.AssertLen(t, 0, result)
}

func TestSelfIntersections_touchingVertexIgnored(t *testing.T) {
	// Arrange
	// The vertex (5, 0) lies on the first segment
	line := orb.LineString{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 0}, {5, -5}}

	// Act
	result := selfIntersections(segments(line))

	// Assert
	util.AssertLen(t, 0, result)
}

func TestSelfIntersections_closedPartsOnly(t *testing.T) {
	// Arrange
	// First and last segment of an open line share no vertex and cross each other
	openLine := orb.LineString{{0, 5}, {10, 5}, {10, 10}, {5, 10}, {5, 0}}

	// Act
	result := selfIntersections(segments(openLine))

	// Assert
	util.AssertLen(t, 1, result)
	util.AssertPointApprox(t, orb.Point{5, 5}, result[0].point, 0.000001)
	util.AssertEqual(t, 0, result[0].index)
}

func TestContainsPoint(t *testing.T) {
	util.AssertTrue(t, containsPoint(testSquare, orb.Point{5, 5}))
	util.AssertFalse(t, containsPoint(testSquare, orb.Point{50, 50}))
	util.AssertFalse(t, containsPoint(orb.LineString{{0, 0}, {10, 10}}, orb.Point{5, 5}))
	util.AssertTrue(t, containsPoint(orb.Collection{orb.Point{0, 0}, testSquare}, orb.Point{5, 5}))
}

func TestIntersectsExtent(t *testing.T) {
	// Arrange
	line := orb.LineString{{0, 0}, {10, 10}}

	// Act & Assert
	util.AssertTrue(t, intersectsExtent(line, orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{6, 6}}))
	util.AssertFalse(t, intersectsExtent(line, orb.Bound{Min: orb.Point{6, 0}, Max: orb.Point{10, 3}}))
	util.AssertTrue(t, intersectsExtent(testSquare, orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{6, 6}}))
	util.AssertTrue(t, intersectsExtent(orb.Point{1, 1}, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{2, 2}}))
	util.AssertFalse(t, intersectsExtent(orb.Point{3, 1}, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{2, 2}}))
}
