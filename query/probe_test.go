package query

import (
	"github.com/paulmach/orb"
	"snapindex/feature"
	"snapindex/index"
	"snapindex/transform"
	"snapindex/util"
	"testing"
)

func newTestLocator(t *testing.T) *index.PointLocator {
	source := feature.NewMemorySource(transform.Undefined,
		&feature.Feature{ID: 1, Geometry: orb.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}},
		&feature.Feature{ID: 2, Geometry: orb.Polygon{{{5, 5}, {5, 15}, {15, 15}, {15, 5}, {5, 5}}}},
	)
	locator, err := index.NewPointLocator(source, index.Options{})
	util.AssertNil(t, err)
	return locator
}

func TestProbe_vertex(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindVertex, orb.Point{1, 1}, 5)

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 1, matches)
	util.AssertEqual(t, orb.Point{0, 0}, matches[0].Point())
}

func TestProbe_vertexNotFound(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindVertex, orb.Point{100, 100}, 5)

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertNotNil(t, matches)
	util.AssertLen(t, 0, matches)
}

func TestProbe_vertexWithPointExclusion(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindVertex, orb.Point{1, 1}, 10, NewPointExclusionFilter(orb.Point{0, 0}))

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 1, matches)
	util.AssertEqual(t, orb.Point{0, 10}, matches[0].Point())
}

func TestProbe_edgeWithFeatureExclusion(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindEdge, orb.Point{9, 6}, 2, NewFeatureExclusionFilter(1))

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 1, matches)
	util.AssertEqual(t, feature.ID(2), matches[0].FeatureID())
	util.AssertEqual(t, orb.Point{9, 5}, matches[0].Point())
}

func TestProbe_area(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindArea, orb.Point{7, 7}, 0)

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 1, matches)
	util.AssertEqual(t, feature.ID(1), matches[0].FeatureID())
	util.AssertTrue(t, matches[0].HasArea())
}

func TestProbe_pointInPolygonWithFilter(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindPointInPolygon, orb.Point{7, 7}, 0)

	// Act & Assert
	util.AssertLen(t, 2, probe.Execute(locator))

	probe.AddFilter(NewFeatureExclusionFilter(2))
	matches := probe.Execute(locator)
	util.AssertLen(t, 1, matches)
	util.AssertEqual(t, feature.ID(1), matches[0].FeatureID())
}

func TestProbe_rect(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	rect := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}
	probe := NewRectProbe(rect)

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 2, matches)
	util.AssertEqual(t, 0, matches[0].VertexIndex())
	util.AssertEqual(t, 3, matches[1].VertexIndex())
	util.AssertEqual(t, &rect, probe.GetRect())
}

func TestProbe_rectAround(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	probe := NewPointProbe(ProbeKindRect, orb.Point{0, 0}, 1)

	// Act
	matches := probe.Execute(locator)

	// Assert
	util.AssertLen(t, 2, matches)
	util.AssertEqual(t, &orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}, probe.GetRect())
}

func TestLogicalFilter(t *testing.T) {
	// Arrange
	filter := NewLogicalFilter(NewFeatureExclusionFilter(1, 2), NewPointExclusionFilter(orb.Point{3, 3}))

	// Act & Assert
	util.AssertFalse(t, filter.AcceptMatch(index.NewVertexMatch(1, 0, orb.Point{0, 0}, 0)))
	util.AssertFalse(t, filter.AcceptMatch(index.NewVertexMatch(3, 0, orb.Point{3, 3}, 0)))
	util.AssertTrue(t, filter.AcceptMatch(index.NewVertexMatch(3, 0, orb.Point{0, 0}, 0)))
	util.AssertTrue(t, NewLogicalFilter().AcceptMatch(index.NewVertexMatch(1, 0, orb.Point{0, 0}, 0)))
}

func TestQuery_execute(t *testing.T) {
	// Arrange
	locator := newTestLocator(t)
	query := NewQuery([]*Probe{
		NewPointProbe(ProbeKindVertex, orb.Point{1, 1}, 5),
		NewPointProbe(ProbeKindVertex, orb.Point{100, 100}, 5),
		NewPointProbe(ProbeKindPointInPolygon, orb.Point{7, 7}, 0),
	})

	// Act
	result := query.Execute(locator)

	// Assert
	util.AssertLen(t, 3, result)
	util.AssertLen(t, 1, result[0])
	util.AssertLen(t, 0, result[1])
	util.AssertLen(t, 2, result[2])
}
