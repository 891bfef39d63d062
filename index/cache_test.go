package index

import (
	"github.com/paulmach/orb"
	"snapindex/util"
	"testing"
)

func TestMapGeometryCache_insertAndGet(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()
	geometry := orb.LineString{{0, 0}, {1, 1}}

	// Act
	cache.insert(1, geometry)

	// Assert
	cachedGeometry, ok := cache.get(1)
	util.AssertTrue(t, ok)
	util.AssertEqual(t, geometry, cachedGeometry)
	util.AssertEqual(t, 1, cache.count())

	_, ok = cache.get(2)
	util.AssertFalse(t, ok)
}

func TestMapGeometryCache_insertReplacesEntry(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()
	cache.insert(1, orb.Point{1, 2})

	// Act
	cache.insert(1, orb.Point{3, 4})

	// Assert
	cachedGeometry, ok := cache.get(1)
	util.AssertTrue(t, ok)
	util.AssertEqual(t, orb.Point{3, 4}, cachedGeometry)
	util.AssertEqual(t, 1, cache.count())
}

func TestMapGeometryCache_remove(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()
	cache.insert(1, orb.Point{1, 2})
	cache.insert(2, orb.Point{3, 4})

	// Act
	removedGeometry, ok := cache.remove(1)

	// Assert
	util.AssertTrue(t, ok)
	util.AssertEqual(t, orb.Point{1, 2}, removedGeometry)
	util.AssertEqual(t, 1, cache.count())
	_, ok = cache.get(1)
	util.AssertFalse(t, ok)
}

func TestMapGeometryCache_removeNotExisting(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()

	// Act
	removedGeometry, ok := cache.remove(1)

	// Assert
	util.AssertFalse(t, ok)
	util.AssertTrue(t, removedGeometry == nil)
	util.AssertEqual(t, 0, cache.count())
}

func TestMapGeometryCache_vertices(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()
	cache.insert(1, orb.LineString{{0, 0}, {10, 10}, {10, 0}, {0, 10}})

	// Act
	result, ok := cache.vertices(1)
	cachedResult, cachedOk := cache.vertices(1)

	// Assert
	util.AssertTrue(t, ok)
	util.AssertLen(t, 5, result)
	util.AssertPointApprox(t, orb.Point{5, 5}, result[4].point, 0.000001)
	util.AssertTrue(t, cachedOk)
	util.AssertEqual(t, result, cachedResult)

	_, ok = cache.vertices(2)
	util.AssertFalse(t, ok)
}

func TestMapGeometryCache_verticesFollowGeometryChanges(t *testing.T) {
	// Arrange
	cache := newMapGeometryCache()
	cache.insert(1, orb.LineString{{0, 0}, {10, 10}, {10, 0}, {0, 10}})
	_, _ = cache.vertices(1)

	// Act
	cache.insert(1, orb.Point{3, 4})

	// Assert
	result, ok := cache.vertices(1)
	util.AssertTrue(t, ok)
	util.AssertEqual(t, []vertex{{point: orb.Point{3, 4}, index: 0}}, result)

	cache.remove(1)
	_, ok = cache.vertices(1)
	util.AssertFalse(t, ok)
}
