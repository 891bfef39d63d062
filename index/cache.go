package index

import (
	"github.com/paulmach/orb"
	"snapindex/feature"
)

type geometryCache interface {
	// get returns the indexed geometry of the given feature.
	get(id feature.ID) (orb.Geometry, bool)

	// insert stores the geometry for the given feature and replaces an existing entry. The cache takes ownership of
	// the geometry, callers must not modify it afterwards.
	insert(id feature.ID, geometry orb.Geometry)

	// remove deletes the entry of the given feature and returns the geometry that has been stored.
	remove(id feature.ID) (orb.Geometry, bool)

	// vertices returns the vertices of the geometry of the given feature including the intersections of its own
	// segments. The result is computed once per cached geometry.
	vertices(id feature.ID) ([]vertex, bool)

	// count returns the number of cached geometries.
	count() int
}

// mapGeometryCache is the owner of all geometries of an index. The geometries are independent copies in the working
// reference system, they never alias geometries of the feature source. It has no internal locking.
type mapGeometryCache struct {
	geometries map[feature.ID]orb.Geometry
	vertexSets map[feature.ID][]vertex
}

func newMapGeometryCache() *mapGeometryCache {
	return &mapGeometryCache{
		geometries: map[feature.ID]orb.Geometry{},
		vertexSets: map[feature.ID][]vertex{},
	}
}

func (c *mapGeometryCache) get(id feature.ID) (orb.Geometry, bool) {
	geometry, ok := c.geometries[id]
	return geometry, ok
}

func (c *mapGeometryCache) insert(id feature.ID, geometry orb.Geometry) {
	c.geometries[id] = geometry
	delete(c.vertexSets, id)
}

func (c *mapGeometryCache) remove(id feature.ID) (orb.Geometry, bool) {
	geometry, ok := c.geometries[id]
	if ok {
		delete(c.geometries, id)
		delete(c.vertexSets, id)
	}
	return geometry, ok
}

func (c *mapGeometryCache) vertices(id feature.ID) ([]vertex, bool) {
	if vertexSet, ok := c.vertexSets[id]; ok {
		return vertexSet, true
	}

	geometry, ok := c.geometries[id]
	if !ok {
		return nil, false
	}

	vertexSet := vertices(geometry)
	vertexSet = append(vertexSet, selfIntersections(segments(geometry))...)
	c.vertexSets[id] = vertexSet
	return vertexSet, true
}

func (c *mapGeometryCache) count() int {
	return len(c.geometries)
}
