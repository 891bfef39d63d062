package feature

import (
	"fmt"
	"github.com/paulmach/orb"
)

type GeometryType int

const (
	GeometryUnknown GeometryType = iota
	GeometryPoint
	GeometryLine
	GeometryPolygon
	GeometryCollection
)

func (g GeometryType) String() string {
	switch g {
	case GeometryUnknown:
		return "unknown"
	case GeometryPoint:
		return "point"
	case GeometryLine:
		return "line"
	case GeometryPolygon:
		return "polygon"
	case GeometryCollection:
		return "collection"
	}
	return fmt.Sprintf("[!UNKNOWN GeometryType %d]", g)
}

// GeometryTypeOf classifies the given geometry. Multi-geometries have the type of their parts, a ring counts as a
// polygon since it is closed.
func GeometryTypeOf(geometry orb.Geometry) GeometryType {
	switch geometry.(type) {
	case orb.Point, orb.MultiPoint:
		return GeometryPoint
	case orb.LineString, orb.MultiLineString:
		return GeometryLine
	case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Bound:
		return GeometryPolygon
	case orb.Collection:
		return GeometryCollection
	}
	return GeometryUnknown
}

// PointCount returns the number of stored coordinates of the geometry, ring-closing points included.
func PointCount(geometry orb.Geometry) int {
	switch g := geometry.(type) {
	case nil:
		return 0
	case orb.Point:
		return 1
	case orb.MultiPoint:
		return len(g)
	case orb.LineString:
		return len(g)
	case orb.Ring:
		return len(g)
	case orb.MultiLineString:
		count := 0
		for _, ls := range g {
			count += len(ls)
		}
		return count
	case orb.Polygon:
		count := 0
		for _, r := range g {
			count += len(r)
		}
		return count
	case orb.MultiPolygon:
		count := 0
		for _, p := range g {
			count += PointCount(p)
		}
		return count
	case orb.Collection:
		count := 0
		for _, c := range g {
			count += PointCount(c)
		}
		return count
	case orb.Bound:
		if g.IsEmpty() {
			return 0
		}
		return 5
	}
	return 0
}

// IsEmpty is true for geometries without any coordinate. Such geometries have no bounding box.
func IsEmpty(geometry orb.Geometry) bool {
	return PointCount(geometry) == 0
}
