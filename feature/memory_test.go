package feature

import (
	"fmt"
	"github.com/paulmach/orb"
	"snapindex/transform"
	"snapindex/util"
	"testing"
)

type recordingListener struct {
	events []string
}

func (l *recordingListener) OnFeatureAdded(id ID) {
	l.events = append(l.events, fmt.Sprintf("added %d", id))
}

func (l *recordingListener) OnFeatureDeleted(id ID) {
	l.events = append(l.events, fmt.Sprintf("deleted %d", id))
}

func (l *recordingListener) OnGeometryChanged(id ID, geometry orb.Geometry) {
	l.events = append(l.events, fmt.Sprintf("changed %d", id))
}

func point(id ID, x float64, y float64) *Feature {
	return &Feature{ID: id, Geometry: orb.Point{x, y}}
}

func TestMemorySource_features(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.WGS84, point(3, 0, 0), point(1, 1, 1), point(2, 2, 2))

	// Act
	var ids []ID
	err := source.Features(func(f *Feature) bool {
		ids = append(ids, f.ID)
		return true
	})

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []ID{1, 2, 3}, ids)
	util.AssertEqual(t, 3, source.Count())
	util.AssertEqual(t, transform.WGS84, source.ReferenceSystem())
}

func TestMemorySource_featuresStops(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0), point(2, 1, 1), point(3, 2, 2))

	// Act
	var ids []ID
	err := source.Features(func(f *Feature) bool {
		ids = append(ids, f.ID)
		return len(ids) < 2
	})

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []ID{1, 2}, ids)
}

func TestMemorySource_feature(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0))

	// Act
	f, err := source.Feature(1)
	_, missingErr := source.Feature(2)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, orb.Point{0, 0}, f.Geometry)
	util.AssertErrorIs(t, ErrFeatureNotFound, missingErr)
}

func TestMemorySource_editsNotifyListeners(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0))
	listener := &recordingListener{}
	source.Subscribe(listener)
	source.Subscribe(listener)

	// Act
	util.AssertNil(t, source.Add(point(2, 1, 1)))
	util.AssertNil(t, source.ChangeGeometry(1, orb.Point{5, 5}))
	util.AssertNil(t, source.Delete(2))

	// Assert
	util.AssertEqual(t, []string{"added 2", "changed 1", "deleted 2"}, listener.events)
	f, _ := source.Feature(1)
	util.AssertEqual(t, orb.Point{5, 5}, f.Geometry)
	util.AssertEqual(t, 1, source.Count())
}

func TestMemorySource_failingEditsDontNotify(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0))
	listener := &recordingListener{}
	source.Subscribe(listener)

	// Act
	addErr := source.Add(point(1, 1, 1))
	deleteErr := source.Delete(5)
	changeErr := source.ChangeGeometry(5, orb.Point{})

	// Assert
	util.AssertNotNil(t, addErr)
	util.AssertErrorIs(t, ErrFeatureNotFound, deleteErr)
	util.AssertErrorIs(t, ErrFeatureNotFound, changeErr)
	util.AssertLen(t, 0, listener.events)
}

func TestMemorySource_unsubscribe(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined)
	listener := &recordingListener{}
	source.Subscribe(listener)

	// Act
	source.Unsubscribe(listener)
	util.AssertNil(t, source.Add(point(1, 0, 0)))

	// Assert
	util.AssertLen(t, 0, listener.events)
}

func TestMemorySource_nextID(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0), point(4, 0, 0))

	// Act
	util.AssertNil(t, source.Delete(4))
	nextID := source.NextID()

	// Assert
	util.AssertEqual(t, ID(5), nextID)
}

func TestMemorySource_sync(t *testing.T) {
	// Arrange
	source := NewMemorySource(transform.Undefined, point(1, 0, 0), point(2, 1, 1), point(3, 2, 2))
	listener := &recordingListener{}
	source.Subscribe(listener)

	// Act
	source.Sync([]*Feature{
		point(4, 4, 4),
		point(2, 1, 1),
		point(1, 9, 9),
	})

	// Assert
	util.AssertEqual(t, []string{"deleted 3", "changed 1", "added 4"}, listener.events)
	util.AssertEqual(t, 3, source.Count())
	f, _ := source.Feature(1)
	util.AssertEqual(t, orb.Point{9, 9}, f.Geometry)
}

func TestGeometryTypeOf(t *testing.T) {
	util.AssertEqual(t, GeometryPoint, GeometryTypeOf(orb.MultiPoint{}))
	util.AssertEqual(t, GeometryLine, GeometryTypeOf(orb.LineString{}))
	util.AssertEqual(t, GeometryPolygon, GeometryTypeOf(orb.Ring{}))
	util.AssertEqual(t, GeometryPolygon, GeometryTypeOf(orb.MultiPolygon{}))
	util.AssertEqual(t, GeometryCollection, GeometryTypeOf(orb.Collection{}))
	util.AssertEqual(t, GeometryUnknown, GeometryTypeOf(nil))
	util.AssertEqual(t, "polygon", GeometryPolygon.String())
}

func TestPointCount(t *testing.T) {
	polygon := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {0, 0}}}

	util.AssertEqual(t, 0, PointCount(nil))
	util.AssertEqual(t, 4, PointCount(polygon))
	util.AssertEqual(t, 9, PointCount(orb.Collection{polygon, orb.Point{}, orb.MultiPolygon{polygon}}))
	util.AssertTrue(t, IsEmpty(orb.MultiLineString{orb.LineString{}}))
	util.AssertFalse(t, IsEmpty(orb.Point{}))
}
