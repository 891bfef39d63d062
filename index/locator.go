package index

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"snapindex/feature"
	"snapindex/transform"
	"time"
)

type State int

const (
	StateUnbuilt State = iota
	StateBuilt
	StateEmpty // Built, but the source has no indexable feature.
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateBuilt:
		return "built"
	case StateEmpty:
		return "empty"
	}
	return fmt.Sprintf("[!UNKNOWN State %d]", int(s))
}

type Options struct {
	// DestinationReferenceSystem is the working reference system of the index. When undefined, geometries are
	// indexed in the reference system of the source.
	DestinationReferenceSystem transform.ReferenceSystem

	// TransformContext provides additional projections. Only used when DestinationReferenceSystem is set.
	TransformContext *transform.Context

	// Extent limits the index to features intersecting it. It's expressed in the working reference system.
	Extent *orb.Bound

	// Transformer replaces the transformer derived from the reference systems when set.
	Transformer transform.Transformer
}

// PointLocator indexes the geometries of one feature source and answers snapping queries (nearest vertex, nearest
// edge, nearest area, edges in a rectangle and point in polygon).
//
// The geometry cache and the spatial tree are always consistent: a geometry is cached exactly when its bounding box
// is in the tree. When the source implements feature.Notifier, the locator subscribes itself and keeps both in sync
// with edits to the source.
//
// A PointLocator is not safe for concurrent use. Callers that edit and query from several goroutines have to
// serialize all calls themselves.
type PointLocator struct {
	source                     feature.Source
	destinationReferenceSystem transform.ReferenceSystem
	transformer                transform.Transformer
	extent                     *orb.Bound

	state State
	cache geometryCache
	tree  *spatialTree
}

func NewPointLocator(source feature.Source, options Options) (*PointLocator, error) {
	if source == nil {
		return nil, errors.New("Point locator needs a feature source")
	}

	transformer := options.Transformer
	if transformer == nil {
		var err error
		transformer, err = transform.New(source.ReferenceSystem(), options.DestinationReferenceSystem, options.TransformContext)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to create transformer for point locator")
		}
	}

	l := &PointLocator{
		source:                     source,
		destinationReferenceSystem: options.DestinationReferenceSystem,
		transformer:                transformer,
		extent:                     copyBound(options.Extent),
		state:                      StateUnbuilt,
	}

	if notifier, ok := source.(feature.Notifier); ok {
		notifier.Subscribe(l)
	}

	return l, nil
}

// Close stops listening to edits of the source and removes the index.
func (l *PointLocator) Close() {
	if notifier, ok := l.source.(feature.Notifier); ok {
		notifier.Unsubscribe(l)
	}
	l.Invalidate()
}

func (l *PointLocator) Source() feature.Source {
	return l.source
}

func (l *PointLocator) DestinationReferenceSystem() transform.ReferenceSystem {
	return l.destinationReferenceSystem
}

// Extent returns a copy of the extent or nil when the whole source is indexed.
func (l *PointLocator) Extent() *orb.Bound {
	return copyBound(l.extent)
}

// SetExtent changes the indexed area. A different extent removes the current index, nil means the whole source.
func (l *PointLocator) SetExtent(extent *orb.Bound) {
	if extent == nil && l.extent == nil || extent != nil && l.extent != nil && extent.Equal(*l.extent) {
		return
	}

	sigolo.Debugf("Change extent of point locator from %v to %v", l.extent, extent)
	l.extent = copyBound(extent)
	l.Invalidate()
}

func (l *PointLocator) State() State {
	return l.state
}

// HasIndex is true when the index has been built, even when it's empty.
func (l *PointLocator) HasIndex() bool {
	return l.state != StateUnbuilt
}

func (l *PointLocator) CachedGeometryCount() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.count()
}

// Build indexes the source unless an index already exists. With maxFeatures >= 0 the build stops as soon as more
// than maxFeatures features would be indexed, returns false and leaves the locator without index. A negative value
// means no limit.
func (l *PointLocator) Build(maxFeatures int) bool {
	if l.HasIndex() {
		return true
	}
	return l.rebuild(maxFeatures)
}

func (l *PointLocator) rebuild(maxFeatures int) bool {
	l.Invalidate()

	sigolo.Debugf("Build point locator index (max. features: %d, extent: %v)", maxFeatures, l.extent)
	buildStartTime := time.Now()

	cache := newMapGeometryCache()
	tree := newSpatialTree()
	limitExceeded := false
	skipped := 0

	err := l.source.Features(func(f *feature.Feature) bool {
		geometry, bound, ok := l.prepareGeometry(f.ID, f.Geometry)
		if !ok {
			skipped++
			return true
		}

		if maxFeatures >= 0 && cache.count() >= maxFeatures {
			limitExceeded = true
			return false
		}

		err := tree.insert(f.ID, bound)
		if err != nil {
			sigolo.Debugf("Skip feature %d: %s", f.ID, err.Error())
			skipped++
			return true
		}
		cache.insert(f.ID, geometry)

		return true
	})
	if err != nil {
		sigolo.Errorf("Building point locator index failed: %+v", err)
		return false
	}

	if limitExceeded {
		sigolo.Debugf("Stopped building point locator index: source has more than %d indexable features", maxFeatures)
		return false
	}

	l.cache = cache
	l.tree = tree
	if cache.count() == 0 {
		l.state = StateEmpty
	} else {
		l.state = StateBuilt
	}

	sigolo.Debugf("Built point locator index with %d geometries (%d skipped) in %s, state is %s", cache.count(), skipped, time.Since(buildStartTime), l.state)
	return true
}

// Invalidate removes the index. The next query or Build call creates a new one.
func (l *PointLocator) Invalidate() {
	if l.state != StateUnbuilt {
		sigolo.Debugf("Remove point locator index with %d geometries", l.CachedGeometryCount())
	}
	l.cache = nil
	l.tree = nil
	l.state = StateUnbuilt
}

// prepare builds the index when there is none. Lazy builds never use a feature limit.
func (l *PointLocator) prepare() bool {
	if l.state == StateUnbuilt && !l.rebuild(-1) {
		return false
	}
	return l.state == StateBuilt
}

// prepareGeometry turns a source geometry into a geometry of the working reference system. It returns false when the
// feature can't or shouldn't be indexed.
func (l *PointLocator) prepareGeometry(id feature.ID, geometry orb.Geometry) (orb.Geometry, orb.Bound, bool) {
	if geometry == nil || feature.IsEmpty(geometry) {
		sigolo.Tracef("Skip feature %d: empty geometry", id)
		return nil, orb.Bound{}, false
	}

	transformed, err := l.transformer.Transform(geometry)
	if err != nil {
		sigolo.Debugf("Skip feature %d: %s", id, err.Error())
		return nil, orb.Bound{}, false
	}

	if l.extent != nil && !intersectsExtent(transformed, *l.extent) {
		sigolo.Tracef("Skip feature %d: outside of extent %v", id, *l.extent)
		return nil, orb.Bound{}, false
	}

	bound := transformed.Bound()
	if !isIndexable(bound) {
		sigolo.Tracef("Skip feature %d: bounding box %v can't be indexed", id, bound)
		return nil, orb.Bound{}, false
	}

	return transformed, bound, true
}

// OnFeatureAdded indexes the new feature. Without an index, nothing happens since the next build reads the feature
// anyway.
func (l *PointLocator) OnFeatureAdded(id feature.ID) {
	if !l.HasIndex() {
		return
	}

	f, err := l.source.Feature(id)
	if err != nil {
		sigolo.Errorf("Unable to index added feature %d: %+v", id, err)
		return
	}

	l.removeEntry(id)
	l.addEntry(id, f.Geometry)
}

func (l *PointLocator) OnFeatureDeleted(id feature.ID) {
	if !l.HasIndex() {
		return
	}
	l.removeEntry(id)
}

// OnGeometryChanged replaces the indexed geometry of the feature. When the new geometry can't be indexed, the feature
// is removed from the index.
func (l *PointLocator) OnGeometryChanged(id feature.ID, geometry orb.Geometry) {
	if !l.HasIndex() {
		return
	}
	l.removeEntry(id)
	l.addEntry(id, geometry)
}

func (l *PointLocator) addEntry(id feature.ID, geometry orb.Geometry) {
	transformed, bound, ok := l.prepareGeometry(id, geometry)
	if !ok {
		return
	}

	err := l.tree.insert(id, bound)
	if err != nil {
		sigolo.Debugf("Skip feature %d: %s", id, err.Error())
		return
	}
	l.cache.insert(id, transformed)
	l.state = StateBuilt

	sigolo.Tracef("Indexed feature %d with bounding box %v", id, bound)
}

func (l *PointLocator) removeEntry(id feature.ID) {
	geometry, ok := l.cache.remove(id)
	if ok {
		l.tree.remove(id, geometry.Bound())
		sigolo.Tracef("Removed feature %d from index", id)
	}

	if l.cache.count() == 0 {
		l.state = StateEmpty
	}
}

func copyBound(bound *orb.Bound) *orb.Bound {
	if bound == nil {
		return nil
	}
	copied := *bound
	return &copied
}
