package transform

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"
	"math"
)

// ReferenceSystem names a coordinate reference system, e.g. "EPSG:4326". The empty value means "not set".
type ReferenceSystem string

const (
	Undefined   ReferenceSystem = ""
	WGS84       ReferenceSystem = "EPSG:4326"
	WebMercator ReferenceSystem = "EPSG:3857"
)

var ErrTransformFailed = errors.New("Transform failed")

func (r ReferenceSystem) IsValid() bool {
	return r != Undefined
}

func (r ReferenceSystem) String() string {
	if !r.IsValid() {
		return "[undefined]"
	}
	return string(r)
}

type projectionKey struct {
	from ReferenceSystem
	to   ReferenceSystem
}

// Context holds the projections available to transformers in addition to the built-in WGS84 <-> Web Mercator ones.
// Projections added to a context take precedence over built-in ones.
type Context struct {
	projections map[projectionKey]orb.Projection
}

func NewContext() *Context {
	return &Context{
		projections: map[projectionKey]orb.Projection{},
	}
}

func (c *Context) AddProjection(from ReferenceSystem, to ReferenceSystem, projection orb.Projection) {
	if c.projections == nil {
		c.projections = map[projectionKey]orb.Projection{}
	}
	c.projections[projectionKey{from, to}] = projection
}

func (c *Context) projection(from ReferenceSystem, to ReferenceSystem) (orb.Projection, bool) {
	if c != nil {
		if projection, ok := c.projections[projectionKey{from, to}]; ok {
			return projection, true
		}
	}

	switch {
	case from == WGS84 && to == WebMercator:
		return project.WGS84.ToMercator, true
	case from == WebMercator && to == WGS84:
		return project.Mercator.ToWGS84, true
	}
	return nil, false
}

// Transformer maps geometries from the native reference system of a source into the working reference system of an
// index. The returned geometry never shares memory with the input geometry.
type Transformer interface {
	Transform(geometry orb.Geometry) (orb.Geometry, error)
}

type identityTransformer struct{}

func (t identityTransformer) Transform(geometry orb.Geometry) (orb.Geometry, error) {
	if geometry == nil {
		return nil, errors.Wrap(ErrTransformFailed, "Geometry is nil")
	}
	return orb.Clone(geometry), nil
}

type projectionTransformer struct {
	from       ReferenceSystem
	to         ReferenceSystem
	projection orb.Projection
}

func (t *projectionTransformer) Transform(geometry orb.Geometry) (orb.Geometry, error) {
	if geometry == nil {
		return nil, errors.Wrap(ErrTransformFailed, "Geometry is nil")
	}

	// project.Geometry works in place
	projected := project.Geometry(orb.Clone(geometry), t.projection)

	if !isFinite(projected) {
		return nil, errors.Wrapf(ErrTransformFailed, "Geometry has no finite representation in %s when transforming from %s", t.to, t.from)
	}
	return projected, nil
}

// New creates a transformer from one reference system to another. When the destination is undefined or equal to the
// source, the transformer only copies geometries.
func New(from ReferenceSystem, to ReferenceSystem, context *Context) (Transformer, error) {
	if !to.IsValid() || from == to {
		sigolo.Debugf("Use identity transformation from %s to %s", from, to)
		return identityTransformer{}, nil
	}
	if !from.IsValid() {
		return nil, errors.Errorf("Unable to transform into %s: source reference system is undefined", to)
	}

	projection, ok := context.projection(from, to)
	if !ok {
		return nil, errors.Errorf("No projection from %s to %s available", from, to)
	}

	sigolo.Debugf("Use projection from %s to %s", from, to)
	return &projectionTransformer{
		from:       from,
		to:         to,
		projection: projection,
	}, nil
}

// Identity returns a transformer that only copies geometries.
func Identity() Transformer {
	return identityTransformer{}
}

func isFinite(geometry orb.Geometry) bool {
	switch g := geometry.(type) {
	case orb.Point:
		return !math.IsNaN(g[0]) && !math.IsNaN(g[1]) && !math.IsInf(g[0], 0) && !math.IsInf(g[1], 0)
	case orb.MultiPoint:
		for _, p := range g {
			if !isFinite(p) {
				return false
			}
		}
	case orb.LineString:
		return isFinite(orb.MultiPoint(g))
	case orb.Ring:
		return isFinite(orb.MultiPoint(g))
	case orb.MultiLineString:
		for _, ls := range g {
			if !isFinite(ls) {
				return false
			}
		}
	case orb.Polygon:
		for _, r := range g {
			if !isFinite(r) {
				return false
			}
		}
	case orb.MultiPolygon:
		for _, p := range g {
			if !isFinite(p) {
				return false
			}
		}
	case orb.Collection:
		for _, c := range g {
			if !isFinite(c) {
				return false
			}
		}
	case orb.Bound:
		return isFinite(g.Min) && isFinite(g.Max)
	}
	return true
}
