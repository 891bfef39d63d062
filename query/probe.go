package query

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"snapindex/index"
)

type ProbeKind int

const (
	ProbeKindUnknown ProbeKind = iota
	ProbeKindVertex
	ProbeKindEdge
	ProbeKindArea
	ProbeKindRect
	ProbeKindPointInPolygon
)

func (k ProbeKind) String() string {
	switch k {
	case ProbeKindUnknown:
		return "unknown"
	case ProbeKindVertex:
		return "vertex"
	case ProbeKindEdge:
		return "edge"
	case ProbeKindArea:
		return "area"
	case ProbeKindRect:
		return "rect"
	case ProbeKindPointInPolygon:
		return "pip"
	}
	return fmt.Sprintf("[!UNKNOWN ProbeKind %d]", int(k))
}

// Probe is a single query against a point locator together with the filters applied to its candidates.
type Probe struct {
	kind      ProbeKind
	point     orb.Point
	tolerance float64
	rect      *orb.Bound // Only set for rectangle probes given by their corners.
	filter    *LogicalFilter
}

// NewPointProbe creates a vertex, edge, area or point-in-polygon probe around the given point.
func NewPointProbe(kind ProbeKind, point orb.Point, tolerance float64, filters ...Filter) *Probe {
	return &Probe{
		kind:      kind,
		point:     point,
		tolerance: tolerance,
		filter:    NewLogicalFilter(filters...),
	}
}

// NewRectProbe creates a probe for all edges intersecting the rectangle.
func NewRectProbe(rect orb.Bound, filters ...Filter) *Probe {
	return &Probe{
		kind:   ProbeKindRect,
		point:  rect.Center(),
		rect:   &rect,
		filter: NewLogicalFilter(filters...),
	}
}

func (p *Probe) AddFilter(filter Filter) {
	p.filter.filters = append(p.filter.filters, filter)
}

func (p *Probe) GetKind() ProbeKind {
	return p.kind
}

func (p *Probe) GetPoint() orb.Point {
	return p.point
}

func (p *Probe) GetTolerance() float64 {
	return p.tolerance
}

// GetRect returns the searched rectangle of rectangle probes and nil for all other probes.
func (p *Probe) GetRect() *orb.Bound {
	if p.kind != ProbeKindRect {
		return nil
	}
	if p.rect != nil {
		rect := *p.rect
		return &rect
	}
	return &orb.Bound{
		Min: orb.Point{p.point[0] - p.tolerance, p.point[1] - p.tolerance},
		Max: orb.Point{p.point[0] + p.tolerance, p.point[1] + p.tolerance},
	}
}

func (p *Probe) GetFilters() []Filter {
	return p.filter.filters
}

// matchFilter returns nil without filters so that the locator skips filter calls entirely.
func (p *Probe) matchFilter() index.MatchFilter {
	if len(p.filter.filters) == 0 {
		return nil
	}
	return p.filter
}

// Execute runs the probe. Single-match probes return an empty list when nothing has been found.
func (p *Probe) Execute(locator *index.PointLocator) index.MatchList {
	p.Print(0)

	switch p.kind {
	case ProbeKindVertex:
		return singleMatch(locator.NearestVertex(p.point, p.tolerance, p.matchFilter()))
	case ProbeKindEdge:
		return singleMatch(locator.NearestEdge(p.point, p.tolerance, p.matchFilter()))
	case ProbeKindArea:
		return singleMatch(locator.NearestArea(p.point, p.tolerance, p.matchFilter()))
	case ProbeKindRect:
		if p.rect != nil {
			return locator.EdgesInRect(*p.rect, p.matchFilter())
		}
		return locator.EdgesInRectAround(p.point, p.tolerance, p.matchFilter())
	case ProbeKindPointInPolygon:
		result := index.MatchList{}
		for _, match := range locator.PointInPolygon(p.point) {
			if p.filter.AcceptMatch(match) {
				result = append(result, match)
			}
		}
		return result
	}

	sigolo.Errorf("Unable to execute probe of kind %s", p.kind)
	return index.MatchList{}
}

func (p *Probe) Print(indent int) {
	if p.rect != nil {
		sigolo.Debugf("%sProbe %s %v", spacing(indent), p.kind, *p.rect)
	} else {
		sigolo.Debugf("%sProbe %s at %v (tolerance %f)", spacing(indent), p.kind, p.point, p.tolerance)
	}
	if len(p.filter.filters) > 0 {
		p.filter.Print(indent + 2)
	}
}

func singleMatch(match index.Match) index.MatchList {
	if !match.IsValid() {
		return index.MatchList{}
	}
	return index.MatchList{match}
}
