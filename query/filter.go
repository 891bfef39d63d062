package query

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"snapindex/feature"
	"snapindex/index"
	"snapindex/util"
	"strings"
)

// Filter is a match filter that can describe itself in debug output.
type Filter interface {
	index.MatchFilter
	Print(indent int)
}

// FeatureExclusionFilter rejects all matches on the given features, e.g. the feature currently being edited.
type FeatureExclusionFilter struct {
	ids []feature.ID
}

func NewFeatureExclusionFilter(ids ...feature.ID) *FeatureExclusionFilter {
	return &FeatureExclusionFilter{ids: ids}
}

func (f FeatureExclusionFilter) AcceptMatch(match index.Match) bool {
	accepted := !util.Contains(f.ids, match.FeatureID())
	sigolo.Tracef("FeatureExclusionFilter: feature %d accepted=%t", match.FeatureID(), accepted)
	return accepted
}

func (f FeatureExclusionFilter) Print(indent int) {
	sigolo.Debugf("%sexclude features %v", spacing(indent), f.ids)
}

func (f FeatureExclusionFilter) GetIDs() []feature.ID {
	return f.ids
}

// PointExclusionFilter rejects matches located exactly at the given point, e.g. the vertex being dragged.
type PointExclusionFilter struct {
	point orb.Point
}

func NewPointExclusionFilter(point orb.Point) *PointExclusionFilter {
	return &PointExclusionFilter{point: point}
}

func (f PointExclusionFilter) AcceptMatch(match index.Match) bool {
	accepted := match.Point() != f.point
	sigolo.Tracef("PointExclusionFilter: point %v accepted=%t", match.Point(), accepted)
	return accepted
}

func (f PointExclusionFilter) Print(indent int) {
	sigolo.Debugf("%snot at %v", spacing(indent), f.point)
}

func (f PointExclusionFilter) GetPoint() orb.Point {
	return f.point
}

// LogicalFilter accepts a match only when all of its filters accept it. Evaluation stops at the first rejection.
type LogicalFilter struct {
	filters []Filter
}

func NewLogicalFilter(filters ...Filter) *LogicalFilter {
	return &LogicalFilter{filters: filters}
}

func (f LogicalFilter) AcceptMatch(match index.Match) bool {
	for _, filter := range f.filters {
		if !filter.AcceptMatch(match) {
			return false
		}
	}
	return true
}

func (f LogicalFilter) Print(indent int) {
	sigolo.Debugf("%sall of:", spacing(indent))
	for _, filter := range f.filters {
		filter.Print(indent + 2)
	}
}

func spacing(indent int) string {
	return strings.Repeat(" ", indent)
}
