package index

import (
	"fmt"
	"github.com/paulmach/orb"
	"snapindex/feature"
)

// MatchType is the kind of a match. The values are bit flags so that they can be combined to request several kinds.
type MatchType int

const (
	Invalid MatchType = 0
	Vertex  MatchType = 1 // A vertex of the geometry or an intersection of two of its segments.
	Edge    MatchType = 2
	Area    MatchType = 4
	All               = Vertex | Edge | Area
)

func (t MatchType) String() string {
	switch t {
	case Invalid:
		return "invalid"
	case Vertex:
		return "vertex"
	case Edge:
		return "edge"
	case Area:
		return "area"
	case All:
		return "all"
	}
	return fmt.Sprintf("[!UNKNOWN MatchType %d]", int(t))
}

// Match is the result of a query. The zero value is the invalid match meaning "nothing found". A match never refers
// to memory of the index, all coordinates are copies.
type Match struct {
	matchType   MatchType
	distance    float64
	point       orb.Point
	featureID   feature.ID
	vertexIndex int
	edgePoints  [2]orb.Point
}

// MatchList contains matches in discovery order.
type MatchList []Match

func NewVertexMatch(featureID feature.ID, distance float64, point orb.Point, vertexIndex int) Match {
	return Match{
		matchType:   Vertex,
		distance:    distance,
		point:       point,
		featureID:   featureID,
		vertexIndex: vertexIndex,
	}
}

func NewEdgeMatch(featureID feature.ID, distance float64, point orb.Point, vertexIndex int, edgeStart orb.Point, edgeEnd orb.Point) Match {
	return Match{
		matchType:   Edge,
		distance:    distance,
		point:       point,
		featureID:   featureID,
		vertexIndex: vertexIndex,
		edgePoints:  [2]orb.Point{edgeStart, edgeEnd},
	}
}

func NewAreaMatch(featureID feature.ID, point orb.Point) Match {
	return Match{
		matchType: Area,
		point:     point,
		featureID: featureID,
	}
}

func (m Match) Type() MatchType { return m.matchType }

func (m Match) IsValid() bool { return m.matchType != Invalid }

func (m Match) HasVertex() bool { return m.matchType == Vertex }

func (m Match) HasEdge() bool { return m.matchType == Edge }

func (m Match) HasArea() bool { return m.matchType == Area }

// Distance is 0 for area matches and the distance to the query point for vertex and edge matches.
func (m Match) Distance() float64 {
	if !m.IsValid() {
		return 0
	}
	return m.distance
}

func (m Match) Point() orb.Point {
	if !m.IsValid() {
		return orb.Point{}
	}
	return m.point
}

func (m Match) FeatureID() feature.ID {
	if !m.IsValid() {
		return 0
	}
	return m.featureID
}

// VertexIndex is the index of the matched vertex or of the first vertex of the matched edge.
func (m Match) VertexIndex() int {
	if !m.IsValid() {
		return 0
	}
	return m.vertexIndex
}

// EdgePoints returns the start and end of the matched edge. Only edge matches carry edge points.
func (m Match) EdgePoints() (orb.Point, orb.Point) {
	if !m.HasEdge() {
		return orb.Point{}, orb.Point{}
	}
	return m.edgePoints[0], m.edgePoints[1]
}

func (m Match) Equal(other Match) bool {
	return m == other
}

func (m Match) String() string {
	switch m.matchType {
	case Invalid:
		return "Match{invalid}"
	case Edge:
		return fmt.Sprintf("Match{type=%s, feature=%d, distance=%f, point=%v, vertex=%d, edge=%v-%v}", m.matchType, m.featureID, m.distance, m.point, m.vertexIndex, m.edgePoints[0], m.edgePoints[1])
	}
	return fmt.Sprintf("Match{type=%s, feature=%d, distance=%f, point=%v, vertex=%d}", m.matchType, m.featureID, m.distance, m.point, m.vertexIndex)
}

// isBetterThan decides whether a candidate with the given properties replaces the current best match. Ties are
// broken by the lower feature ID and then by the lower vertex index, so the result doesn't depend on tree layout.
func isBetterThan(best Match, distance float64, featureID feature.ID, vertexIndex int) bool {
	if !best.IsValid() || distance < best.distance {
		return true
	}
	if distance > best.distance {
		return false
	}
	if featureID != best.featureID {
		return featureID < best.featureID
	}
	return vertexIndex < best.vertexIndex
}
