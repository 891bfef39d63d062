package index

import (
	"github.com/paulmach/orb"
	"snapindex/util"
	"testing"
)

func TestMatch_invalid(t *testing.T) {
	// Arrange
	match := Match{}

	// Act & Assert
	util.AssertFalse(t, match.IsValid())
	util.AssertFalse(t, match.HasVertex())
	util.AssertFalse(t, match.HasEdge())
	util.AssertFalse(t, match.HasArea())
	util.AssertEqual(t, Invalid, match.Type())
	util.AssertEqual(t, 0.0, match.Distance())
	util.AssertEqual(t, orb.Point{}, match.Point())
	util.AssertEqual(t, 0, match.VertexIndex())
	util.AssertEqual(t, "Match{invalid}", match.String())
}

func TestMatch_edgePoints(t *testing.T) {
	// Arrange
	edgeMatch := NewEdgeMatch(3, 1, orb.Point{5, 0}, 2, orb.Point{0, 0}, orb.Point{10, 0})
	vertexMatch := NewVertexMatch(3, 1, orb.Point{0, 0}, 2)

	// Act
	edgeStart, edgeEnd := edgeMatch.EdgePoints()
	vertexStart, vertexEnd := vertexMatch.EdgePoints()

	// Assert
	util.AssertEqual(t, orb.Point{0, 0}, edgeStart)
	util.AssertEqual(t, orb.Point{10, 0}, edgeEnd)
	util.AssertEqual(t, orb.Point{}, vertexStart)
	util.AssertEqual(t, orb.Point{}, vertexEnd)
}

func TestMatch_equal(t *testing.T) {
	// Arrange
	match := NewAreaMatch(1, orb.Point{5, 5})

	// Act & Assert
	util.AssertTrue(t, match.Equal(NewAreaMatch(1, orb.Point{5, 5})))
	util.AssertFalse(t, match.Equal(NewAreaMatch(2, orb.Point{5, 5})))
	util.AssertFalse(t, match.Equal(NewVertexMatch(1, 0, orb.Point{5, 5}, 0)))
}

func TestMatchType_flags(t *testing.T) {
	util.AssertEqual(t, MatchType(7), All)
	util.AssertEqual(t, "all", All.String())
	util.AssertEqual(t, "edge", Edge.String())
	util.AssertTrue(t, All&Area != 0)
	util.AssertEqual(t, "[!UNKNOWN MatchType 3]", (Vertex | Edge).String())
}

func TestIsBetterThan(t *testing.T) {
	// Arrange
	best := NewVertexMatch(2, 1, orb.Point{0, 0}, 3)

	// Act & Assert
	util.AssertTrue(t, isBetterThan(Match{}, 100, 9, 9))
	util.AssertTrue(t, isBetterThan(best, 0.5, 9, 9))
	util.AssertFalse(t, isBetterThan(best, 2, 1, 0))
	util.AssertTrue(t, isBetterThan(best, 1, 1, 9))
	util.AssertFalse(t, isBetterThan(best, 1, 3, 0))
	util.AssertTrue(t, isBetterThan(best, 1, 2, 2))
	util.AssertFalse(t, isBetterThan(best, 1, 2, 3))
}
