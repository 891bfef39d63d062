package index

// MatchFilter lets callers reject candidate matches during a query, e.g. matches on the feature currently being
// edited. A rejected candidate is skipped and the query goes on with the next one.
type MatchFilter interface {
	AcceptMatch(match Match) bool
}

// MatchFilterFunc adapts a function to the MatchFilter interface.
type MatchFilterFunc func(match Match) bool

func (f MatchFilterFunc) AcceptMatch(match Match) bool {
	return f(match)
}

func accepts(filter MatchFilter, match Match) bool {
	return filter == nil || filter.AcceptMatch(match)
}
