package query

import (
	"github.com/hauke96/sigolo/v2"
	"snapindex/index"
	"time"
)

// Query is a sequence of probes executed one after another against the same locator.
type Query struct {
	probes []*Probe
}

func NewQuery(probes []*Probe) *Query {
	return &Query{probes: probes}
}

func (q *Query) GetProbes() []*Probe {
	return q.probes
}

// Execute returns one match list per probe in probe order.
func (q *Query) Execute(locator *index.PointLocator) []index.MatchList {
	sigolo.Debugf("Start query with %d probes", len(q.probes))
	queryStartTime := time.Now()

	var result []index.MatchList
	for _, probe := range q.probes {
		result = append(result, probe.Execute(locator))
	}

	sigolo.Debugf("Executed query in %s", time.Since(queryStartTime))
	return result
}
