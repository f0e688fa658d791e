package search

import "github.com/poiesic/docchat/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []*core.ScoredRecord)
	BelowMinScore(match *core.ScoredRecord)
	VerbatimHit(record *core.IndexRecord)
	Finish(results []*core.ScoredRecord)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.ScoredRecord) {}
func (n *noopMonitor) BelowMinScore(_ *core.ScoredRecord)         {}
func (n *noopMonitor) VerbatimHit(_ *core.IndexRecord)            {}
func (n *noopMonitor) Finish(_ []*core.ScoredRecord)              {}
