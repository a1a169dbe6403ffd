package rdf

import "sync"

// Triple is a single subject/predicate/object statement.
type Triple struct {
	S Term
	P IRI
	O Term
}

// Sink receives triples. Implementations must tolerate duplicates.
type Sink interface {
	Add(s Term, p IRI, o Term)
}

// Graph is an insertion-ordered set of triples. Adding a triple that is
// already present is a no-op. It is safe for concurrent use.
type Graph struct {
	mu      sync.Mutex
	triples []Triple
	index   map[Triple]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[Triple]struct{})}
}

// Add inserts the triple unless it is already present.
func (g *Graph) Add(s Term, p IRI, o Term) {
	t := Triple{S: s, P: p, O: o}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index == nil {
		g.index = make(map[Triple]struct{})
	}
	if _, ok := g.index[t]; ok {
		return
	}
	g.index[t] = struct{}{}
	g.triples = append(g.triples, t)
}

// Contains reports whether the triple is present.
func (g *Graph) Contains(s Term, p IRI, o Term) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.index[Triple{S: s, P: p, O: o}]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.triples)
}

// Triples returns a copy of the triples in insertion order.
func (g *Graph) Triples() []Triple {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples whose subject and predicate match. A nil subject
// or empty predicate matches anything.
func (g *Graph) Match(s Term, p IRI) []Triple {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Triple
	for _, t := range g.triples {
		if s != nil && t.S != s {
			continue
		}
		if p != "" && t.P != p {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Merge adds every triple of other into g.
func (g *Graph) Merge(other *Graph) {
	for _, t := range other.Triples() {
		g.Add(t.S, t.P, t.O)
	}
}

type tee []Sink

func (t tee) Add(s Term, p IRI, o Term) {
	for _, sink := range t {
		sink.Add(s, p, o)
	}
}

// Tee returns a sink that adds every triple to each of sinks, in order.
// Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
