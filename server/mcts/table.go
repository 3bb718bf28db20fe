package mcts

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"blackjack-advisor/server/engine"
)

var ErrNoData = errors.New("no simulation data")

type node struct {
	mu sync.Mutex
	m  Metrics
}

// Table maps action histories to their Metrics. Nodes are created on first
// access and never replaced, so concurrent rollouts can share one table.
// A table lives for a single recommendation.
type Table struct {
	mu    sync.RWMutex
	nodes map[engine.History]*node
}

func NewTable() *Table {
	return &Table{nodes: make(map[engine.History]*node)}
}

func (t *Table) node(h engine.History) *node {
	t.mu.RLock()
	n, ok := t.nodes[h]
	t.mu.RUnlock()
	if ok {
		return n
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.nodes[h]; ok {
		return n
	}
	n = &node{}
	t.nodes[h] = n
	return n
}

// Ensure creates the node for h if it does not exist yet.
func (t *Table) Ensure(h engine.History) { t.node(h) }

// Metrics returns a copy of the node for h, creating it if needed.
func (t *Table) Metrics(h engine.History) Metrics {
	n := t.node(h)
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.m
}

// Get returns a copy of the node for h without creating it.
func (t *Table) Get(h engine.History) (Metrics, bool) {
	t.mu.RLock()
	n, ok := t.nodes[h]
	t.mu.RUnlock()
	if !ok {
		return Metrics{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.m, true
}

func (t *Table) Update(h engine.History, outcome int) {
	n := t.node(h)
	n.mu.Lock()
	n.m.Update(outcome)
	n.mu.Unlock()
}

// WinPercentage fails with ErrNoData when h was never played.
func (t *Table) WinPercentage(h engine.History) (float64, error) {
	m, _ := t.Get(h)
	if m.Played <= 0 {
		return NoData, fmt.Errorf("%w for %q", ErrNoData, h)
	}
	return m.WinPercentage(), nil
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Histories lists every known node, shortest first.
func (t *Table) Histories() []engine.History {
	t.mu.RLock()
	out := make([]engine.History, 0, len(t.nodes))
	for h := range t.nodes {
		out = append(out, h)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Snapshot copies every node.
func (t *Table) Snapshot() map[engine.History]Metrics {
	out := make(map[engine.History]Metrics, t.Len())
	for _, h := range t.Histories() {
		m, _ := t.Get(h)
		out[h] = m
	}
	return out
}
