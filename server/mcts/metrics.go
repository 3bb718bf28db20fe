package mcts

import "math"

// NoData is the win percentage of a node that has never been played.
const NoData = -1.0

// Metrics are the statistics of one action history.
//
// Played is weighted by the stake: a doubled result adds 2, so a double-down
// line earns confidence twice as fast as a single-unit one.
type Metrics struct {
	Played int `json:"played"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
}

// Update records the outcome of one finished rollout.
func (m *Metrics) Update(outcome int) {
	w := outcome
	if w < 0 {
		w = -w
	}
	if w < 1 {
		w = 1
	}
	m.Played += w
	switch {
	case outcome > 0:
		m.Wins += outcome
	case outcome == 0:
		m.Draws++
	}
}

// WinPercentage counts a draw as half a win. Never-played nodes return NoData.
func (m Metrics) WinPercentage() float64 {
	if m.Played <= 0 {
		return NoData
	}
	return (float64(m.Wins) + float64(m.Draws)/2) / float64(m.Played)
}

// ExploreTerm is c * sqrt(ln(parent.Played) / m.Played).
func (m Metrics) ExploreTerm(parent Metrics, c float64) float64 {
	if m.Played <= 0 || parent.Played <= 0 {
		return 0
	}
	return c * math.Sqrt(math.Log(float64(parent.Played))/float64(m.Played))
}

// UpperConfidenceBound is the UCB1 priority of m under parent. A node that was
// never played gets unvisited, which must exceed any reachable bound so every
// action is tried once before statistics take over.
func (m Metrics) UpperConfidenceBound(parent Metrics, c, unvisited float64) float64 {
	if m.Played <= 0 {
		return unvisited
	}
	return m.WinPercentage() + m.ExploreTerm(parent, c)
}

// Interval is the 95% Wilson score interval of the win percentage.
func (m Metrics) Interval() (low, high float64) {
	return WilsonCI95(m.Wins, m.Draws, m.Played)
}
