package experiments

import (
	"math/rand"

	reagent "github.com/Ruxuan/ReAgent"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// A SyntheticRanking generates logged slate episodes for a toy
// ranking task: the best slate for a context is the index of the
// largest of its first NumSlates features.
//
// The logging policy picks slates uniformly at random, so every
// episode has a behavior probability of 1/NumSlates and the data can
// be used for both on-policy and off-policy training.
type SyntheticRanking struct {
	// StateDim is the number of context features.
	// It must be at least NumSlates.
	StateDim int

	// NumSlates is the number of candidate slates.
	NumSlates int

	// Noise is the standard deviation of Gaussian noise added to
	// the rewards.
	Noise float64

	Rand *rand.Rand
}

// Episodes generates n logged episodes.
func (s *SyntheticRanking) Episodes(n int) []*reagent.Episode {
	res := make([]*reagent.Episode, n)
	for i := range res {
		state := make([]float64, s.StateDim)
		for j := range state {
			state[j] = s.Rand.NormFloat64()
		}
		shown := s.Rand.Intn(s.NumSlates)
		slate := make([]float64, s.NumSlates)
		slate[shown] = 1
		reward := s.Noise * s.Rand.NormFloat64()
		if shown == s.bestSlate(state) {
			reward++
		}
		res[i] = &reagent.Episode{
			State:        state,
			Slate:        slate,
			Reward:       reward,
			BehaviorProb: 1 / float64(s.NumSlates),
		}
	}
	return res
}

// MeanReward estimates the noise-free reward of the policy's greedy
// slate choice over n fresh contexts.
func (s *SyntheticRanking) MeanReward(c anyvec.Creator, p *reagent.SoftmaxPolicy,
	n int) float64 {
	var states []float64
	best := make([]int, n)
	for i := 0; i < n; i++ {
		state := make([]float64, s.StateDim)
		for j := range state {
			state[j] = s.Rand.NormFloat64()
		}
		best[i] = s.bestSlate(state)
		states = append(states, state...)
	}
	in := anydiff.NewConst(c.MakeVectorData(c.MakeNumericList(states)))
	scores := p.Net.Apply(in, n).Output()

	var hits int
	for i := 0; i < n; i++ {
		row := scores.Slice(i*s.NumSlates, (i+1)*s.NumSlates)
		if anyvec.MaxIndex(row) == best[i] {
			hits++
		}
	}
	return float64(hits) / float64(n)
}

func (s *SyntheticRanking) bestSlate(state []float64) int {
	best := 0
	for i := 1; i < s.NumSlates; i++ {
		if state[i] > state[best] {
			best = i
		}
	}
	return best
}
