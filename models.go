package reagent

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
)

// A SoftmaxPolicy is a reference Policy implementation.
//
// It scores a fixed set of candidate slates with a feedforward
// network and treats slate selection as a categorical choice.
// Batches must encode each logged slate as a one-hot vector of
// NumSlates components.
type SoftmaxPolicy struct {
	Net       anynet.Net
	NumSlates int
}

// NewSoftmaxPolicy creates a policy with one hidden layer.
func NewSoftmaxPolicy(c anyvec.Creator, stateDim, hidden, numSlates int) *SoftmaxPolicy {
	return &SoftmaxPolicy{
		Net: anynet.Net{
			anynet.NewFC(c, stateDim, hidden),
			anynet.Tanh,
			anynet.NewFC(c, hidden, numSlates),
		},
		NumSlates: numSlates,
	}
}

// LogProbs returns the log-probability of each logged slate under
// the softmax distribution over the network's slate scores.
func (s *SoftmaxPolicy) LogProbs(b *TrainingBatch) anydiff.Res {
	n := b.NumEpisodes()
	scores := s.Net.Apply(anydiff.NewConst(b.States), n)
	return anyrl.Softmax{}.LogProb(scores, b.Slates, n)
}

// Parameters returns the network's trainable parameters.
func (s *SoftmaxPolicy) Parameters() []*anydiff.Var {
	return s.Net.Parameters()
}

// An FFBaseline is a reference Baseline implementation: a
// feedforward network with a single scalar output per episode.
type FFBaseline struct {
	Net anynet.Net
}

// NewFFBaseline creates a baseline with one hidden layer.
func NewFFBaseline(c anyvec.Creator, stateDim, hidden int) *FFBaseline {
	return &FFBaseline{
		Net: anynet.Net{
			anynet.NewFC(c, stateDim, hidden),
			anynet.Tanh,
			anynet.NewFC(c, hidden, 1),
		},
	}
}

// Values returns the predicted expected reward for each episode.
func (f *FFBaseline) Values(b *TrainingBatch) anydiff.Res {
	return f.Net.Apply(anydiff.NewConst(b.States), b.NumEpisodes())
}

// Parameters returns the network's trainable parameters.
func (f *FFBaseline) Parameters() []*anydiff.Var {
	return f.Net.Parameters()
}
