package reagent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// A PreconditionError indicates that a TrainingBatch violated the
// trainer's input contract.
// It is always fatal for the train step that received the batch.
type PreconditionError struct {
	Reason string
}

func (p *PreconditionError) Error() string {
	return "training batch: " + p.Reason
}

// A TrainingBatch is one minibatch of logged ranking episodes.
//
// All fields are packed row-major, one row per episode, and must be
// created with the trainer's creator.
type TrainingBatch struct {
	// States contains the context features, NumEpisodes rows of
	// StateDim components each.
	States   anyvec.Vector
	StateDim int

	// Slates encodes the slate that was actually shown in each
	// episode.
	// The encoding is opaque to the trainer; it is passed through
	// unchanged to the policy's LogProbs method.
	Slates anyvec.Vector

	// SlateRewards contains one observed slate reward per episode.
	// It is required for every training step.
	SlateRewards anyvec.Vector

	// BehaviorProbs contains the probability the behavior policy
	// assigned to each logged slate.
	// It is only required for off-policy training and is ignored
	// otherwise.
	BehaviorProbs anyvec.Vector
}

// NumEpisodes returns the number of episodes in the batch.
func (t *TrainingBatch) NumEpisodes() int {
	if t.States == nil || t.StateDim <= 0 {
		return 0
	}
	return t.States.Len() / t.StateDim
}

// check validates the batch preconditions.
// It runs before either optimizer is stepped, so a failed check has
// no side effects on the trainer.
func (t *TrainingBatch) check(offPolicy bool) error {
	if t.States == nil || t.StateDim <= 0 {
		return &PreconditionError{Reason: "missing state features"}
	}
	if t.States.Len()%t.StateDim != 0 {
		return &PreconditionError{
			Reason: fmt.Sprintf("state features (%d values) are not rows of %d",
				t.States.Len(), t.StateDim),
		}
	}
	n := t.States.Len() / t.StateDim
	if n < 1 {
		return &PreconditionError{Reason: "empty batch"}
	}
	if t.SlateRewards == nil {
		return &PreconditionError{Reason: "missing slate rewards"}
	}
	if t.SlateRewards.Len() != n {
		return &PreconditionError{
			Reason: fmt.Sprintf("have %d slate rewards for %d episodes",
				t.SlateRewards.Len(), n),
		}
	}
	if offPolicy {
		if t.BehaviorProbs == nil {
			return &PreconditionError{Reason: "missing behavior probabilities"}
		}
		if t.BehaviorProbs.Len() != n {
			return &PreconditionError{
				Reason: fmt.Sprintf("have %d behavior probabilities for %d episodes",
					t.BehaviorProbs.Len(), n),
			}
		}
	}
	return nil
}

// An Episode is a single logged ranking decision: the context the
// ranker saw, the slate it produced, and the reward that followed.
type Episode struct {
	// State contains the context features.
	State []float64

	// Slate encodes the slate that was shown, in whatever encoding
	// the policy consumes.
	Slate []float64

	// Reward is the observed or estimated total slate reward.
	Reward float64

	// BehaviorProb is the probability that the logging policy
	// assigned to the slate.
	// It is only needed for off-policy training.
	BehaviorProb float64
}

// PackBatch joins episodes into a TrainingBatch backed by the given
// creator.
//
// All episodes must have the same state and slate dimensions.
func PackBatch(c anyvec.Creator, episodes []*Episode) *TrainingBatch {
	var states, slates, rewards, probs []float64
	for _, ep := range episodes {
		states = append(states, ep.State...)
		slates = append(slates, ep.Slate...)
		rewards = append(rewards, ep.Reward)
		probs = append(probs, ep.BehaviorProb)
	}
	res := &TrainingBatch{
		States:        c.MakeVectorData(c.MakeNumericList(states)),
		SlateRewards:  c.MakeVectorData(c.MakeNumericList(rewards)),
		BehaviorProbs: c.MakeVectorData(c.MakeNumericList(probs)),
	}
	if len(episodes) > 0 {
		res.StateDim = len(episodes[0].State)
	}
	if len(slates) > 0 {
		res.Slates = c.MakeVectorData(c.MakeNumericList(slates))
	}
	return res
}

// Minibatch selects a random fraction of the episodes.
func Minibatch(episodes []*Episode, frac float64) []*Episode {
	count := int(math.Ceil(float64(len(episodes)) * frac))
	if count == 0 {
		count = len(episodes)
	}
	res := make([]*Episode, count)
	for i, j := range rand.Perm(len(episodes))[:count] {
		res[i] = episodes[j]
	}
	return res
}
