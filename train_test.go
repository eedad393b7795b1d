package reagent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/anyvec/anyvec64"
)

func loopEpisodes(n int) []*Episode {
	res := make([]*Episode, n)
	for i := range res {
		res[i] = &Episode{
			State:        []float64{float64(i), 1},
			Reward:       1,
			BehaviorProb: 0.5,
		}
	}
	return res
}

func TestLoopRun(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	trainer, _, _ := newStubTrainer(t, c, Params{OnPolicy: true, MinibatchSize: 4},
		math.Log(0.5), 0)

	loop := &Loop{Trainer: trainer, Episodes: loopEpisodes(16)}
	require.NoError(t, loop.Run(nil, 2))
	// 16 episodes in minibatches of 4 is 4 steps per epoch.
	assert.Equal(t, 8, trainer.StepCount())
}

func TestLoopStops(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	trainer, _, _ := newStubTrainer(t, c, Params{OnPolicy: true}, math.Log(0.5), 0)

	stop := make(chan struct{})
	close(stop)
	loop := &Loop{Trainer: trainer, Episodes: loopEpisodes(4)}
	require.NoError(t, loop.Run(stop, 100))
	assert.Equal(t, 0, trainer.StepCount())
}

func TestLoopPropagatesStepError(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	trainer, _, _ := newStubTrainer(t, c, Params{}, math.Log(0.5), 0)
	episodes := loopEpisodes(4)
	for _, ep := range episodes {
		// Featureless episodes fail the batch check on the first
		// step and the loop surfaces the error.
		ep.State = nil
	}
	loop := &Loop{Trainer: trainer, Episodes: episodes}
	err := loop.Run(nil, 1)
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
}
