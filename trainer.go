package reagent

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
)

// learningRate is the fixed learning rate for both optimizers.
const learningRate = 1e-3

// A Policy computes differentiable log-probabilities of logged
// slates under the current policy.
type Policy interface {
	// LogProbs returns one log-probability per episode for the
	// slates recorded in the batch.
	// The result must depend on the policy's parameters.
	LogProbs(b *TrainingBatch) anydiff.Res

	// Parameters returns the trainable parameters.
	Parameters() []*anydiff.Var
}

// A Baseline predicts the expected slate reward for each episode.
// It is used as a control variate to reduce the variance of the
// policy gradient.
type Baseline interface {
	// Values returns one value estimate per episode.
	Values(b *TrainingBatch) anydiff.Res

	// Parameters returns the trainable parameters.
	Parameters() []*anydiff.Var
}

// Params configures a SlateTrainer.
// All fields are fixed after the trainer is constructed.
type Params struct {
	// OnPolicy indicates that the logged slates were produced by
	// the policy currently being trained.
	// When true, the importance-sampling correction is disabled
	// and BehaviorProbs is ignored.
	OnPolicy bool

	// MinibatchSize is a sizing hint for callers that assemble
	// batches, such as Loop.
	// The trainer itself does not enforce it.
	MinibatchSize int

	// UseAccelerator selects the creator registered with anyvec32,
	// which may be backed by a GPU, for tensors the trainer
	// materializes itself.
	// When false, the 64-bit CPU creator is used.
	//
	// Networks and batches must be built with the same creator;
	// see Creator.
	UseAccelerator bool

	// MinBehaviorProb, if non-zero, is a floor applied to the
	// behavior probabilities before the off-policy importance
	// weights are computed.
	// When zero, near-zero probabilities propagate Inf or NaN
	// weights unchanged.
	MinBehaviorProb float64
}

// A StepResult reports the outcome of one training step.
// All fields are detached from the gradient graph.
type StepResult struct {
	// LogProbs contains the per-episode log-probabilities of the
	// logged slates that entered the step's loss.
	LogProbs anyvec.Vector

	// Advantages contains reward minus predicted baseline,
	// using the baseline values computed during this step.
	Advantages anyvec.Vector

	// RLLoss is the scalar policy-gradient loss.
	RLLoss float64

	// BaselineLoss is the scalar baseline regression loss.
	BaselineLoss float64
}

// A SlateTrainer trains a slate re-ranking policy with REINFORCE and
// a learned value baseline.
//
// Each TrainStep performs two coordinated updates: an MSE regression
// of the baseline toward the observed rewards, then a policy-gradient
// step using the detached baseline as a control variate, with an
// optional importance-sampling correction for off-policy data.
//
// A SlateTrainer is not safe for concurrent use: a step mutates both
// networks' parameters and the optimizers' accumulated state.
type SlateTrainer struct {
	policy   Policy
	baseline Baseline
	params   Params
	creator  anyvec.Creator

	policyOpt   *optimizer
	baselineOpt *optimizer

	stepCount int
	log       zerolog.Logger
}

// NewSlateTrainer creates a trainer for the given networks.
//
// The networks are mutated in place by gradient updates but remain
// owned by the caller.
// Each network gets its own adaptive optimizer, bound only to that
// network's parameters.
func NewSlateTrainer(policy Policy, baseline Baseline, params Params,
	log zerolog.Logger) (*SlateTrainer, error) {
	if policy == nil {
		return nil, errors.New("new slate trainer: missing policy network")
	}
	if baseline == nil {
		return nil, errors.New("new slate trainer: missing baseline network")
	}
	var c anyvec.Creator
	if params.UseAccelerator {
		c = anyvec32.CurrentCreator()
	} else {
		c = anyvec64.DefaultCreator{}
	}
	return &SlateTrainer{
		policy:      policy,
		baseline:    baseline,
		params:      params,
		creator:     c,
		policyOpt:   newOptimizer(policy.Parameters(), learningRate),
		baselineOpt: newOptimizer(baseline.Parameters(), learningRate),
		log:         log,
	}, nil
}

// Creator returns the creator the trainer uses for tensors it
// materializes itself, selected by Params.UseAccelerator.
// Networks and batches must use the same creator.
func (s *SlateTrainer) Creator() anyvec.Creator {
	return s.creator
}

// StepCount returns the number of completed training steps.
func (s *SlateTrainer) StepCount() int {
	return s.stepCount
}

// WarmStartComponents lists the named sub-components whose parameters
// may be restored from a previously saved trainer.
func (s *SlateTrainer) WarmStartComponents() []string {
	return []string{"policy_network", "baseline_network"}
}

// TrainStep performs one two-phase update on the batch.
//
// Phase one regresses the baseline toward the observed rewards.
// Phase two performs a REINFORCE update on the policy, using the
// detached baseline from phase one as a control variate.
// The phases step independent optimizers; a precondition failure
// detected at the top of a phase leaves that phase's optimizer
// untouched and the step counter unchanged.
func (s *SlateTrainer) TrainStep(batch *TrainingBatch) (*StepResult, error) {
	start := time.Now()
	if err := batch.check(!s.params.OnPolicy); err != nil {
		return nil, err
	}
	n := batch.NumEpisodes()
	c := batch.SlateRewards.Creator()
	reward := anydiff.NewConst(batch.SlateRewards)

	// Phase one: regress the baseline toward the rewards.
	b := s.baseline.Values(batch)
	if b.Output().Len() != n {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("baseline produced %d values for %d episodes",
				b.Output().Len(), n),
		}
	}
	diff := anydiff.Sub(b, reward)
	baselineLoss := anydiff.Scale(anydiff.Sum(anydiff.Mul(diff, diff)),
		c.MakeNumeric(1/float64(n)))
	s.baselineOpt.zeroGrad()
	s.baselineOpt.backward(baselineLoss)
	s.baselineOpt.step()

	// Phase two: REINFORCE on the policy.
	// The baseline is detached so no policy-loss gradient can reach
	// the baseline network, and the negative sign turns reward
	// maximization into loss minimization.
	logProbs := s.policy.LogProbs(batch)
	detachedB := anydiff.NewConst(b.Output().Copy())
	if logProbs.Output().Len() != n {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("policy produced %d log-probabilities for %d episodes",
				logProbs.Output().Len(), n),
		}
	}
	if len(logProbs.Vars()) == 0 {
		return nil, &PreconditionError{
			Reason: "policy log-probabilities do not depend on any trainable parameter",
		}
	}
	importance := anydiff.NewConst(s.importanceWeights(logProbs.Output(), batch))
	advantage := anydiff.Sub(reward, detachedB)
	perEpisode := anydiff.Mul(anydiff.Mul(importance, logProbs), advantage)
	rlLoss := anydiff.Scale(anydiff.Sum(perEpisode), c.MakeNumeric(-1/float64(n)))
	s.policyOpt.zeroGrad()
	s.policyOpt.backward(rlLoss)
	s.policyOpt.step()

	rlScalar := vecToFloats(rlLoss.Output())[0]
	baselineScalar := vecToFloats(baselineLoss.Output())[0]
	s.stepCount++
	s.log.Info().
		Int("step", s.stepCount).
		Float64("rl_loss", rlScalar).
		Float64("baseline_loss", baselineScalar).
		Float64("elapsed_seconds", time.Since(start).Seconds()).
		Msg("train step")

	return &StepResult{
		LogProbs:     logProbs.Output().Copy(),
		Advantages:   advantage.Output().Copy(),
		RLLoss:       rlScalar,
		BaselineLoss: baselineScalar,
	}, nil
}

// importanceWeights computes the per-episode importance-sampling
// weights.
// No gradient flows through the weights: the off-policy ratio uses
// the already-detached log-probabilities.
func (s *SlateTrainer) importanceWeights(logProbs anyvec.Vector,
	batch *TrainingBatch) anyvec.Vector {
	if s.params.OnPolicy {
		return anyvec.Ones(s.creator, batch.NumEpisodes())
	}
	weights := logProbs.Copy()
	anyvec.Exp(weights)
	probs := batch.BehaviorProbs
	if s.params.MinBehaviorProb > 0 {
		probs = probs.Copy()
		clampMin(probs, s.params.MinBehaviorProb)
	}
	weights.Div(probs)
	return weights
}
