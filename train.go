package reagent

import "math"

// A Loop drives a SlateTrainer over a dataset of logged episodes,
// one TrainStep per random minibatch.
type Loop struct {
	Trainer  *SlateTrainer
	Episodes []*Episode

	// BatchFrac is the fraction of the dataset per minibatch.
	// If 0, the trainer's MinibatchSize hint is used, and if that
	// is unset the whole dataset is one batch.
	BatchFrac float64
}

// Run performs the given number of epochs.
//
// It returns early with the step's error if a TrainStep fails, or
// with nil when the stop channel is closed.
func (l *Loop) Run(stop <-chan struct{}, epochs int) error {
	frac := l.batchFrac()
	stepsPerEpoch := int(math.Ceil(1 / frac))
	for epoch := 0; epoch < epochs; epoch++ {
		for i := 0; i < stepsPerEpoch; i++ {
			select {
			case <-stop:
				return nil
			default:
			}
			batch := PackBatch(l.Trainer.Creator(), Minibatch(l.Episodes, frac))
			if _, err := l.Trainer.TrainStep(batch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loop) batchFrac() float64 {
	if l.BatchFrac != 0 {
		return l.BatchFrac
	}
	hint := l.Trainer.params.MinibatchSize
	if hint <= 0 || hint >= len(l.Episodes) {
		return 1
	}
	return float64(hint) / float64(len(l.Episodes))
}
