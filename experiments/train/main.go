package main

import (
	"flag"
	"math/rand"
	"os"

	reagent "github.com/Ruxuan/ReAgent"
	"github.com/Ruxuan/ReAgent/experiments"
	"github.com/rs/zerolog"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/rip"
)

type Flags struct {
	Episodes  int
	Epochs    int
	Batch     int
	Hidden    int
	StateDim  int
	NumSlates int
	Noise     float64
	OnPolicy  bool
	GPU       bool
	Seed      int64
	SaveFile  string
}

func main() {
	flags := &Flags{}
	flag.IntVar(&flags.Episodes, "episodes", 20000, "logged episodes to generate")
	flag.IntVar(&flags.Epochs, "epochs", 50, "passes over the logged data")
	flag.IntVar(&flags.Batch, "batch", 256, "episodes per training step")
	flag.IntVar(&flags.Hidden, "hidden", 64, "hidden layer size")
	flag.IntVar(&flags.StateDim, "statedim", 16, "context feature count")
	flag.IntVar(&flags.NumSlates, "slates", 8, "candidate slate count")
	flag.Float64Var(&flags.Noise, "noise", 0.1, "reward noise stddev")
	flag.BoolVar(&flags.OnPolicy, "onpolicy", false,
		"skip the importance-sampling correction")
	flag.BoolVar(&flags.GPU, "gpu", false, "use the registered anyvec32 creator")
	flag.Int64Var(&flags.Seed, "seed", 1337, "random seed")
	flag.StringVar(&flags.SaveFile, "out", "policy.bin", "file for the saved policy")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	var creator anyvec.Creator
	if flags.GPU {
		creator = anyvec32.CurrentCreator()
	} else {
		creator = anyvec64.DefaultCreator{}
	}

	logger.Info().Int("episodes", flags.Episodes).Msg("generating logged episodes")
	task := &experiments.SyntheticRanking{
		StateDim:  flags.StateDim,
		NumSlates: flags.NumSlates,
		Noise:     flags.Noise,
		Rand:      rand.New(rand.NewSource(flags.Seed)),
	}
	episodes := task.Episodes(flags.Episodes)

	policy := reagent.NewSoftmaxPolicy(creator, flags.StateDim, flags.Hidden,
		flags.NumSlates)
	baseline := reagent.NewFFBaseline(creator, flags.StateDim, flags.Hidden)
	trainer, err := reagent.NewSlateTrainer(policy, baseline, reagent.Params{
		OnPolicy:       flags.OnPolicy,
		MinibatchSize:  flags.Batch,
		UseAccelerator: flags.GPU,
	}, logger)
	must(logger, err)

	logger.Info().Float64("mean_reward", task.MeanReward(creator, policy, 2000)).
		Msg("before training")

	loop := &reagent.Loop{Trainer: trainer, Episodes: episodes}
	logger.Info().Msg("training, press Ctrl+C to stop")
	must(logger, loop.Run(rip.NewRIP().Chan(), flags.Epochs))

	logger.Info().Float64("mean_reward", task.MeanReward(creator, policy, 2000)).
		Int("steps", trainer.StepCount()).
		Msg("after training")

	must(logger, policy.Save(flags.SaveFile))
	logger.Info().Str("path", flags.SaveFile).Msg("saved policy")
}

func must(logger zerolog.Logger, err error) {
	if err != nil {
		logger.Fatal().Err(err).Msg("fatal error")
	}
}
