package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/nn"
	"github.com/born-ml/tapegrad/internal/optim"
	"github.com/born-ml/tapegrad/internal/runlog"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// features is the shape of the fitted weight vector.
type features struct{}

func (features) Shape() tensor.Shape { return tensor.Shape{8} }

// targetWeights are the coefficients the model should recover.
var targetWeights = []float32{1.5, -2, 0.5, 3, -0.75, 1, 0.25, -1.25}

// weightName is the checkpoint entry holding the fitted weights.
const weightName = "w"

// linearModel predicts w*x element-wise.
type linearModel struct {
	w *nn.Parameter[features]
}

func newLinearModel() *linearModel {
	return &linearModel{w: nn.NewParameter(weightName, tensor.Zeros[features]())}
}

func (m *linearModel) Parameters() []nn.Param {
	return []nn.Param{m.w}
}

func (m *linearModel) Forward(x *tensor.Tensor[features], tape *autodiff.GradientTape) *tensor.Tensor[features] {
	return ops.Mul(m.w.Tensor, x, tape)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a weight vector to a synthetic linear target",
	Long: `Fit w so that w*x matches targetWeights*x for random x, minimizing
mean((w*x - y)^2) with gradients from the tape. Each step's loss is logged
and, when --db is set, recorded in the run log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := trainOptions{
			LR:         float32(cfg.GetFloat64(cfgKeyLR)),
			Steps:      cfg.GetInt(cfgKeySteps),
			Seed:       cfg.GetInt64(cfgKeySeed),
			Optimizer:  cfg.GetString(cfgKeyOptimizer),
			Momentum:   float32(cfg.GetFloat64(cfgKeyMomentum)),
			Checkpoint: cfg.GetString(cfgKeyCheckpoint),
			Resume:     cfg.GetString(cfgKeyResume),
			LogEvery:   cfg.GetInt(cfgKeyLogEvery),
		}

		store, err := openRunLog()
		if err != nil {
			return err
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		res, err := runTraining(cmd.Context(), opts, logger, store)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.RunID != "" {
			fmt.Fprintf(out, "run:   %s\n", res.RunID)
		}
		fmt.Fprintf(out, "steps: %d\nloss:  %.6g\nw:     %v\n", res.Step, res.Loss, res.Weights)
		return nil
	},
}

func init() {
	f := trainCmd.Flags()
	f.Float32(cfgKeyLR, 0.2, "learning rate")
	f.Int(cfgKeySteps, 300, "number of optimization steps")
	f.Int64(cfgKeySeed, 1, "random seed for the training data")
	f.String(cfgKeyOptimizer, "sgd", "optimizer: sgd or adam")
	f.Float32(cfgKeyMomentum, 0, "SGD momentum")
	f.String(cfgKeyCheckpoint, "", "write a checkpoint to this path when done")
	f.String(cfgKeyResume, "", "resume weights and optimizer state from this checkpoint")
	f.Int(cfgKeyLogEvery, 50, "log at info level every N steps")
}

// trainOptions configures runTraining.
type trainOptions struct {
	LR         float32
	Steps      int
	Seed       int64
	Optimizer  string
	Momentum   float32
	Checkpoint string
	Resume     string
	LogEvery   int
}

// trainResult summarizes a finished training run.
type trainResult struct {
	RunID   string
	Step    int64 // Global step count, including resumed steps
	Loss    float64
	Weights []float32
}

// runTraining fits the weights for opts.Steps steps. store may be nil.
func runTraining(ctx context.Context, opts trainOptions, logger *slog.Logger, store *runlog.Store) (trainResult, error) {
	if opts.Steps < 0 {
		return trainResult{}, fmt.Errorf("steps must be non-negative, got %d", opts.Steps)
	}

	opt, err := newOptimizer(opts)
	if err != nil {
		return trainResult{}, err
	}

	model := newLinearModel()
	var step int64
	if opts.Resume != "" {
		ckpt, err := nn.LoadCheckpoint(opts.Resume, model, opt)
		if err != nil {
			return trainResult{}, err
		}
		step = ckpt.Step
		logger.Info("resumed", "path", opts.Resume, "step", step)
	}

	var runID string
	if store != nil {
		runID, err = store.StartRun(ctx, "train", map[string]any{
			"lr":        opts.LR,
			"steps":     opts.Steps,
			"seed":      opts.Seed,
			"optimizer": opts.Optimizer,
			"momentum":  opts.Momentum,
			"resume":    opts.Resume,
		})
		if err != nil {
			return trainResult{}, err
		}
		logger.Info("run started", "run", runID)
	}

	target, err := tensor.FromSlice[features](targetWeights)
	if err != nil {
		return trainResult{}, err
	}

	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // G404: training data, not security
	tape := autodiff.NewGradientTape(autodiff.WithLogger(logger), autodiff.WithCapacity(8, 8))

	var loss float64
	for i := range opts.Steps {
		if err := ctx.Err(); err != nil {
			return trainResult{}, err
		}

		tape.Reset()
		x := tensor.Randn[features](rng)
		y := tensor.New[features]()
		for j := range y.MutData() {
			y.MutData()[j] = target.Data()[j] * x.Data()[j]
		}

		l := nn.MSELoss(model.Forward(x, tape), y, tape)
		autodiff.Backward(l, tape)
		opt.Step(tape, nn.Trainables(model.Parameters())...)

		step++
		loss = float64(l.Item())
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return trainResult{}, fmt.Errorf("training diverged at step %d (loss %v)", step, loss)
		}

		if store != nil {
			if err := store.RecordStep(ctx, runID, step, loss); err != nil {
				return trainResult{}, err
			}
		}
		if (opts.LogEvery > 0 && (i+1)%opts.LogEvery == 0) || i == opts.Steps-1 {
			logger.Info("step", "step", step, "loss", loss)
		} else {
			logger.Debug("step", "step", step, "loss", loss)
		}
	}

	if opts.Checkpoint != "" {
		ckpt := &nn.Checkpoint{Model: model, Optimizer: opt, OptimizerName: opts.Optimizer, Step: step, Loss: loss}
		if runID != "" {
			ckpt.Metadata = map[string]string{"run_id": runID}
		}
		if err := ckpt.Save(opts.Checkpoint); err != nil {
			return trainResult{}, err
		}
		logger.Info("checkpoint written", "path", opts.Checkpoint, "step", step)
	}

	return trainResult{RunID: runID, Step: step, Loss: loss, Weights: model.w.Clone().Data()}, nil
}

// newOptimizer builds the optimizer named in opts.
func newOptimizer(opts trainOptions) (optim.Optimizer, error) {
	if opts.Optimizer == "sgd" {
		return optim.NewSGD(optim.SGDConfig{LR: opts.LR, Momentum: opts.Momentum}), nil
	}
	return optim.New(opts.Optimizer, optim.Config{LR: opts.LR})
}
