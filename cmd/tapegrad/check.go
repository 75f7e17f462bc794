package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/tensor"
)

// checkPoints is the shape of each gradient-check input.
type checkPoints struct{}

func (checkPoints) Shape() tensor.Shape { return tensor.Shape{16} }

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare analytic gradients with finite differences",
	Long: `Run every elementwise activation on random positive inputs and compare
the tape gradient of sum(f(x)) with central finite differences. Exits non-zero
if any operation exceeds the tolerance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(),
			float32(cfg.GetFloat64(cfgKeyEps)),
			cfg.GetFloat64(cfgKeyTolerance),
			cfg.GetInt64(cfgKeySeed))
	},
}

func init() {
	f := checkCmd.Flags()
	f.Float32(cfgKeyEps, 1e-2, "finite difference step")
	f.Float64(cfgKeyTolerance, 1e-2, "maximum relative error")
	f.Int64(cfgKeySeed, 1, "random seed for the check inputs")
}

// runCheck writes one line per activation to w and fails if any exceeds tol.
func runCheck(w io.Writer, eps float32, tol float64, seed int64) error {
	if eps <= 0 {
		return fmt.Errorf("eps must be positive, got %v", eps)
	}

	// Inputs in [0.2, 2.2): positive for ln and clear of the relu/abs kinks.
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: test inputs
	input := make([]float32, tensor.NumElementsOf[checkPoints]())
	for i := range input {
		input[i] = 0.2 + 2*rng.Float32()
	}

	tw := newTable(w, "OP\tMAX REL ERROR\tSTATUS")

	activations := ops.Activations[checkPoints]()
	var failed int
	for _, op := range activations {
		res, err := ops.CheckGradient(op.Name, op.Fn, input, eps)
		if err != nil {
			return err
		}
		status := "ok"
		if !res.OK(tol) {
			status = "FAIL"
			failed++
		}
		logger.Debug("gradient check", "op", op.Name, "max_error", res.MaxError)
		fmt.Fprintf(tw, "%s\t%.3g\t%s\n", op.Name, res.MaxError, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d gradient checks failed (tolerance %g)", failed, len(activations), tol)
	}
	return nil
}
