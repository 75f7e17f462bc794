package nn

import (
	"fmt"

	"github.com/born-ml/tapegrad/internal/optim"
	"github.com/born-ml/tapegrad/internal/serialization"
)

// Checkpoint represents a training state snapshot.
//
// A checkpoint includes:
//   - Model parameters, stored under their names
//   - Optimizer state (momentum buffers, Adam moments), when the optimizer
//     implements optim.Stateful
//   - Training metadata (step, loss, optimizer, learning rate)
//
// Example:
//
//	ckpt := &nn.Checkpoint{Model: model, Optimizer: opt, OptimizerName: "sgd", Step: 500, Loss: 0.01}
//	err := ckpt.Save("model.tgrd")
//
// To resume training:
//
//	ckpt, err := nn.LoadCheckpoint("model.tgrd", model, opt)
//	startStep := ckpt.Step
type Checkpoint struct {
	Model         Module
	Optimizer     optim.Optimizer
	OptimizerName string
	Step          int64
	Loss          float64
	Metadata      map[string]string
}

// Save writes the checkpoint to path, replacing any existing file.
func (c *Checkpoint) Save(path string) error {
	params := c.Model.Parameters()
	entries := make([]serialization.Entry, 0, len(params))
	for _, p := range params {
		entries = append(entries, serialization.EntryOf(p.Name(), p))
	}

	meta := serialization.CheckpointMeta{Step: c.Step, Loss: c.Loss, Optimizer: c.OptimizerName}
	if c.Optimizer != nil {
		meta.LR = c.Optimizer.GetLR()
		if s, ok := c.Optimizer.(optim.Stateful); ok {
			entries = append(entries, serialization.OptimizerEntries(s.StateDict())...)
		}
	}

	if err := serialization.WriteFile(path, entries, c.Metadata, serialization.WithCheckpoint(meta)); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint restores model parameters (and optimizer state, if opt is
// stateful) from path. Every model parameter must be present with a matching
// shape; extra entries are ignored. Optimizer entries never satisfy a model
// parameter, even when the names collide after the prefix.
func LoadCheckpoint(path string, model Module, opt optim.Optimizer) (*Checkpoint, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	stored := make(map[string]serialization.Entry)
	for _, e := range f.Params() {
		stored[e.Name] = e
	}
	for _, p := range model.Parameters() {
		entry, ok := stored[p.Name()]
		if !ok {
			return nil, fmt.Errorf("load checkpoint %s: missing parameter %q", path, p.Name())
		}
		if err := entry.Into(p); err != nil {
			return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
		}
	}

	if s, ok := opt.(optim.Stateful); ok {
		if err := s.LoadStateDict(f.OptimizerState()); err != nil {
			return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
		}
	}

	ckpt := &Checkpoint{Model: model, Optimizer: opt, Metadata: f.Header.Metadata}
	if m := f.Header.Checkpoint; m != nil {
		ckpt.OptimizerName = m.Optimizer
		ckpt.Step = m.Step
		ckpt.Loss = m.Loss
	}
	return ckpt, nil
}
