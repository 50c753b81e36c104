package fruitnet

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
)

// Predictor runs single-image inference against a persisted model artifact.
// The forward pass is rebuilt with batch size 1 and dropout disabled; the
// preprocessing contract is identical to the one used at training time.
type Predictor struct {
	artifact *Artifact

	g     *gorgonia.ExprGraph
	model *convnet
	x     *gorgonia.Node
	vm    gorgonia.VM
}

// Load reads the model artifact at path and prepares an inference graph.
func Load(path string) (*Predictor, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	g := gorgonia.NewGraph()
	m, err := newConvNetFromWeights(g, art.Weights, art.Width, art.Height, 1)
	if err != nil {
		return nil, errors.New(fmt.Errorf("rebuilding network from artifact: %w", err)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	x := gorgonia.NewTensor(g, gorgonia.Float64, 4,
		gorgonia.WithShape(1, art.Channels, art.Height, art.Width),
		gorgonia.WithName("x"))
	if err := m.fwd(x); err != nil {
		return nil, errors.New(fmt.Errorf("building inference graph: %w", err)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	return &Predictor{
		artifact: art,
		g:        g,
		model:    m,
		x:        x,
		vm:       gorgonia.NewTapeMachine(g),
	}, nil
}

// InputShape returns the width, height and channel count the model expects.
func (p *Predictor) InputShape() (width, height, channels int) {
	return p.artifact.Width, p.artifact.Height, p.artifact.Channels
}

// Classes returns the class list the model was trained with.
func (p *Predictor) Classes() []string {
	out := make([]string, len(p.artifact.Classes))
	copy(out, p.artifact.Classes)
	return out
}

// Classify runs inference on a preprocessed image tensor and returns the top
// label with its confidence.
func (p *Predictor) Classify(t *imageproc.Tensor) (label string, confidence float64, err error) {
	backing := make([]float64, len(t.Data))
	copy(backing, t.Data)
	xVal := tensor.New(
		tensor.WithShape(1, t.Channels, t.Height, t.Width),
		tensor.WithBacking(backing))

	gorgonia.Let(p.x, xVal)
	if err := p.vm.RunAll(); err != nil {
		return "", 0, errors.New(fmt.Errorf("running inference: %w", err)).
			Component("predictor").
			Category(errors.CategoryInference).
			Build()
	}
	defer p.vm.Reset()

	probs := p.model.out.Value().Data().([]float64)
	best := argmax(probs)
	if best >= len(p.artifact.Classes) {
		return "", 0, errors.Newf("prediction index %d exceeds class count %d", best, len(p.artifact.Classes)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			Build()
	}

	return p.artifact.Classes[best], probs[best], nil
}

// ClassifyFile decodes, preprocesses and classifies a single image file.
func (p *Predictor) ClassifyFile(path string) (label string, confidence float64, err error) {
	t, err := imageproc.Load(path, p.artifact.Width, p.artifact.Height, p.artifact.Channels)
	if err != nil {
		return "", 0, err
	}
	return p.Classify(t)
}

// Close releases the underlying virtual machine.
func (p *Predictor) Close() error {
	return p.vm.Close()
}
