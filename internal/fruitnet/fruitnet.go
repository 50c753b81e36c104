// Package fruitnet wraps the Gorgonia graph behind the narrow interface the
// rest of the pipeline uses: build and compile a network sized by class count
// and input shape, train it on augmented batches, persist the artifact and
// classify single images.
package fruitnet

import (
	"fmt"

	"gorgonia.org/gorgonia"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// Network is a compiled model ready for training.
type Network struct {
	settings *conf.Settings
	classes  []string

	batchSize int

	g     *gorgonia.ExprGraph
	model *convnet
	x     *gorgonia.Node
	y     *gorgonia.Node
	cost  *gorgonia.Node

	// Dropout-free twin of the training graph for validation metrics. The
	// evaluation weight nodes are rebound to the trained values each epoch.
	evalG     *gorgonia.ExprGraph
	evalModel *convnet
	evalX     *gorgonia.Node
}

// New builds and compiles a training network for the given class list. The
// batch size is clamped to trainSize so tiny datasets still produce at least
// one full batch per epoch.
func New(settings *conf.Settings, classes []string, trainSize int) (*Network, error) {
	if len(classes) < 2 {
		return nil, errors.Newf("need at least 2 classes to train, got %d", len(classes)).
			Component("fruitnet").
			Category(errors.CategoryModelInit).
			Build()
	}
	if trainSize == 0 {
		return nil, errors.NewStd("training set is empty")
	}

	batchSize := settings.Training.BatchSize
	if batchSize > trainSize {
		batchSize = trainSize
	}

	g := gorgonia.NewGraph()
	m := newConvNet(g,
		settings.Input.Width,
		settings.Input.Height,
		settings.Input.Channels,
		len(classes),
		batchSize)

	x := gorgonia.NewTensor(g, gorgonia.Float64, 4,
		gorgonia.WithShape(batchSize, settings.Input.Channels, settings.Input.Height, settings.Input.Width),
		gorgonia.WithName("x"))
	y := gorgonia.NewMatrix(g, gorgonia.Float64,
		gorgonia.WithShape(batchSize, len(classes)),
		gorgonia.WithName("y"))

	if err := m.fwd(x); err != nil {
		return nil, modelInitError(err)
	}

	// Categorical cross-entropy over the softmax output.
	losses, err := gorgonia.HadamardProd(gorgonia.Must(gorgonia.Log(m.out)), y)
	if err != nil {
		return nil, modelInitError(err)
	}
	cost, err := gorgonia.Mean(losses)
	if err != nil {
		return nil, modelInitError(err)
	}
	cost, err = gorgonia.Neg(cost)
	if err != nil {
		return nil, modelInitError(err)
	}

	if _, err := gorgonia.Grad(cost, m.learnables()...); err != nil {
		return nil, modelInitError(err)
	}

	evalG := gorgonia.NewGraph()
	evalModel := newEvalConvNet(evalG,
		settings.Input.Width,
		settings.Input.Height,
		settings.Input.Channels,
		len(classes),
		batchSize)
	evalX := gorgonia.NewTensor(evalG, gorgonia.Float64, 4,
		gorgonia.WithShape(batchSize, settings.Input.Channels, settings.Input.Height, settings.Input.Width),
		gorgonia.WithName("x"))
	if err := evalModel.fwd(evalX); err != nil {
		return nil, modelInitError(err)
	}

	logging.ForComponent("fruitnet").Info("compiled model",
		"classes", len(classes),
		"input", fmt.Sprintf("%dx%dx%d", settings.Input.Width, settings.Input.Height, settings.Input.Channels),
		"batchsize", batchSize)

	return &Network{
		settings:  settings,
		classes:   classes,
		batchSize: batchSize,
		g:         g,
		model:     m,
		x:         x,
		y:         y,
		cost:      cost,
		evalG:     evalG,
		evalModel: evalModel,
		evalX:     evalX,
	}, nil
}

// Classes returns the class list in encoder order.
func (n *Network) Classes() []string {
	out := make([]string, len(n.classes))
	copy(out, n.classes)
	return out
}

func modelInitError(err error) error {
	return errors.New(fmt.Errorf("building model graph: %w", err)).
		Component("fruitnet").
		Category(errors.CategoryModelInit).
		Build()
}
