package fruitnet

import (
	"fmt"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convnet is the network graph: three conv/relu/maxpool blocks followed by
// two fully connected layers and a softmax head. Weight shapes are derived
// from the input shape and class count.
type convnet struct {
	g                  *gorgonia.ExprGraph
	w0, w1, w2, w3, w4 *gorgonia.Node
	d0, d1, d2, d3     float64 // dropout rates, zero disables the layer

	batchSize int
	flatSize  int

	out *gorgonia.Node // softmax probabilities, shape (batchSize, classes)
}

const (
	convFilters0 = 32
	convFilters1 = 64
	convFilters2 = 128
	denseUnits   = 625
)

// flattenedSize returns the element count per sample after the three 2x2
// max-pool halvings.
func flattenedSize(width, height int) int {
	w, h := width, height
	for i := 0; i < 3; i++ {
		w /= 2
		h /= 2
	}
	return convFilters2 * w * h
}

// newConvNet builds a freshly initialized network for training.
func newConvNet(g *gorgonia.ExprGraph, width, height, channels, classes, batchSize int) *convnet {
	flat := flattenedSize(width, height)

	w0 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters0, channels, 3, 3),
		gorgonia.WithName("w0"),
		gorgonia.WithInit(gorgonia.HeN(1.0)))
	w1 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters1, convFilters0, 3, 3),
		gorgonia.WithName("w1"),
		gorgonia.WithInit(gorgonia.HeN(1.0)))
	w2 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters2, convFilters1, 3, 3),
		gorgonia.WithName("w2"),
		gorgonia.WithInit(gorgonia.HeN(1.0)))
	w3 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(flat, denseUnits),
		gorgonia.WithName("w3"),
		gorgonia.WithInit(gorgonia.HeN(1.0)))
	w4 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(denseUnits, classes),
		gorgonia.WithName("w4"),
		gorgonia.WithInit(gorgonia.HeN(1.0)))

	return &convnet{
		g:  g,
		w0: w0,
		w1: w1,
		w2: w2,
		w3: w3,
		w4: w4,

		d0: 0.2,
		d1: 0.25,
		d2: 0.25,
		d3: 0.5,

		batchSize: batchSize,
		flatSize:  flat,
	}
}

// newEvalConvNet builds a dropout-free copy of the network whose weight
// nodes carry no values of their own; the caller binds the trained weights
// before each evaluation.
func newEvalConvNet(g *gorgonia.ExprGraph, width, height, channels, classes, batchSize int) *convnet {
	w0 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters0, channels, 3, 3),
		gorgonia.WithName("w0"))
	w1 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters1, convFilters0, 3, 3),
		gorgonia.WithName("w1"))
	w2 := gorgonia.NewTensor(g, tensor.Float64, 4,
		gorgonia.WithShape(convFilters2, convFilters1, 3, 3),
		gorgonia.WithName("w2"))
	w3 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(flattenedSize(width, height), denseUnits),
		gorgonia.WithName("w3"))
	w4 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(denseUnits, classes),
		gorgonia.WithName("w4"))

	return &convnet{
		g:  g,
		w0: w0,
		w1: w1,
		w2: w2,
		w3: w3,
		w4: w4,

		batchSize: batchSize,
		flatSize:  flattenedSize(width, height),
	}
}

// newConvNetFromWeights rebuilds the network from persisted weight tensors,
// with dropout disabled, for inference.
func newConvNetFromWeights(g *gorgonia.ExprGraph, weights []Weight, width, height, batchSize int) (*convnet, error) {
	if len(weights) != 5 {
		return nil, fmt.Errorf("expected 5 weight tensors, got %d", len(weights))
	}

	nodes := make([]*gorgonia.Node, len(weights))
	for i, w := range weights {
		backing := make([]float64, len(w.Data))
		copy(backing, w.Data)
		value := tensor.New(tensor.WithShape(w.Shape...), tensor.WithBacking(backing))
		nodes[i] = gorgonia.NodeFromAny(g, value, gorgonia.WithName(w.Name))
	}

	return &convnet{
		g:  g,
		w0: nodes[0],
		w1: nodes[1],
		w2: nodes[2],
		w3: nodes[3],
		w4: nodes[4],

		batchSize: batchSize,
		flatSize:  flattenedSize(width, height),
	}, nil
}

// learnables returns the weight nodes updated by the solver.
func (m *convnet) learnables() gorgonia.Nodes {
	return gorgonia.Nodes{m.w0, m.w1, m.w2, m.w3, m.w4}
}

// fwd wires the forward pass from the input node x to m.out.
func (m *convnet) fwd(x *gorgonia.Node) error {
	// Block 0
	c0, err := gorgonia.Conv2d(x, m.w0, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return err
	}
	a0, err := gorgonia.Rectify(c0)
	if err != nil {
		return err
	}
	p0, err := gorgonia.MaxPool2D(a0, tensor.Shape{2, 2}, []int{0, 0}, []int{2, 2})
	if err != nil {
		return err
	}
	l0, err := m.dropout(p0, m.d0)
	if err != nil {
		return err
	}

	// Block 1
	c1, err := gorgonia.Conv2d(l0, m.w1, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return err
	}
	a1, err := gorgonia.Rectify(c1)
	if err != nil {
		return err
	}
	p1, err := gorgonia.MaxPool2D(a1, tensor.Shape{2, 2}, []int{0, 0}, []int{2, 2})
	if err != nil {
		return err
	}
	l1, err := m.dropout(p1, m.d1)
	if err != nil {
		return err
	}

	// Block 2
	c2, err := gorgonia.Conv2d(l1, m.w2, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		return err
	}
	a2, err := gorgonia.Rectify(c2)
	if err != nil {
		return err
	}
	p2, err := gorgonia.MaxPool2D(a2, tensor.Shape{2, 2}, []int{0, 0}, []int{2, 2})
	if err != nil {
		return err
	}
	l2, err := m.dropout(p2, m.d2)
	if err != nil {
		return err
	}

	// Dense head
	r2, err := gorgonia.Reshape(l2, tensor.Shape{m.batchSize, m.flatSize})
	if err != nil {
		return err
	}
	fc, err := gorgonia.Mul(r2, m.w3)
	if err != nil {
		return err
	}
	a3, err := gorgonia.Rectify(fc)
	if err != nil {
		return err
	}
	l3, err := m.dropout(a3, m.d3)
	if err != nil {
		return err
	}
	logits, err := gorgonia.Mul(l3, m.w4)
	if err != nil {
		return err
	}

	m.out, err = gorgonia.SoftMax(logits)
	return err
}

func (m *convnet) dropout(x *gorgonia.Node, rate float64) (*gorgonia.Node, error) {
	if rate == 0 {
		return x, nil
	}
	return gorgonia.Dropout(x, rate)
}
