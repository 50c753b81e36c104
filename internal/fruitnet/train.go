package fruitnet

import (
	"fmt"
	"math"
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/tmakinen/fruitnet-go/internal/dataset"
	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

const logEps = 1e-12

// Train runs the fit loop: for every epoch it draws augmented batches from
// the training set, updates the weights with the Adam solver and evaluates
// the held-out validation set. It returns the per-epoch history, of exactly
// the configured epoch count's length. Training failures are fatal and
// propagate to the caller.
func (n *Network) Train(split *dataset.Split, augmenter *imageproc.Augmenter) (History, error) {
	log := logging.ForComponent("trainer")

	epochs := n.settings.Training.Epochs
	lr := n.settings.Training.LearningRate
	decay := lr / float64(epochs)

	vm := gorgonia.NewTapeMachine(n.g, gorgonia.BindDualValues(n.model.learnables()...))
	defer vm.Close()

	evalVM := gorgonia.NewTapeMachine(n.evalG)
	defer evalVM.Close()

	rng := rand.New(rand.NewSource(n.settings.Training.Seed))
	indices := make([]int, len(split.TrainX))
	for i := range indices {
		indices[i] = i
	}

	steps := len(split.TrainX) / n.batchSize
	log.Info("training network",
		"epochs", epochs,
		"steps", steps,
		"train", len(split.TrainX),
		"validation", len(split.ValX))

	history := make(History, 0, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		// Time-based learning rate decay, matching Adam's classic
		// lr/(1+decay*epoch) schedule.
		epochLR := lr / (1 + decay*float64(epoch))
		solver := gorgonia.NewAdamSolver(
			gorgonia.WithBatchSize(float64(n.batchSize)),
			gorgonia.WithLearnRate(epochLR))

		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var lossSum float64
		var correct, seen int
		for step := 0; step < steps; step++ {
			batch := indices[step*n.batchSize : (step+1)*n.batchSize]
			xVal, yVal := n.makeBatch(split.TrainX, split.TrainY, batch, augmenter)

			gorgonia.Let(n.x, xVal)
			gorgonia.Let(n.y, yVal)
			if err := vm.RunAll(); err != nil {
				return nil, trainingError(epoch, step, err)
			}

			probs := n.model.out.Value().Data().([]float64)
			batchLoss, batchCorrect := n.batchMetrics(probs, split.TrainY, batch)
			lossSum += batchLoss
			correct += batchCorrect
			seen += len(batch)

			if err := solver.Step(gorgonia.NodesToValueGrads(n.model.learnables())); err != nil {
				return nil, trainingError(epoch, step, err)
			}
			vm.Reset()
		}

		valLoss, valAcc, err := n.evaluate(evalVM, split.ValX, split.ValY)
		if err != nil {
			return nil, trainingError(epoch, -1, err)
		}

		metrics := EpochMetrics{
			Loss:        lossSum / float64(seen),
			ValLoss:     valLoss,
			Accuracy:    float64(correct) / float64(seen),
			ValAccuracy: valAcc,
		}
		history = append(history, metrics)

		log.Info("epoch complete",
			"epoch", epoch+1,
			"loss", metrics.Loss,
			"val_loss", metrics.ValLoss,
			"accuracy", metrics.Accuracy,
			"val_accuracy", metrics.ValAccuracy)
	}

	return history, nil
}

// evaluate runs the validation set through the dropout-free graph, bound to
// the current training weights, without solver updates. The last batch is
// padded up to the fixed batch size; padded entries are excluded from the
// metrics.
func (n *Network) evaluate(vm gorgonia.VM, xs []*imageproc.Tensor, ys [][]float64) (loss, accuracy float64, err error) {
	if len(xs) == 0 {
		return 0, 0, nil
	}

	trained := n.model.learnables()
	for i, node := range n.evalModel.learnables() {
		gorgonia.Let(node, trained[i].Value())
	}

	var lossSum float64
	var correct, seen int
	for start := 0; start < len(xs); start += n.batchSize {
		batch := make([]int, n.batchSize)
		real := 0
		for i := range batch {
			if start+i < len(xs) {
				batch[i] = start + i
				real++
			} else {
				batch[i] = start // pad with a repeated sample
			}
		}

		xVal, _ := n.makeBatch(xs, ys, batch, nil)
		gorgonia.Let(n.evalX, xVal)
		if err := vm.RunAll(); err != nil {
			return 0, 0, err
		}

		probs := n.evalModel.out.Value().Data().([]float64)
		batchLoss, batchCorrect := n.batchMetrics(probs, ys, batch[:real])
		lossSum += batchLoss
		correct += batchCorrect
		seen += real
		vm.Reset()
	}

	return lossSum / float64(seen), float64(correct) / float64(seen), nil
}

// makeBatch stacks the selected samples into NCHW input and one-hot label
// tensors. When an augmenter is given, each sample passes through a freshly
// drawn random transform first.
func (n *Network) makeBatch(xs []*imageproc.Tensor, ys [][]float64, batch []int, augmenter *imageproc.Augmenter) (xVal, yVal tensor.Tensor) {
	sampleSize := n.settings.Input.Channels * n.settings.Input.Height * n.settings.Input.Width
	classes := len(n.classes)

	xBacking := make([]float64, len(batch)*sampleSize)
	yBacking := make([]float64, len(batch)*classes)
	for i, idx := range batch {
		sample := xs[idx]
		if augmenter != nil {
			sample = augmenter.Apply(sample)
		}
		copy(xBacking[i*sampleSize:], sample.Data)
		copy(yBacking[i*classes:], ys[idx])
	}

	xVal = tensor.New(
		tensor.WithShape(len(batch), n.settings.Input.Channels, n.settings.Input.Height, n.settings.Input.Width),
		tensor.WithBacking(xBacking))
	yVal = tensor.New(
		tensor.WithShape(len(batch), classes),
		tensor.WithBacking(yBacking))
	return xVal, yVal
}

// batchMetrics computes cross-entropy loss and correct-prediction count for
// the batch rows listed in batch.
func (n *Network) batchMetrics(probs []float64, ys [][]float64, batch []int) (lossSum float64, correct int) {
	classes := len(n.classes)
	for i, idx := range batch {
		row := probs[i*classes : (i+1)*classes]
		var sampleLoss float64
		for k, p := range row {
			if ys[idx][k] > 0 {
				sampleLoss -= ys[idx][k] * math.Log(math.Max(p, logEps))
			}
		}
		lossSum += sampleLoss

		if argmax(row) == argmax(ys[idx]) {
			correct++
		}
	}
	return lossSum, correct
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func trainingError(epoch, step int, err error) error {
	builder := errors.New(fmt.Errorf("training failed at epoch %d: %w", epoch, err)).
		Component("trainer").
		Category(errors.CategoryTraining).
		Context("epoch", epoch)
	if step >= 0 {
		builder = builder.Context("step", step)
	}
	return builder.Build()
}
