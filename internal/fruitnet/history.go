package fruitnet

// EpochMetrics records the loss and accuracy of one epoch, for the training
// batches and the held-out validation set.
type EpochMetrics struct {
	Loss        float64
	ValLoss     float64
	Accuracy    float64
	ValAccuracy float64
}

// History is the per-epoch training record, ordered by epoch.
type History []EpochMetrics

// Final returns the metrics of the last epoch.
func (h History) Final() EpochMetrics {
	if len(h) == 0 {
		return EpochMetrics{}
	}
	return h[len(h)-1]
}
