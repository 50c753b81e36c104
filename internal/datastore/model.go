package datastore

import "time"

// TrainingRun records one completed training run and its final metrics.
type TrainingRun struct {
	ID               uint `gorm:"primaryKey"`
	StartedAt        time.Time
	Epochs           int
	BatchSize        int
	Classes          string // comma-separated class list in encoder order
	SampleCount      int
	FinalLoss        float64
	FinalValLoss     float64
	FinalAccuracy    float64
	FinalValAccuracy float64
	ModelPath        string
}

// Prediction records one classification result.
type Prediction struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	ImagePath  string
	Label      string
	Confidence float64
}
