// Package datastore persists training runs and predictions to a database so
// pipeline activity can be inspected after the fact.
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// Interface abstracts the underlying database implementation.
type Interface interface {
	Open() error
	Close() error
	SaveTrainingRun(run *TrainingRun) error
	SavePrediction(prediction *Prediction) error
	GetTrainingRuns(limit int) ([]TrainingRun, error)
	GetPredictions(limit int) ([]Prediction, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a datastore for the configured backend, or nil when no
// datastore output is enabled.
func New(settings *conf.Settings) Interface {
	if settings.Output.SQLite.Enabled {
		return &SQLiteStore{Settings: settings}
	}
	return nil
}

// SaveTrainingRun inserts a training run record.
func (ds *DataStore) SaveTrainingRun(run *TrainingRun) error {
	if ds.DB == nil {
		return notOpenError()
	}
	if err := ds.DB.Create(run).Error; err != nil {
		return databaseError("saving training run", err)
	}
	return nil
}

// SavePrediction inserts a prediction record.
func (ds *DataStore) SavePrediction(prediction *Prediction) error {
	if ds.DB == nil {
		return notOpenError()
	}
	if err := ds.DB.Create(prediction).Error; err != nil {
		return databaseError("saving prediction", err)
	}
	return nil
}

// GetTrainingRuns returns the most recent training runs, newest first.
func (ds *DataStore) GetTrainingRuns(limit int) ([]TrainingRun, error) {
	if ds.DB == nil {
		return nil, notOpenError()
	}
	var runs []TrainingRun
	if err := ds.DB.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, databaseError("fetching training runs", err)
	}
	return runs, nil
}

// GetPredictions returns the most recent predictions, newest first.
func (ds *DataStore) GetPredictions(limit int) ([]Prediction, error) {
	if ds.DB == nil {
		return nil, notOpenError()
	}
	var predictions []Prediction
	if err := ds.DB.Order("created_at DESC").Limit(limit).Find(&predictions).Error; err != nil {
		return nil, databaseError("fetching predictions", err)
	}
	return predictions, nil
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return databaseError("getting database handle", err)
	}
	return sqlDB.Close()
}

// performAutoMigration migrates the schema for all entities.
func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(&TrainingRun{}, &Prediction{}); err != nil {
		return databaseError("migrating schema", err)
	}
	return nil
}

func notOpenError() error {
	return errors.NewStd("database connection is not initialized")
}

func databaseError(action string, err error) error {
	return errors.New(fmt.Errorf("%s: %w", action, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
}
