// Package report renders training metrics to chart files.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart"

	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/fruitnet"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// RenderHistory draws the four training curves (train/validation loss and
// accuracy) over epoch index onto one chart and writes it as PNG to path,
// creating parent directories and overwriting any prior report.
func RenderHistory(history fruitnet.History, path string) error {
	if len(history) == 0 {
		return errors.NewStd("training history is empty, nothing to plot")
	}

	epochs := make([]float64, len(history))
	loss := make([]float64, len(history))
	valLoss := make([]float64, len(history))
	accuracy := make([]float64, len(history))
	valAccuracy := make([]float64, len(history))
	for i, m := range history {
		epochs[i] = float64(i)
		loss[i] = m.Loss
		valLoss[i] = m.ValLoss
		accuracy[i] = m.Accuracy
		valAccuracy[i] = m.ValAccuracy
	}

	graph := chart.Chart{
		Title:      "Training Loss and Accuracy",
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Epoch #",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Loss/Accuracy",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Training loss",
				XValues: epochs,
				YValues: loss,
				Style:   chart.Style{Show: true, StrokeColor: chart.ColorBlue},
			},
			chart.ContinuousSeries{
				Name:    "Validation loss",
				XValues: epochs,
				YValues: valLoss,
				Style:   chart.Style{Show: true, StrokeColor: chart.ColorRed},
			},
			chart.ContinuousSeries{
				Name:    "Training accuracy",
				XValues: epochs,
				YValues: accuracy,
				Style:   chart.Style{Show: true, StrokeColor: chart.ColorGreen},
			},
			chart.ContinuousSeries{
				Name:    "Validation accuracy",
				XValues: epochs,
				YValues: valAccuracy,
				Style:   chart.Style{Show: true, StrokeColor: chart.ColorOrange},
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(fmt.Errorf("creating plot directory: %w", err)).
			Component("report").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.New(fmt.Errorf("creating plot file: %w", err)).
			Component("report").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return errors.New(fmt.Errorf("rendering training history chart: %w", err)).
			Component("report").
			Category(errors.CategoryChart).
			Context("path", path).
			Build()
	}
	if err := file.Close(); err != nil {
		return errors.New(fmt.Errorf("writing plot file: %w", err)).
			Component("report").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	logging.ForComponent("report").Info("wrote training history chart", "path", path)
	return nil
}
