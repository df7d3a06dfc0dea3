// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package chart renders a run's iteration and rebalance timings as a grouped
// bar chart.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type series struct {
	label  string
	values plotter.Values
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// collect returns one series per measurement, each with a value per
// iteration. Pauses are attributed to the iteration they precede.
func collect(r *lbsim.Report) []series {
	n := len(r.Iterations)
	work := make(plotter.Values, n)
	wall := make(plotter.Values, n)
	for i, it := range r.Iterations {
		work[i] = millis(it.Duration)
		wall[i] = millis(it.Elapsed)
	}
	out := []series{
		{"slowest task", work},
		{"wall", wall},
	}
	if len(r.Rebalances) > 0 {
		pause := make(plotter.Values, n)
		for _, lb := range r.Rebalances {
			if i := lb.BeforeIteration - 1; i >= 0 && i < n {
				pause[i] = millis(lb.Pause)
			}
		}
		out = append(out, series{"rebalance pause", pause})
	}
	return out
}

func setupPlot(r *lbsim.Report) *plot.Plot {
	p := plot.New()

	p.Title.Text = fmt.Sprintf("%d tasks, %v graph, %d units", r.TaskCount, r.Graph, r.Units)
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "milliseconds"

	p.Title.TextStyle.Color = color.Gray{128}
	p.X.Color = color.Gray{128}
	p.Y.Color = color.Gray{128}
	p.X.Label.TextStyle.Color = color.Gray{128}
	p.Y.Label.TextStyle.Color = color.Gray{128}
	p.X.Tick.Color = color.Gray{128}
	p.Y.Tick.Color = color.Gray{128}
	p.X.Tick.Label.Color = color.Gray{128}
	p.Y.Tick.Label.Color = color.Gray{128}
	p.Legend.TextStyle.Color = color.Gray{128}

	p.Legend.Top = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.BackgroundColor = color.Transparent

	labels := make([]string, len(r.Iterations))
	for i, it := range r.Iterations {
		labels[i] = strconv.Itoa(it.Iteration)
	}
	p.NominalX(labels...)
	return p
}

// Plot builds the chart for r.
func Plot(r *lbsim.Report) (*plot.Plot, error) {
	if len(r.Iterations) == 0 {
		return nil, fmt.Errorf("no iterations to plot")
	}
	p := setupPlot(r)
	all := collect(r)

	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", max(3, len(all)))
	if err != nil {
		return nil, err
	}
	colors := palette.Colors()

	barSpacing := vg.Points(1)
	barWidth := vg.Points(max(2, 240/float64(len(r.Iterations)*len(all))))
	groupWidth := (barWidth + barSpacing) * vg.Length(len(all)-1)

	for i, s := range all {
		bc, err := plotter.NewBarChart(s.values, barWidth)
		if err != nil {
			return nil, err
		}
		bc.Offset = (barWidth+barSpacing)*vg.Length(i) - groupWidth/2
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		p.Add(bc)
		p.Legend.Add(s.label, bc)
	}
	return p, nil
}

// Save renders r to path. The image format follows the file extension.
func Save(r *lbsim.Report, path string) error {
	p, err := Plot(r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return p.Save(9*vg.Inch, 6*vg.Inch, path)
}
