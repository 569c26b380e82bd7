// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command chartgen renders the results of the forkjoin BenchmarkDispatch
// benchmark as SVG bar charts. It reads benchmark output from the files named
// on the command line, or from stdin, and writes the charts to ./charts.
package main

import (
	"cmp"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"time"

	"golang.org/x/perf/benchfmt"
	"golang.org/x/perf/benchmath"
	"golang.org/x/perf/benchproc"
	"golang.org/x/perf/benchunit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const referenceMethod = "sequential"

type seriesPoints struct {
	plotter.YErrorBars
	Labels []string
}

func (sp seriesPoints) Label(i int) string {
	return sp.Labels[i]
}

var _ plotter.Labeller = &seriesPoints{}

type chart struct {
	Title           string
	YAxisLabel      string
	XAxisLabel      string
	XTickLabels     []string
	XTickPositions  []float64
	SeriesLabels    []string
	SeriesPoints    []seriesPoints
	YAxisGrowFactor float64
	FileBasename    string
}

func newChart(title, yAxisLabel, basename string, ticks, series int) *chart {
	return &chart{
		Title:           title,
		XAxisLabel:      "Indices Per Dispatch",
		YAxisLabel:      yAxisLabel,
		XTickLabels:     make([]string, ticks),
		XTickPositions:  make([]float64, ticks),
		SeriesLabels:    make([]string, series),
		SeriesPoints:    make([]seriesPoints, series),
		YAxisGrowFactor: 1.2,
		FileBasename:    basename,
	}
}

func (c *chart) initSeries(i int, label string) *seriesPoints {
	n := len(c.XTickPositions)
	c.SeriesLabels[i] = label
	sp := &c.SeriesPoints[i]
	sp.XYs = make(plotter.XYs, n)
	sp.YErrors = make(plotter.YErrors, n)
	sp.Labels = make([]string, n)
	return sp
}

func setupPlot(c *chart) *plot.Plot {
	p := plot.New()

	p.Title.Text = c.Title
	p.X.Label.Text = c.XAxisLabel
	p.Y.Label.Text = c.YAxisLabel

	gray := color.Gray{128}
	p.Title.TextStyle.Color = gray
	p.X.Color = gray
	p.Y.Color = gray
	p.X.Label.TextStyle.Color = gray
	p.Y.Label.TextStyle.Color = gray
	p.X.Tick.Color = gray
	p.Y.Tick.Color = gray
	p.X.Tick.Label.Color = gray
	p.Y.Tick.Label.Color = gray
	p.Legend.TextStyle.Color = gray

	p.X.Scale = plot.LogScale{}

	xTicks := make([]plot.Tick, len(c.XTickLabels))
	for i := range c.XTickLabels {
		xTicks[i] = plot.Tick{Value: c.XTickPositions[i], Label: c.XTickLabels[i]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	p.BackgroundColor = color.Transparent

	return p
}

func plotBars(c *chart) error {
	p := setupPlot(c)

	// Paired palettes come in at least three colors.
	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", max(3, len(c.SeriesLabels)))
	if err != nil {
		return err
	}
	colors := palette.Colors()

	barSpacing := vg.Points(3)
	barWidth := vg.Points(24)

	// Total width of the bar group, center to center.
	groupWidth := (barWidth + barSpacing) * vg.Length(len(c.SeriesPoints)-1)

	for i, label := range c.SeriesLabels {
		points := c.SeriesPoints[i]
		bc, err := newBarChart(points, barWidth)
		if err != nil {
			return err
		}
		bc.Offset = (barWidth+barSpacing)*vg.Length(i) - groupWidth/2
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		bc.ErrorStyle.Color = color.Gray{128}
		bc.ErrorStyle.Width = 0.2 * vg.Millimeter
		bc.LabelStyle = p.Y.Label.TextStyle
		bc.LabelStyle.Font.Size *= 0.7
		bc.LabelOffsets = make([]vg.Point, points.Len())
		for j := range bc.LabelOffsets {
			bc.LabelOffsets[j].Y = vg.Points(10)
		}

		p.Add(bc)
		p.Legend.Add(label, bc)
	}

	return savePlot(c, p)
}

func savePlot(c *chart, p *plot.Plot) error {
	p.Y.Max *= c.YAxisGrowFactor

	if err := os.MkdirAll("charts", 0755); err != nil {
		return err
	}
	return p.Save(9*vg.Inch, 6*vg.Inch, "charts/"+c.FileBasename+".svg")
}

// cell identifies one benchmark configuration.
type cell struct {
	Workload  benchproc.Key
	Cost      benchproc.Key
	TaskCount benchproc.Key
	Method    benchproc.Key
}

type Data struct {
	Sample     benchmath.Sample
	Summary    benchmath.Summary
	Reference  *Data
	Comparison benchmath.Comparison
}

func main() {
	var pp benchproc.ProjectionParser
	mustParse := func(proj string) *benchproc.Projection {
		p, err := pp.Parse(proj, nil)
		if err != nil {
			log.Fatal(err)
		}
		return p
	}
	workloadP := mustParse("/workload")
	costP := mustParse("/cost")
	taskCountP := mustParse("/taskCount")
	methodP := mustParse("/method")
	residueP := pp.Residue()

	field := func(p *benchproc.Projection, k benchproc.Key) string {
		return k.Get(p.Fields()[0])
	}

	dataByCellUnit := make(map[cell]map[string]*Data)
	workloadKeySet := make(map[benchproc.Key]struct{})
	costKeySet := make(map[benchproc.Key]struct{})
	taskCountKeySet := make(map[benchproc.Key]struct{})
	methodKeySet := make(map[benchproc.Key]struct{})
	var residues []benchproc.Key

	benchFiles := &benchfmt.Files{
		Paths:       os.Args[1:],
		AllowStdin:  true,
		AllowLabels: true,
	}
	for benchFiles.Scan() {
		var res *benchfmt.Result
		switch rec := benchFiles.Result(); rec := rec.(type) {
		case *benchfmt.Result:
			res = rec
		case *benchfmt.SyntaxError:
			// Report a non-fatal parse error.
			log.Print(rec)
			continue
		default:
			// Unknown record type. Ignore.
			continue
		}

		c := cell{
			Workload:  workloadP.Project(res),
			Cost:      costP.Project(res),
			TaskCount: taskCountP.Project(res),
			Method:    methodP.Project(res),
		}
		workloadKeySet[c.Workload] = struct{}{}
		costKeySet[c.Cost] = struct{}{}
		taskCountKeySet[c.TaskCount] = struct{}{}
		methodKeySet[c.Method] = struct{}{}

		dataByUnit := dataByCellUnit[c]
		if dataByUnit == nil {
			dataByUnit = make(map[string]*Data)
			dataByCellUnit[c] = dataByUnit
		}
		for _, v := range res.Values {
			data := dataByUnit[v.Unit]
			if data == nil {
				data = &Data{}
				dataByUnit[v.Unit] = data
			}
			data.Sample.Values = append(data.Sample.Values, v.Value)
		}

		residues = append(residues, residueP.Project(res))
	}
	if err := benchFiles.Err(); err != nil {
		log.Fatalf("Error reading benchmark files: %v", err)
	}
	if len(dataByCellUnit) == 0 {
		log.Fatal("no BenchmarkDispatch results found")
	}

	nonsingular := benchproc.NonSingularFields(residues)
	if len(nonsingular) > 0 {
		fmt.Printf("warning: results vary in %s\n", nonsingular)
	}

	workloadKeys := sortedKeys(workloadKeySet, func(a, b benchproc.Key) int {
		return cmp.Compare(field(workloadP, a), field(workloadP, b))
	})
	costKeys := sortedKeys(costKeySet, func(a, b benchproc.Key) int {
		return cmp.Compare(mustParseDuration(field(costP, a)), mustParseDuration(field(costP, b)))
	})
	taskCounts := make(map[benchproc.Key]float64)
	for k := range taskCountKeySet {
		s := field(taskCountP, k)
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			log.Fatalf("Error parsing task count %q: %v\n", s, err)
		}
		taskCounts[k] = float64(n)
	}
	taskCountKeys := sortedKeys(taskCountKeySet, func(a, b benchproc.Key) int {
		return cmp.Compare(taskCounts[a], taskCounts[b])
	})
	// The reference comes first, then the wait strategies by name.
	methodKeys := sortedKeys(methodKeySet, func(a, b benchproc.Key) int {
		ma, mb := field(methodP, a), field(methodP, b)
		if (ma == referenceMethod) != (mb == referenceMethod) {
			if ma == referenceMethod {
				return -1
			}
			return 1
		}
		return cmp.Compare(ma, mb)
	})
	if len(methodKeys) == 0 || field(methodP, methodKeys[0]) != referenceMethod {
		log.Fatalf("no results for method=%s", referenceMethod)
	}
	referenceKey := methodKeys[0]

	// Connect reference values and do the math over the samples
	confidence := 0.95
	thresholds := benchmath.DefaultThresholds
	for _, dataByUnit := range dataByCellUnit {
		for _, data := range dataByUnit {
			data.Sample = *benchmath.NewSample(data.Sample.Values, &thresholds)
			for _, w := range data.Sample.Warnings {
				log.Fatalf("sample warning: %v", w)
			}
			data.Summary = benchmath.AssumeNothing.Summary(&data.Sample, confidence)
			for _, w := range data.Summary.Warnings {
				if w.Error() != "all samples are equal" {
					log.Fatalf("summary warning: %v", w)
				}
			}
		}
	}
	for c, dataByUnit := range dataByCellUnit {
		ref := c
		ref.Method = referenceKey
		for unit, data := range dataByUnit {
			data.Reference = dataByCellUnit[ref][unit]
			if data.Reference == nil {
				log.Fatalf("can't find reference for Dispatch/workload=%v/cost=%v/taskCount=%v/method=%v %v",
					field(workloadP, c.Workload),
					field(costP, c.Cost),
					field(taskCountP, c.TaskCount),
					referenceMethod,
					unit,
				)
			}
			data.Comparison = benchmath.AssumeNothing.Compare(&data.Reference.Sample, &data.Sample)
			for _, w := range data.Comparison.Warnings {
				if w.Error() != "all samples are equal" {
					log.Fatalf("comparison: %v", w)
				}
			}
		}
	}

	// Create a set of charts for each workload and per-index cost
	for _, workloadKey := range workloadKeys {
		workloadName := field(workloadP, workloadKey)
		workloadDisplayName := workloadName
		switch workloadName {
		case "processing":
			workloadDisplayName = "Processing"
		case "waiting":
			workloadDisplayName = "Waiting"
		}

		for _, costKey := range costKeys {
			costName := field(costP, costKey)
			subtitle := fmt.Sprintf("%s, %s per index", workloadDisplayName, costName)
			basename := fmt.Sprintf("%s_%dns", workloadName, mustParseDuration(costName).Nanoseconds())

			ticks, series := len(taskCountKeys), len(methodKeys)
			throughputChart := newChart(fmt.Sprintf("Dispatch Throughput (%s)", subtitle),
				"Indices / Second", basename+"_throughput", ticks, series)
			speedupChart := newChart(fmt.Sprintf("Dispatch Speedup (%s)", subtitle),
				"Throughput vs. Sequential", basename+"_speedup", ticks, series)
			allocationsChart := newChart(fmt.Sprintf("Allocations Per Dispatch (%s)", subtitle),
				"Allocations / Dispatch", basename+"_allocations", ticks, series)
			allocationsChart.YAxisGrowFactor = 1.6

			for seriesIndex, methodKey := range methodKeys {
				methodName := field(methodP, methodKey)
				var methodDisplayName string
				switch methodName {
				case referenceMethod:
					methodDisplayName = "Sequential Loop"
				case "block":
					methodDisplayName = "Pool (blocking wait)"
				case "spin":
					methodDisplayName = "Pool (spinning wait)"
				default:
					methodDisplayName = fmt.Sprintf("Pool (%s)", methodName)
				}

				throughputPoints := throughputChart.initSeries(seriesIndex, methodDisplayName)
				speedupPoints := speedupChart.initSeries(seriesIndex, methodDisplayName)
				allocationsPoints := allocationsChart.initSeries(seriesIndex, methodDisplayName)

				for pointIndex, taskCountKey := range taskCountKeys {
					x := taskCounts[taskCountKey]
					xTickLabel := field(taskCountP, taskCountKey)
					for _, c := range []*chart{throughputChart, speedupChart, allocationsChart} {
						c.XTickPositions[pointIndex] = x
						c.XTickLabels[pointIndex] = xTickLabel
					}

					dataByUnit := dataByCellUnit[cell{
						Workload:  workloadKey,
						Cost:      costKey,
						TaskCount: taskCountKey,
						Method:    methodKey,
					}]

					if data := dataByUnit["indices/s"]; data != nil {
						setPoint(throughputPoints, pointIndex, x, &data.Summary)

						y := data.Summary.Center / data.Reference.Summary.Center
						plus := data.Summary.Hi - data.Summary.Center
						minus := data.Summary.Center - data.Summary.Lo
						refPlus := data.Reference.Summary.Hi - data.Reference.Summary.Center
						refMinus := data.Reference.Summary.Center - data.Reference.Summary.Lo
						variance := y * math.Sqrt((plus*minus)/(data.Summary.Center*data.Summary.Center)+
							(refPlus*refMinus)/(data.Reference.Summary.Center*data.Reference.Summary.Center))
						setPoint(speedupPoints, pointIndex, x, &benchmath.Summary{
							Center: y,
							Hi:     y + variance,
							Lo:     y - variance,
						})
					}

					if data := dataByUnit["allocs/op"]; data != nil {
						setPoint(allocationsPoints, pointIndex, x, &data.Summary)
					}
				}
			}

			for _, c := range []*chart{throughputChart, speedupChart, allocationsChart} {
				if err := plotBars(c); err != nil {
					log.Fatalf("Error creating chart: %v", err)
				}
			}
		}
	}

	fmt.Println("Charts generated successfully in the 'charts' directory.")
}

func setPoint(sp *seriesPoints, i int, x float64, s *benchmath.Summary) {
	sp.XYs[i].X = x
	sp.XYs[i].Y = s.Center
	sp.YErrors[i].High = s.Hi - s.Center
	sp.YErrors[i].Low = s.Center - s.Lo
	sp.Labels[i] = formatSummary(s, benchunit.Decimal)
}

func sortedKeys(set map[benchproc.Key]struct{}, compare func(a, b benchproc.Key) int) []benchproc.Key {
	keys := make([]benchproc.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Error parsing duration %q: %v\n", s, err)
	}
	return d
}

func formatRatio(n, d float64) string {
	switch {
	case d == 0:
		if n == 0 {
			return "0%"
		}
		return fmt.Sprintf("%.2g", n)
	case math.Abs(n/d) < 1:
		return fmt.Sprintf("%.2g%%", math.Round(100*n/d))
	default:
		return fmt.Sprintf("%.2gx", n/d)
	}
}

func formatSummary(s *benchmath.Summary, class benchunit.Class) string {
	var center string
	switch {
	case math.Abs(s.Center) > 0.0001 && math.Abs(s.Center) < 1:
		center = fmt.Sprintf("%.3f", s.Center)
	case math.Abs(s.Center) >= 1000 && math.Abs(s.Center) < 10000:
		center = fmt.Sprintf("%.0f", s.Center)
	default:
		center = benchunit.Scale(s.Center, class)
	}
	plus := formatRatio(s.Hi-s.Center, s.Center)
	minus := formatRatio(s.Center-s.Lo, s.Center)
	switch plus {
	case minus:
		return fmt.Sprintf("%s\n+/-\n%s", center, plus)
	default:
		return fmt.Sprintf("%s\n+%s\n-%s", center, plus, minus)
	}
}
