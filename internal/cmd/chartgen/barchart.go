// Derived from https://github.com/gonum/plot/blob/v0.16.0/plotter/barchart.go:
// Copyright ©2015 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// barChart draws one series of vertical bars with error bars and a text label
// above each bar. Several barCharts sharing the same X values are drawn as
// groups by giving each a different Offset.
type barChart struct {
	// The X location and height (Y) of each bar.
	Bars plotter.XYs

	Errors plotter.YErrors

	Labels []string

	LabelOffsets []vg.Point

	Width vg.Length

	Color color.Color

	// LineStyle is the style of the outline of the bars.
	draw.LineStyle

	ErrorStyle draw.LineStyle

	LabelStyle text.Style

	// Offset is added to the X location of each bar.
	Offset vg.Length
}

// newBarChart returns a bar chart with a bar for each point. Error bars and
// labels are taken from bars if it implements plotter.YErrorer or
// plotter.Labeller.
func newBarChart(bars plotter.XYer, width vg.Length) (*barChart, error) {
	if width <= 0 {
		return nil, errors.New("plotter: width parameter was not positive")
	}
	barsCopy, err := plotter.CopyXYs(bars)
	if err != nil {
		return nil, err
	}
	var yerrsCopy plotter.YErrors
	if yerrs, ok := bars.(plotter.YErrorer); ok {
		yerrsCopy = make(plotter.YErrors, bars.Len())
		for i := range yerrsCopy {
			yerrsCopy[i].Low, yerrsCopy[i].High = yerrs.YError(i)
		}
	}
	var labelsCopy []string
	if labels, ok := bars.(plotter.Labeller); ok {
		labelsCopy = make([]string, bars.Len())
		for i := range labelsCopy {
			labelsCopy[i] = labels.Label(i)
		}
	}
	return &barChart{
		Bars:       barsCopy,
		Errors:     yerrsCopy,
		Labels:     labelsCopy,
		Width:      width,
		Color:      color.Black,
		LineStyle:  plotter.DefaultLineStyle,
		ErrorStyle: plotter.DefaultLineStyle,
		LabelStyle: text.Style{
			Font:    font.From(plotter.DefaultFont, plotter.DefaultFontSize),
			Handler: plot.DefaultTextHandler,
		},
	}, nil
}

// Plot implements the plot.Plotter interface.
func (b *barChart) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for i, bar := range b.Bars {
		x := trX(bar.X)
		if !c.ContainsX(x) {
			continue
		}
		x += b.Offset
		xMin := x - b.Width/2
		xMax := xMin + b.Width
		yMin := trY(0)
		yMax := trY(bar.Y)

		pts := []vg.Point{
			{X: xMin, Y: yMin},
			{X: xMin, Y: yMax},
			{X: xMax, Y: yMax},
			{X: xMax, Y: yMin},
		}
		c.FillPolygon(b.Color, c.ClipPolygonY(pts))

		pts = append(pts, vg.Point{X: xMin, Y: yMin})
		c.StrokeLines(b.LineStyle, c.ClipLinesY(pts)...)

		high := yMax
		if len(b.Errors) > 0 {
			e := b.Errors[i]
			low := trY(bar.Y - math.Abs(e.Low))
			high = trY(bar.Y + math.Abs(e.High))

			c.StrokeLines(b.ErrorStyle, c.ClipLinesY([]vg.Point{{X: x, Y: low}, {X: x, Y: high}})...)
			drawCap := func(y vg.Length) {
				c.StrokeLine2(b.ErrorStyle, x-b.Width/4, y, x+b.Width/4, y)
			}
			drawCap(low)
			drawCap(high)
		}

		if len(b.Labels) > 0 {
			var offset vg.Point
			if len(b.LabelOffsets) > 0 {
				offset = b.LabelOffsets[i]
			}
			c.FillText(b.LabelStyle, vg.Point{X: x + offset.X, Y: high + offset.Y}, b.Labels[i])
		}
	}
}

// DataRange implements the plot.DataRanger interface.
func (b *barChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for i, bar := range b.Bars {
		xmin = math.Min(xmin, bar.X)
		xmax = math.Max(xmax, bar.X)

		bot, top := 0.0, bar.Y
		if len(b.Errors) > 0 {
			bot = math.Min(bot, top-math.Abs(b.Errors[i].Low))
			top += math.Abs(b.Errors[i].High)
		}
		ymin = math.Min(ymin, math.Min(bot, top))
		ymax = math.Max(ymax, math.Max(bot, top))
	}
	return xmin, xmax, ymin, ymax
}

// GlyphBoxes implements the plot.GlyphBoxer interface.
func (b *barChart) GlyphBoxes(plt *plot.Plot) []plot.GlyphBox {
	boxes := make([]plot.GlyphBox, len(b.Bars)+len(b.Labels))
	for i, bar := range b.Bars {
		boxes[i].X = plt.X.Norm(bar.X)
		boxes[i].Rectangle = vg.Rectangle{
			Min: vg.Point{X: b.Offset - b.Width/2},
			Max: vg.Point{X: b.Offset + b.Width/2},
		}
	}

	for i, label := range b.Labels {
		box := &boxes[len(b.Bars)+i]
		labelRect := b.LabelStyle.Rectangle(label)
		var offset vg.Point
		if len(b.LabelOffsets) > 0 {
			offset = b.LabelOffsets[i]
		}
		*box = boxes[i]
		box.Min.X += offset.X
		box.Max.X += offset.X
		box.Min.Y += offset.Y
		box.Max.Y += offset.Y
		box.Y = plt.Y.Norm(b.Bars[i].Y)
		box.Max.Y += labelRect.Max.Y
	}
	return boxes
}

// Thumbnail implements the plot.Thumbnailer interface.
func (b *barChart) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.Color, c.ClipPolygonY(pts))

	pts = append(pts, vg.Point{X: c.Min.X, Y: c.Min.Y})
	c.StrokeLines(b.LineStyle, c.ClipLinesY(pts)...)
}
