package report

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/redsum/redsum/internal/checkpoint"
)

const (
	histogramBins = 20

	colorPosts    = "#5470c6"
	colorComments = "#91cc75"
)

// ErrNoSamples indicates neither reservoir holds any sampled lengths.
var ErrNoSamples = errors.New("no sampled lengths to plot")

// RenderPlot writes an HTML page with a body-length histogram built from
// the sampled reservoirs. Bin bounds are shared across both series so the
// bars line up.
func RenderPlot(w io.Writer, state *checkpoint.State) error {
	posts := state.Metrics.PostLengthSample.Items
	comments := state.Metrics.CommentLengthSample.Items

	if len(posts) == 0 && len(comments) == 0 {
		return ErrNoSamples
	}

	lo, hi := sampleBounds(posts, comments)
	labels := binLabels(lo, hi)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Body Length Distribution",
			Subtitle: "Reservoir-sampled body lengths per content kind",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Length (chars)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sampled rows"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(labels)

	if len(posts) > 0 {
		bar.AddSeries("Posts", histogramData(posts, lo, hi),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPosts}))
	}

	if len(comments) > 0 {
		bar.AddSeries("Comments", histogramData(comments, lo, hi),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorComments}))
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func sampleBounds(series ...[]float64) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)

	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	if hi == lo {
		hi = lo + 1
	}

	return lo, hi
}

func binLabels(lo, hi float64) []string {
	width := (hi - lo) / histogramBins

	labels := make([]string, histogramBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.0f", lo+width*float64(i))
	}

	return labels
}

func histogramData(samples []float64, lo, hi float64) []opts.BarData {
	width := (hi - lo) / histogramBins

	counts := make([]int, histogramBins)

	for _, v := range samples {
		bin := int((v - lo) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}

		counts[bin]++
	}

	data := make([]opts.BarData, histogramBins)
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}

	return data
}
