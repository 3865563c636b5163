// Package chart renders the trilemma view as an interactive go-echarts 3D
// line chart: the generic vector in red and the ideal vector in blue, both
// drawn from the origin inside a [0, 10] cube.
package chart

import (
	"bytes"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Series names and colours of the two plotted vectors.
const (
	GenericSeries = "Generic vector"
	IdealSeries   = "Ideal vector"
	GenericColor  = "red"
	IdealColor    = "blue"
	LineWidth     = 5

	AxisXName = "Energy Equity - x"
	AxisYName = "Energy Security - y"
	AxisZName = "Environmental - z"

	AxisMin = 0
	AxisMax = 10

	// DefaultAssetsHost serves echarts and echarts-gl.
	DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

var assetFiles = []string{"echarts.min.js", "echarts-gl.min.js"}

// Options sizes the chart.
type Options struct {
	Width  string `mapstructure:"width"`
	Height string `mapstructure:"height"`
	// AssetsHost overrides the echarts JS CDN, e.g. for offline deployments.
	AssetsHost string `mapstructure:"assets_host"`
}

func (o Options) withDefaults() Options {
	if o.Width == "" {
		o.Width = "900px"
	}
	if o.Height == "" {
		o.Height = "800px"
	}
	if o.AssetsHost == "" {
		o.AssetsHost = DefaultAssetsHost
	}
	return o
}

// Assets lists the script URLs an embedding page must load before a Snippet.
func Assets(o Options) []string {
	host := o.withDefaults().AssetsHost
	out := make([]string, len(assetFiles))
	for i, f := range assetFiles {
		out[i] = host + f
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

// segment is a vector drawn from the origin to its tip.
func segment(p dashboard.Point) []opts.Chart3DData {
	return []opts.Chart3DData{
		{Value: []interface{}{0, 0, 0}},
		{Value: []interface{}{p.X, p.Y, p.Z}},
	}
}

// Build creates the chart for vm.
func Build(vm *dashboard.ViewModel, o Options) *charts.Line3D {
	o = o.withDefaults()

	line := charts.NewLine3D()
	initOpts := opts.Initialization{
		PageTitle:  vm.Title,
		Width:      o.Width,
		Height:     o.Height,
		AssetsHost: o.AssetsHost,
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: vm.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: AxisXName, Min: AxisMin, Max: AxisMax}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: AxisYName, Min: AxisMin, Max: AxisMax}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: AxisZName, Min: AxisMin, Max: AxisMax}),
	)

	line.AddSeries(GenericSeries, segment(vm.Generic),
		charts.WithLineStyleOpts(opts.LineStyle{Color: GenericColor, Width: LineWidth}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: GenericColor}),
	)
	line.AddSeries(IdealSeries, segment(vm.Ideal),
		charts.WithLineStyleOpts(opts.LineStyle{Color: IdealColor, Width: LineWidth}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: IdealColor}),
	)
	return line
}

// RenderPage writes a standalone HTML page holding only the chart.
func RenderPage(w io.Writer, vm *dashboard.ViewModel, o Options) error {
	if err := Build(vm, o).Render(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to render chart page")
	}
	return nil
}

// Snippet is a chart fragment ready to embed in another page.
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

// HTML joins element and script.
func (s Snippet) HTML() template.HTML {
	return s.Element + "\n" + s.Script
}

// RenderSnippet returns the chart's element and script for embedding.
func RenderSnippet(vm *dashboard.ViewModel, o Options) Snippet {
	snip := Build(vm, o).RenderSnippet()
	return Snippet{
		Element: template.HTML(snip.Element),
		Script:  template.HTML(snip.Script),
	}
}

// RenderBytes renders the standalone page into memory.
func RenderBytes(vm *dashboard.ViewModel, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, vm, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//Personal.AI order the ending
