package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/util"
)

// ChartComparator renders the learning curve of every agent of every
// experiment as an HTML page. Returns are smoothed with a trailing moving
// average of window episodes.
type ChartComparator struct {
	savePath string
	window   int
}

var _ core.Comparator = &ChartComparator{}

func NewChartComparator(savePath string, window int) *ChartComparator {
	if window < 1 {
		window = 1
	}
	return &ChartComparator{
		savePath: savePath,
		window:   window,
	}
}

func (c *ChartComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	page := components.NewPage()
	page.SetPageTitle("returns")
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*returnDataset)
		if !ok || ds.Episodes == 0 {
			continue
		}
		page.AddCharts(c.lineChart(name, ds))
	}

	if err := os.MkdirAll(c.savePath, 0755); err != nil {
		return
	}
	f, err := os.Create(path.Join(c.savePath, "returns.html"))
	if err != nil {
		return
	}
	defer f.Close()
	page.Render(f)
}

func (c *ChartComparator) lineChart(name string, ds *returnDataset) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    name,
			Subtitle: fmt.Sprintf("moving average over %d episodes", c.window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "return"}),
	)

	episodes := make([]string, ds.Episodes)
	for i := range episodes {
		episodes[i] = strconv.Itoa(i)
	}
	line.SetXAxis(episodes)
	for _, agent := range ds.Agents() {
		smoothed := util.MovingAverage(ds.Returns[agent], c.window)
		items := make([]opts.LineData, len(smoothed))
		for i, v := range smoothed {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(agent, items)
	}
	return line
}

type ChartComparatorConstructor struct {
	savePath string
	window   int
}

var _ core.ComparatorConstructor = &ChartComparatorConstructor{}

func NewChartComparatorConstructor(savePath string, window int) *ChartComparatorConstructor {
	return &ChartComparatorConstructor{
		savePath: savePath,
		window:   window,
	}
}

func (c *ChartComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewChartComparator(path.Join(c.savePath, strconv.Itoa(run)), c.window)
}
