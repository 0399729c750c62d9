package main

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

const (
	seriesLeft      = "left"
	seriesRight     = "right"
	seriesThreshold = "threshold"
)

var seriesColors = map[string]string{
	seriesLeft:      "51",  // cyan
	seriesRight:     "201", // magenta
	seriesThreshold: "241", // grey
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	belowStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// reflectanceChart is a streaming chart of both sensors against the threshold.
type reflectanceChart struct {
	chart     *streamlinechart.Model
	threshold float64
	width     int // terminal width
	height    int // terminal height
	logs      []string
}

func newReflectanceChart(threshold float64) *reflectanceChart {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, 100),
	)
	for _, name := range []string{seriesLeft, seriesRight, seriesThreshold} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return &reflectanceChart{chart: &chart, threshold: threshold}
}

func (c *reflectanceChart) push(left, right float64) {
	c.chart.PushDataSet(seriesLeft, left)
	c.chart.PushDataSet(seriesRight, right)
	if c.threshold > 0 {
		c.chart.PushDataSet(seriesThreshold, c.threshold)
	}
	c.chart.DrawAll()
}

func (c *reflectanceChart) addLog(msg string) {
	c.logs = append(c.logs, msg)
	if len(c.logs) > maxLogs {
		c.logs = c.logs[len(c.logs)-maxLogs:]
	}
}

// size calculates the size of the chart based on terminal dimensions
func (c *reflectanceChart) size() (width, height int) {
	if c.width == 0 || c.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = max(c.width-borderSize-2, 40)
	height = max(c.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func (c *reflectanceChart) resize(width, height int) {
	c.width, c.height = width, height
	c.chart.Resize(c.size())
}

// view renders the chart, the legend and the log box under a header line.
func (c *reflectanceChart) view(header, status, hint string) string {
	var sb strings.Builder

	sb.WriteString(header)
	if c.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", c.width, c.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(c.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend(status))
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(c.width-4, 20))

	logLines := statusStyle.Render(hint)
	if len(c.logs) > 0 {
		logLines = strings.Join(c.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend(status string) string {
	var items []string
	for _, name := range []string{seriesLeft, seriesRight, seriesThreshold} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	if status != "" {
		items = append(items, status)
	}
	return strings.Join(items, "  ")
}
