// 包 控制台输出，将定价结果渲染为表格
package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/wyfcoding/binomialpricing/internal/lattice/application"
	"github.com/wyfcoding/binomialpricing/internal/lattice/domain"
)

// Renderer 定价结果渲染器
type Renderer struct {
	w            io.Writer
	precision    int
	displaySteps int
}

// NewRenderer 创建渲染器
// displaySteps: 步数不超过该值时打印完整的三棵树，否则只打印期权价值树的逐层摘要
func NewRenderer(w io.Writer, precision, displaySteps int) *Renderer {
	return &Renderer{w: w, precision: precision, displaySteps: displaySteps}
}

// Render 输出一次定价结果
func (r *Renderer) Render(res *application.LatticePricingResult) error {
	if _, err := fmt.Fprintf(r.w, "%s %s %s  steps=%d  fair value=%s  run=%s\n\n",
		res.Symbol, res.OptionStyle, res.OptionType, res.Steps, res.FairValue.String(), res.RunID); err != nil {
		return err
	}

	if res.Steps > r.displaySteps {
		return r.renderSummary("Option value", res.Lattices.Value)
	}

	sections := []struct {
		title   string
		lattice *domain.Lattice
	}{
		{"Stock price", res.Lattices.Stock},
		{"Payoff", res.Lattices.Payoff},
		{"Option value", res.Lattices.Value},
	}
	for _, sec := range sections {
		if err := r.renderLattice(sec.title, sec.lattice); err != nil {
			return err
		}
	}
	return nil
}

// renderLattice 每层一行，列为下跌次数 j
func (r *Renderer) renderLattice(title string, l *domain.Lattice) error {
	if _, err := fmt.Fprintf(r.w, "%s:\n", title); err != nil {
		return err
	}

	n := l.Steps()
	header := make([]string, 0, n+2)
	header = append(header, "i")
	for j := 0; j <= n; j++ {
		header = append(header, "j="+strconv.Itoa(j))
	}

	table := tablewriter.NewWriter(r.w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := 0; i <= n; i++ {
		row := make([]string, n+2)
		row[0] = strconv.Itoa(i)
		for j, v := range l.Layer(i) {
			row[j+1] = r.format(v)
		}
		table.Append(row)
	}
	table.Render()

	_, err := fmt.Fprintln(r.w)
	return err
}

// renderSummary 打印每层的最小值、最大值与均值
func (r *Renderer) renderSummary(title string, l *domain.Lattice) error {
	if _, err := fmt.Fprintf(r.w, "%s (per layer summary):\n", title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(r.w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"i", "nodes", "min", "max", "mean"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := 0; i <= l.Steps(); i++ {
		s, err := summarize(l.Layer(i))
		if err != nil {
			return fmt.Errorf("summarize layer %d: %w", i, err)
		}
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(i + 1),
			r.format(s.min),
			r.format(s.max),
			r.format(s.mean),
		})
	}
	table.Render()
	return nil
}

type layerSummary struct {
	min, max, mean float64
}

func summarize(layer []float64) (layerSummary, error) {
	data := stats.Float64Data(layer)
	var s layerSummary
	var err error
	if s.min, err = data.Min(); err != nil {
		return s, err
	}
	if s.max, err = data.Max(); err != nil {
		return s, err
	}
	if s.mean, err = data.Mean(); err != nil {
		return s, err
	}
	return s, nil
}

func (r *Renderer) format(v float64) string {
	return strconv.FormatFloat(v, 'f', r.precision, 64)
}
