package analysis

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Scatter writes a PNG of price against collection order to path.
func Scatter(prices []float64, path string) error {
	if len(prices) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Scatter Plot of Product Price"
	p.X.Label.Text = "Product Index"
	p.Y.Label.Text = "Price ($)"

	pts := make(plotter.XYs, len(prices))
	for i, price := range prices {
		pts[i].X = float64(i)
		pts[i].Y = price
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	s.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	s.GlyphStyle.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), s)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
