package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sagilyp/lab4/myattacks"
	"github.com/sagilyp/lab4/mysearch"
)

type Result struct {
	OutBits    int
	Iterations uint64
	Passed     time.Duration
	Memory     uint64 // байты
	Stats      mysearch.Stats
	Collisions []myattacks.Collision
}

// printRun - итог одного запуска поиска по отличительным точкам
func printRun(w io.Writer, res Result) {
	st := res.Stats
	fmt.Fprintf(w, "  probes:          %s\n", humanize.Comma(int64(st.Probes)))
	fmt.Fprintf(w, "  steps:           %s\n", humanize.Comma(int64(st.Steps)))
	fmt.Fprintf(w, "  collisions:      %d (%d accepted, %d repeated)\n", st.Collisions, st.Satisfied, st.Duplicates)
	fmt.Fprintf(w, "  false positives: %s\n", humanize.Comma(int64(st.FalsePositives)))
	fmt.Fprintf(w, "  exhausted:       %s\n", humanize.Comma(int64(st.Exhausted)))
	fmt.Fprintf(w, "  elapsed:         %s\n", st.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  dictionary:      %s\n", humanize.IBytes(st.DictBytes))
}

// writeCollisions сохраняет не больше limit коллизий в файл.
func writeCollisions(path string, colls []myattacks.Collision, limit int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create collisions file: %w", err)
	}
	defer f.Close()
	for i, c := range colls {
		if i == limit {
			break
		}
		fmt.Fprintf(f, "Collision %d: %s = %s -> %s\n", i+1, c.X, c.Y, c.Image)
	}
	return f.Close()
}

// plotCombinedResults строит график и сохраняет его в файл.
func plotCombinedResults(title, xLabel, yLabel, filename string, series ...interface{}) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	// series должна быть вида: "Лейбл1", pts1, "Лейбл2", pts2, ...
	if err := plotutil.AddLinePoints(p, series...); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

func points(results []Result, y func(Result) float64) plotter.XYs {
	pts := make(plotter.XYs, len(results))
	for i, res := range results {
		pts[i].X = float64(res.OutBits)
		pts[i].Y = y(res)
	}
	return pts
}

// perCollision делит величину на число найденных коллизий
func perCollision(v float64, res Result) float64 {
	if len(res.Collisions) == 0 {
		return 0
	}
	return v / float64(len(res.Collisions))
}

// plotResults: время на коллизию, память, шаги на коллизию.
// bResults может быть пустым, если наивная атака не запускалась.
func plotResults(dir string, target int, bResults, pResults []Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	series := func(y func(Result) float64) []interface{} {
		var s []interface{}
		if len(bResults) > 0 {
			s = append(s, "Birthday Attack", points(bResults, y))
		}
		return append(s, "Pollard Attack", points(pResults, y))
	}
	timeMs := func(res Result) float64 {
		return perCollision(float64(res.Passed.Microseconds())/1000, res)
	}
	memory := func(res Result) float64 { return float64(res.Memory) }
	steps := func(res Result) float64 { return perCollision(float64(res.Iterations), res) }

	plots := []struct {
		title, yLabel, file string
		y                   func(Result) float64
	}{
		{"Time vs Output Bits", "Time per collision (ms)", "time_cmp.png", timeMs},
		{"Memory vs Output Bits", "Memory (bytes)", "memory_cmp.png", memory},
		{"Work vs Output Bits", "Evaluations per collision", "steps_cmp.png", steps},
	}
	for _, pl := range plots {
		title := fmt.Sprintf("%s (%d collisions)", pl.title, target)
		err := plotCombinedResults(title, "Output Bits", pl.yLabel, filepath.Join(dir, pl.file), series(pl.y)...)
		if err != nil {
			return fmt.Errorf("plot %s: %w", pl.file, err)
		}
	}
	return nil
}
