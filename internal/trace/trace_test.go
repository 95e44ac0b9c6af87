package trace

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stabctl/internal/servo"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFirstColumn(t *testing.T) {
	path := writeFile(t, "-10,1,2\n-5\n0,ignored\n\n")

	tr, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{-10, -5, 0}, tr.Values)
	assert.Equal(t, path, tr.Path)
}

func TestLoadRejectsBlankRow(t *testing.T) {
	tests := []struct {
		name string
		body string
		line int
	}{
		{"interior", "-10\n\n-5\n0\n", 2},
		{"leading", "\n-10\n-5\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.body), "data.csv")
			assert.ErrorIs(t, err, servo.ErrParse)

			var perr *servo.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestLoadNonNumeric(t *testing.T) {
	path := writeFile(t, "1.5\n2.5\nabc\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, servo.ErrParse)

	var perr *servo.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, "abc", perr.Text)
}

func TestLoadRejectsNonFinite(t *testing.T) {
	_, err := Load(writeFile(t, "1\nNaN\n"))
	assert.ErrorIs(t, err, servo.ErrParse)
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(writeFile(t, ""))
	assert.ErrorIs(t, err, servo.ErrParse)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, servo.ErrParse))
}

func TestFrequencyAxis(t *testing.T) {
	assert.Equal(t, []float64{10, 10005, 20000}, FrequencyAxis(10, 20000, 3))
	assert.Equal(t, []float64{10}, FrequencyAxis(10, 20000, 1))

	xs := FrequencyAxis(DefaultFreqMin, DefaultFreqMax, 1000)
	require.Len(t, xs, 1000)
	assert.Equal(t, DefaultFreqMin, xs[0])
	assert.Equal(t, DefaultFreqMax, xs[999])
	for i := 1; i < len(xs); i++ {
		assert.Greater(t, xs[i], xs[i-1])
	}
}

type captureChart struct {
	out    string
	xs, ys []float64
	labels Labels
}

func (c *captureChart) Draw(out string, xs, ys []float64, labels Labels) error {
	c.out, c.xs, c.ys, c.labels = out, xs, ys, labels
	return nil
}

func TestRendererPairsAxisWithTrace(t *testing.T) {
	chart := &captureChart{}
	r := NewRenderer()
	r.Chart = chart

	_, err := r.Render(writeFile(t, "-10\n-5\n0\n"), "out.png")
	require.NoError(t, err)
	assert.Equal(t, "out.png", chart.out)
	assert.Equal(t, []float64{10, 10005, 20000}, chart.xs)
	assert.Equal(t, []float64{-10, -5, 0}, chart.ys)
	assert.Equal(t, "Transfer Function", chart.labels.Title)
	assert.Equal(t, "Frequency (Hz)", chart.labels.X)
	assert.Equal(t, "Power (dB)", chart.labels.Y)
	assert.True(t, chart.labels.Grid)
}

func TestRendererStopsOnParseError(t *testing.T) {
	chart := &captureChart{}
	r := NewRenderer()
	r.Chart = chart

	_, err := r.Render(writeFile(t, "x\n"), "out.png")
	assert.ErrorIs(t, err, servo.ErrParse)
	assert.Empty(t, chart.out)
}

func TestRendererPreview(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer()
	r.Preview = &buf

	_, err := r.Render(writeFile(t, "-3\n-1\n-2\n-6\n"), "")
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), Title))
}

func TestPlotChartWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plots", "tf.png")
	err := NewPlotChart().Draw(out, []float64{10, 100, 1000}, []float64{-3, -6, -20}, DefaultLabels())
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotChartRejectsMismatch(t *testing.T) {
	err := NewPlotChart().Draw("x.png", []float64{1, 2}, []float64{1}, DefaultLabels())
	assert.Error(t, err)
}
