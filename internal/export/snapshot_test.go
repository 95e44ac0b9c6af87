package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/telemetry"
)

func frame(xs, ys []float64) telemetry.Frame {
	return telemetry.Frame{
		Seq:  9,
		Axis: telemetry.SampleIndex,
		Series: []telemetry.Series{{
			Channel: servo.ErrDemod,
			X:       xs,
			Y:       ys,
			XLim:    telemetry.Fixed(xs[0], xs[len(xs)-1]),
			YLim:    telemetry.Fixed(-1, 1),
		}},
	}
}

func TestSnapshotWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live", "snap.png")
	s := NewSnapshot(path)

	require.NoError(t, s.Draw(frame([]float64{0, 1, 2}, []float64{-1, 0, 1})))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Equal(t, 1, s.Frames())

	require.NoError(t, s.Draw(frame([]float64{1, 2, 3}, []float64{0, 1, 0})))
	assert.Equal(t, 2, s.Frames())
}

func TestSnapshotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.svg")
	require.NoError(t, NewSnapshot(path).Draw(frame([]float64{0, 1}, []float64{0, 1})))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestSnapshotWaitsForTwoPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.png")
	s := NewSnapshot(path)
	require.NoError(t, s.Draw(frame([]float64{0}, []float64{0.5})))
	assert.Equal(t, 0, s.Frames())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildChartWidensFlatRange(t *testing.T) {
	f := frame([]float64{0, 1}, []float64{2, 2})
	f.Series[0].YLim = telemetry.Fixed(2, 2)
	ch, ok := buildChart(f)
	require.True(t, ok)
	r := ch.YAxis.Range.(*chart.ContinuousRange)
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 3.0, r.Max)
}
