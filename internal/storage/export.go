package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/stabctl/internal/servo"
)

// ExportData is the JSON form of a capture.
type ExportData struct {
	Metadata CaptureMetadata      `json:"metadata"`
	Seq      []uint64             `json:"seq"`
	Times    []float64            `json:"times_s"`
	Channels map[string][]float64 `json:"channels"`
}

// ExportJSON writes a capture as one JSON document. Missing readings
// become null.
func ExportJSON(w io.Writer, meta CaptureMetadata, samples []servo.Sample) error {
	data := ExportData{
		Metadata: meta,
		Seq:      make([]uint64, len(samples)),
		Times:    make([]float64, len(samples)),
		Channels: make(map[string][]float64, len(meta.Channels)),
	}
	channels, err := meta.ChannelSet()
	if err != nil {
		return err
	}
	for _, ch := range channels {
		data.Channels[string(ch)] = make([]float64, len(samples))
	}
	nulls := make(map[string][]int)
	for i, smp := range samples {
		data.Seq[i] = smp.Seq
		data.Times[i] = smp.Time.Seconds()
		for _, ch := range channels {
			v, ok := smp.Value(ch)
			if !ok {
				nulls[string(ch)] = append(nulls[string(ch)], i)
				continue
			}
			data.Channels[string(ch)][i] = v
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if len(nulls) == 0 {
		return encoder.Encode(data)
	}
	return encoder.Encode(withNulls(data, nulls))
}

// withNulls swaps the dense columns for pointer columns so gaps encode
// as null.
func withNulls(data ExportData, nulls map[string][]int) any {
	cols := make(map[string][]*float64, len(data.Channels))
	for name, vals := range data.Channels {
		col := make([]*float64, len(vals))
		for i := range vals {
			col[i] = &vals[i]
		}
		for _, i := range nulls[name] {
			col[i] = nil
		}
		cols[name] = col
	}
	return struct {
		Metadata CaptureMetadata       `json:"metadata"`
		Seq      []uint64              `json:"seq"`
		Times    []float64             `json:"times_s"`
		Channels map[string][]*float64 `json:"channels"`
	}{data.Metadata, data.Seq, data.Times, cols}
}
