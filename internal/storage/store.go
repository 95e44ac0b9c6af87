// Package storage keeps recorded captures on disk, one directory per
// capture holding metadata.json and samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/stabctl/internal/servo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// CaptureMetadata describes how a capture was taken.
type CaptureMetadata struct {
	ID           string        `json:"id"`
	Device       string        `json:"device"`
	Timestamp    time.Time     `json:"timestamp"`
	SamplingFreq float64       `json:"sampling_freq"`
	BatchSize    int           `json:"batch_size"`
	Frames       int           `json:"frames"`
	Channels     []string      `json:"channels"`
	Kp           float64       `json:"kp"`
	Ki           float64       `json:"ki"`
	Kd           float64       `json:"kd"`
	Taps         [5]float64    `json:"taps"`
	Skipped      uint64        `json:"skipped"`
	Duration     time.Duration `json:"duration_ns"`

	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Channel list as typed values.
func (m CaptureMetadata) ChannelSet() ([]servo.Channel, error) {
	out := make([]servo.Channel, 0, len(m.Channels))
	for _, name := range m.Channels {
		ch, err := servo.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// Save writes a capture and returns its ID. Samples are written in the
// channel order of meta.Channels.
func (s *Store) Save(meta CaptureMetadata, samples []servo.Sample) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Frames = len(samples)
	channels, err := meta.ChannelSet()
	if err != nil {
		return "", err
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	err = writeRunFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}
	err = writeRunFile(filepath.Join(runDir, samplesFile), func(w io.Writer) error {
		return writeSamples(w, channels, samples)
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// writeRunFile creates path and fills it with write. A failed close is
// reported like a failed write, since it can lose buffered data.
func writeRunFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSamples(w io.Writer, channels []servo.Channel, samples []servo.Sample) error {
	cw := csv.NewWriter(w)
	header := []string{"seq", "time_ns"}
	for _, ch := range channels {
		header = append(header, string(ch))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, smp := range samples {
		row[0] = strconv.FormatUint(smp.Seq, 10)
		row[1] = strconv.FormatInt(int64(smp.Time), 10)
		for i, ch := range channels {
			v, ok := smp.Values[ch]
			if !ok {
				row[i+2] = ""
				continue
			}
			row[i+2] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable capture, oldest first.
func (s *Store) List() ([]CaptureMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CaptureMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]CaptureMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*CaptureMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta CaptureMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a capture back. Empty cells are treated as missing
// channels, so a replay reproduces the recorded skips.
func (s *Store) LoadSamples(runID string) ([]servo.Sample, error) {
	path := filepath.Join(s.baseDir, runID, samplesFile)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &servo.ParseError{Path: path, Err: errors.New("missing header")}
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, &servo.ParseError{Path: path, Line: 1, Err: errors.New("short header")}
	}
	channels := make([]servo.Channel, len(header)-2)
	for i, name := range header[2:] {
		if channels[i], err = servo.ParseChannel(name); err != nil {
			return nil, &servo.ParseError{Path: path, Line: 1, Text: name, Err: err}
		}
	}

	samples := make([]servo.Sample, 0)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &servo.ParseError{Path: path, Err: err}
		}
		line, _ := r.FieldPos(0)
		smp, err := parseRow(rec, channels)
		if err != nil {
			return nil, &servo.ParseError{Path: path, Line: line, Err: err}
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseRow(rec []string, channels []servo.Channel) (servo.Sample, error) {
	seq, err := strconv.ParseUint(rec[0], 10, 64)
	if err != nil {
		return servo.Sample{}, err
	}
	ns, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return servo.Sample{}, err
	}
	smp := servo.Sample{Seq: seq, Time: time.Duration(ns), Values: make(map[servo.Channel]float64, len(channels))}
	for i, ch := range channels {
		cell := rec[i+2]
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return servo.Sample{}, fmt.Errorf("channel %s: %w", ch, err)
		}
		smp.Values[ch] = v
	}
	return smp, nil
}
