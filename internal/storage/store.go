package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/stability"
)

// Store persists runs under a base directory, one subdirectory per run:
// metadata.json plus a samples.csv with the per-step telemetry.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	FixedDt    float64            `json:"fixed_dt"`
	Duration   float64            `json:"duration"`
	FixedSteps int                `json:"fixed_steps"`
	Frames     int                `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
	Stats      stability.Stats    `json:"stability_stats"`
}

var sampleHeader = []string{
	"time", "px", "py", "pz", "vx", "vy", "vz",
	"speed", "updot", "engine", "steer", "brake",
}

func (s *Store) Save(preset string, fixedDt, duration float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     preset,
		Timestamp:  time.Now(),
		FixedDt:    fixedDt,
		Duration:   duration,
		FixedSteps: result.FixedSteps,
		Frames:     result.Frames,
		Metrics:    result.Metrics,
		Stats:      result.Stats,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, smp := range result.Samples {
		row := []string{
			ftoa(smp.Time),
			ftoa(smp.Position.X), ftoa(smp.Position.Y), ftoa(smp.Position.Z),
			ftoa(smp.Velocity.X), ftoa(smp.Velocity.Y), ftoa(smp.Velocity.Z),
			ftoa(smp.Speed), ftoa(smp.UpDot),
			ftoa(smp.Controls.EngineForce), ftoa(smp.Controls.Steering), ftoa(smp.Controls.BrakeForce),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a run's telemetry rows back as raw float columns in
// header order.
func (s *Store) LoadSamples(runID string) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, 0, len(record))
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse sample field %q: %w", field, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
