package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/drivesim/internal/sim"
)

type ExportData struct {
	Preset   string             `json:"preset"`
	FixedDt  float64            `json:"fixed_dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Samples  []sim.Sample       `json:"samples"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as a single self-contained JSON document.
func ExportJSON(w io.Writer, preset string, fixedDt, duration float64, result *sim.Result) error {
	data := ExportData{
		Preset:   preset,
		FixedDt:  fixedDt,
		Duration: duration,
		Steps:    result.FixedSteps,
		Samples:  result.Samples,
		Metrics:  result.Metrics,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportFile is ExportJSON to a new file at path.
func ExportFile(path, preset string, fixedDt, duration float64, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, preset, fixedDt, duration, result)
}
