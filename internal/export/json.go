package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/storage"
)

type ExportData struct {
	ID            string                   `json:"id"`
	Scenario      string                   `json:"scenario"`
	G             float64                  `json:"g"`
	Dt            float64                  `json:"dt"`
	Steps         int                      `json:"steps"`
	Metrics       map[string]storage.Float `json:"metrics"`
	MomentumDrift storage.Float            `json:"momentum_drift"`
	EnergyDrift   storage.Float            `json:"energy_drift"`
	Bodies        []BodyData               `json:"bodies"`
}

type BodyData struct {
	Name      string       `json:"name"`
	Mass      float64      `json:"mass"`
	Times     []float64    `json:"times"`
	Positions [][3]float64 `json:"positions"`
}

// Build merges run metadata with its tracks. Bodies missing from meta are
// exported without a name or mass.
func Build(meta *storage.RunMetadata, tracks []storage.Track) ExportData {
	data := ExportData{
		ID:            meta.ID,
		Scenario:      meta.Scenario,
		G:             meta.G,
		Dt:            meta.Dt,
		Steps:         meta.StepsTaken,
		Metrics:       storage.Floats(meta.Metrics),
		MomentumDrift: storage.Float(meta.MomentumDrift),
		EnergyDrift:   storage.Float(meta.EnergyDrift),
		Bodies:        make([]BodyData, len(tracks)),
	}

	for i, tr := range tracks {
		bd := BodyData{
			Times:     tr.Times,
			Positions: make([][3]float64, len(tr.Positions)),
		}
		if tr.Body < len(meta.Bodies) {
			bd.Name = meta.Bodies[tr.Body].Name
			bd.Mass = meta.Bodies[tr.Body].Mass
		}
		for k, p := range tr.Positions {
			bd.Positions[k] = [3]float64{p.X, p.Y, p.Z}
		}
		data.Bodies[i] = bd
	}

	return data
}

func WriteJSON(w io.Writer, meta *storage.RunMetadata, tracks []storage.Track) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Build(meta, tracks))
}

func ExportJSON(path string, meta *storage.RunMetadata, tracks []storage.Track) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, meta, tracks); err != nil {
		return err
	}
	return file.Close()
}
