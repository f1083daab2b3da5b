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

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/gravity"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrMalformed = errors.New("storage: malformed trajectory file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type BodyMeta struct {
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Timestamp     time.Time          `json:"timestamp"`
	G             float64            `json:"g"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	StepsTaken    int                `json:"steps_taken"`
	Bodies        []BodyMeta         `json:"bodies"`
	Metrics       map[string]float64 `json:"metrics"`
	MomentumDrift float64            `json:"momentum_drift"`
	EnergyDrift   float64            `json:"energy_drift"`
	Error         string             `json:"error,omitempty"`
}

// Track is the recorded history of one body.
type Track struct {
	Body      int
	Times     []float64
	Positions []r3.Vec
}

// Save writes meta and the trajectory of every body in sys under a new run
// directory. meta.ID and meta.Timestamp are filled in. If any write fails the
// run directory is removed.
func (s *Store) Save(meta RunMetadata, sys *gravity.System) (id string, err error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	meta.Timestamp = now
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err = os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	if err = writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err = WriteTrajectoryCSV(csvFile, sys); err != nil {
		return "", err
	}
	if err = csvFile.Close(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// WriteTrajectoryCSV writes one row per body per recorded entry, ordered by
// step then body: time,body,x,y,z.
func WriteTrajectoryCSV(w io.Writer, sys *gravity.System) error {
	tracks := make([]Track, sys.Len())
	for i, b := range sys.Bodies() {
		times, positions := b.Trajectory()
		tracks[i] = Track{Body: i, Times: times, Positions: positions}
	}
	return WriteTracksCSV(w, tracks)
}

func WriteTracksCSV(w io.Writer, tracks []Track) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"time", "body", "x", "y", "z"}); err != nil {
		return err
	}

	n := 0
	for _, tr := range tracks {
		n = max(n, len(tr.Times))
	}

	for k := 0; k < n; k++ {
		for _, tr := range tracks {
			if k >= len(tr.Times) {
				continue
			}
			p := tr.Positions[k]
			row := []string{
				formatFloat(tr.Times[k]),
				strconv.Itoa(tr.Body),
				formatFloat(p.X),
				formatFloat(p.Y),
				formatFloat(p.Z),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectories reads back the tracks saved for runID, indexed by body.
func (s *Store) LoadTrajectories(runID string) ([]Track, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTracksCSV(file)
}

func ReadTracksCSV(r io.Reader) ([]Track, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) < 2 {
		return []Track{}, nil
	}

	var tracks []Track
	for line, record := range records[1:] {
		vals := make([]float64, 5)
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line+2, err)
			}
			vals[j] = v
		}

		body := int(vals[1])
		if body < 0 || float64(body) != vals[1] {
			return nil, fmt.Errorf("%w: line %d: bad body index %q", ErrMalformed, line+2, record[1])
		}
		for len(tracks) <= body {
			tracks = append(tracks, Track{Body: len(tracks)})
		}

		tr := &tracks[body]
		tr.Times = append(tr.Times, vals[0])
		tr.Positions = append(tr.Positions, r3.Vec{X: vals[2], Y: vals[3], Z: vals[4]})
	}

	return tracks, nil
}
