package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/inertia/internal/config"
	"github.com/san-kum/inertia/internal/sim"
	"go.uber.org/zap"
)

const (
	metadataFile = "metadata.json"
	timelineFile = "timeline.csv"
)

type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Config     *config.Config     `json:"config"`
	Params     map[string]float64 `json:"params"`
	Seconds    float64            `json:"seconds"`
	DurationMs float64            `json:"duration_ms"`
	Samples    int                `json:"samples"`
	Done       bool               `json:"done"`
	Final      float64            `json:"final"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run's metadata and its sampled timeline.
func (s *Store) Save(name string, cfg *config.Config, params map[string]float64, tl *sim.Timeline) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Config:     cfg,
		Params:     params,
		Seconds:    tl.Seconds(),
		DurationMs: tl.Duration,
		Samples:    tl.Len(),
		Done:       tl.Done,
		Final:      tl.Final(),
		Metrics:    tl.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTimeline(filepath.Join(runDir, timelineFile), tl); err != nil {
		return "", err
	}

	s.logger.Debug("run saved", zap.String("id", runID), zap.Int("samples", tl.Len()))
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTimeline(path string, tl *sim.Timeline) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time_ms", "value", "velocity"}); err != nil {
		return err
	}
	for i := range tl.Values {
		row := []string{
			strconv.FormatFloat(tl.Times[i], 'g', -1, 64),
			strconv.FormatFloat(tl.Values[i], 'g', -1, 64),
			strconv.FormatFloat(tl.Velocities[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Unreadable run directories are
// skipped.
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
			s.logger.Debug("skipping run", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTimeline reads the sampled timeline back. Full float precision is
// preserved.
func (s *Store) LoadTimeline(runID string) (*sim.Timeline, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, timelineFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}

	tl := &sim.Timeline{Metrics: make(map[string]float64)}
	if len(records) < 2 {
		return tl, nil
	}

	for i, record := range records[1:] {
		var vals [3]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		tl.Times = append(tl.Times, vals[0])
		tl.Values = append(tl.Values, vals[1])
		tl.Velocities = append(tl.Velocities, vals[2])
	}
	tl.Duration = tl.Times[len(tl.Times)-1]

	if meta, err := s.Load(runID); err == nil {
		tl.Done = meta.Done
		tl.Metrics = meta.Metrics
	}

	return tl, nil
}
