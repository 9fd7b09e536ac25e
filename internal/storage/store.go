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

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
)

var (
	// ErrRunNotFound indicates no run directory exists for the given id.
	ErrRunNotFound = errors.New("storage: run not found")

	// ErrEmptyTrace indicates a run has no recorded ticks.
	ErrEmptyTrace = errors.New("storage: trace is empty")
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// Store keeps metric traces of headless runs, one directory per run.
// Particle state is never written.
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
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Ticks     int                `json:"ticks"`
	FPS       int                `json:"fps"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Sim       config.Sim         `json:"sim"`
	Columns   []string           `json:"columns"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and trace.csv for a finished run and returns
// the run id.
func (s *Store) Save(label string, cfg config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Seed:      cfg.Run.Seed,
		Ticks:     result.Ticks,
		FPS:       cfg.Run.FPS,
		Width:     cfg.Run.Width,
		Height:    cfg.Run.Height,
		Sim:       cfg.Sim,
		Columns:   result.Columns,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTraceCSV(csvFile, result.Columns, result.Trace); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteTraceCSV writes a tick column followed by one column per metric.
func WriteTraceCSV(out io.Writer, columns []string, trace [][]float64) error {
	w := csv.NewWriter(out)

	header := append([]string{"tick"}, columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range trace {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.Itoa(i))
		for _, val := range row {
			record = append(record, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads the metric columns and rows of a run, without the tick
// column.
func (s *Store) LoadTrace(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyTrace
	}

	columns := records[0][1:]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// Column extracts a named series from rows returned by LoadTrace.
func Column(columns []string, rows [][]float64, name string) ([]float64, error) {
	for i, c := range columns {
		if c != name {
			continue
		}
		out := make([]float64, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				out = append(out, row[i])
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("storage: unknown column %q (available: %v)", name, columns)
}
