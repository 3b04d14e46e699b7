package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haskel/phasepower/internal/measure"
	"github.com/haskel/phasepower/internal/monitor"
	"github.com/haskel/phasepower/internal/pipeline"
)

var (
	ErrNotFound     = errors.New("no stored data")
	ErrIncompatible = errors.New("stored data is incompatible")
)

const (
	currentVersion = 1
	dataFileName   = "phasepower_data.json"
)

// Dataset is the persisted, uncleaned measurement table of one processing
// run together with its provenance.
type Dataset struct {
	Version       int               `json:"version"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Domain        measure.Domain    `json:"domain"`
	Iterations    int               `json:"iterations"`
	Sentinel      float64           `json:"sentinel"`
	KnownConfigs  []string          `json:"known_configs"`
	MaxIterations int               `json:"max_iterations"`
	Stats         pipeline.Stats    `json:"stats"`
	Host          *monitor.HostInfo `json:"host,omitempty"`
	Cells         []CellData        `json:"cells"`
}

// CellData is one table cell.
type CellData struct {
	Key      measure.Key `json:"key"`
	Loadtime []float64   `json:"loadtime"`
	Energy   []float64   `json:"energy"`
}

// NewDataset captures a table for persistence.
func NewDataset(tbl *measure.Table, ds *pipeline.Dataset, stats pipeline.Stats, host *monitor.HostInfo) *Dataset {
	d := &Dataset{
		Version:    currentVersion,
		Domain:     tbl.Domain(),
		Iterations: tbl.Iterations(),
		Sentinel:   tbl.Sentinel(),
		Stats:      stats,
		Host:       host,
	}
	if ds != nil {
		d.KnownConfigs = ds.KnownConfigs
		d.MaxIterations = ds.MaxIterations
	}
	tbl.Each(func(k measure.Key, s measure.Series) {
		d.Cells = append(d.Cells, CellData{Key: k, Loadtime: s.Loadtime, Energy: s.Energy})
	})
	return d
}

// Table rebuilds the measurement table.
func (d *Dataset) Table() (*measure.Table, error) {
	tbl, err := measure.NewTable(d.Domain, d.Iterations, d.Sentinel)
	if err != nil {
		return nil, err
	}
	for _, c := range d.Cells {
		if err := tbl.SetSeries(c.Key, measure.Series{Loadtime: c.Loadtime, Energy: c.Energy}); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// Storage persists processed datasets and solutions under one directory.
// Writes go through a temp file and an atomic rename.
type Storage struct {
	dataDir string
	logger  *slog.Logger

	mu sync.Mutex
}

// New creates a new Storage instance.
func New(dataDir string, logger *slog.Logger) *Storage {
	return &Storage{
		dataDir: dataDir,
		logger:  logger,
	}
}

// Dir returns the storage directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// SaveDataset writes the processed dataset.
func (s *Storage) SaveDataset(d *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.Version = currentVersion
	d.UpdatedAt = time.Now()
	return s.writeLocked(dataFileName, d)
}

// LoadDataset reads the processed dataset. A missing file returns
// ErrNotFound; an unreadable or newer-version file returns ErrIncompatible.
func (s *Storage) LoadDataset() (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d Dataset
	if err := s.readLocked(dataFileName, &d); err != nil {
		return nil, err
	}
	if d.Version > currentVersion {
		s.logger.Warn("data file version is newer than supported",
			"file_version", d.Version,
			"supported_version", currentVersion,
		)
		return nil, fmt.Errorf("%w: version %d", ErrIncompatible, d.Version)
	}

	s.logger.Info("loaded data from disk",
		"path", filepath.Join(s.dataDir, dataFileName),
		"cells", len(d.Cells),
	)
	return &d, nil
}

func (s *Storage) readLocked(name string, v any) error {
	filePath := filepath.Join(s.dataDir, name)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		s.logger.Warn("failed to decode data file", "path", filePath, "error", err)
		return fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	return nil
}

func (s *Storage) writeLocked(name string, v any) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath := filepath.Join(s.dataDir, name)
	tempPath := filePath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug("saved data to disk", "path", filePath)
	return nil
}

// FileInfo describes a stored file.
type FileInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (s *Storage) info(name string) FileInfo {
	filePath := filepath.Join(s.dataDir, name)
	info := FileInfo{Path: filePath}

	stat, err := os.Stat(filePath)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}

// DatasetInfo returns information about the stored dataset.
func (s *Storage) DatasetInfo() FileInfo {
	return s.info(dataFileName)
}

// DeleteDataset removes the stored dataset so the next solve reprocesses.
func (s *Storage) DeleteDataset() error {
	filePath := filepath.Join(s.dataDir, dataFileName)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete data file: %w", err)
	}
	return nil
}
