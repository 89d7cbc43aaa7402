package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
)

const (
	metadataFile    = "metadata.json"
	seriesFile      = "series.csv"
	fluctuationFile = "fluctuation.csv"
)

const (
	KindSynth    = "synth"
	KindAnalysis = "analysis"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Exponent is the fitted h(q) of a stored analysis, or the reason it could
// not be fitted.
type Exponent struct {
	Q         float64 `json:"q"`
	H         float64 `json:"h"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	Error     string  `json:"error,omitempty"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
	N         int       `json:"n"`
	Hurst     float64   `json:"hurst,omitempty"`
	Seed      int64     `json:"seed,omitempty"`

	Scales     []int            `json:"scales,omitempty"`
	Moments    []float64        `json:"moments,omitempty"`
	PolyOrder  int              `json:"order"`
	FitRange   fractal.FitRange `json:"fit_range"`
	Exponents  []Exponent       `json:"exponents,omitempty"`
	PairErrors []string         `json:"pair_errors,omitempty"`
}

// NewMetadata describes a run of the given kind. When res is non-nil the
// analysis fields are filled from it.
func NewMetadata(kind, origin string, n int, res *mfdfa.Result) RunMetadata {
	meta := RunMetadata{Kind: kind, Origin: origin, N: n}
	if res == nil {
		return meta
	}

	meta.Scales = res.ScalesUsed
	meta.Moments = res.Moments()
	meta.PolyOrder = res.Params.PolyOrder
	meta.FitRange = res.Params.FitRange

	for _, q := range res.Params.Moments {
		e := Exponent{Q: q}
		if line, ok := res.Fits[q]; ok {
			e.H, e.Intercept, e.RSquared = line.Slope, line.Intercept, line.RSquared
		} else if err := res.ExponentErrors[q]; err != nil {
			e.Error = err.Error()
		}
		meta.Exponents = append(meta.Exponents, e)
	}
	sort.Slice(meta.Exponents, func(i, j int) bool { return meta.Exponents[i].Q < meta.Exponents[j].Q })

	for _, pe := range res.PairErrors {
		meta.PairErrors = append(meta.PairErrors, pe.Error())
	}
	return meta
}

// Save writes a new run directory and returns its id. res may be nil for a
// synthesized series that has not been analysed.
func (s *Store) Save(meta RunMetadata, series fractal.Series, res *mfdfa.Result) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeRun(runDir, meta, series, res); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, series fractal.Series, res *mfdfa.Result) error {
	if err := writeJSONFile(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(runDir, seriesFile), func(f *os.File) error {
		return WriteSeriesCSV(f, series)
	}); err != nil {
		return err
	}

	if res == nil {
		return nil
	}
	return writeFile(filepath.Join(runDir, fluctuationFile), func(f *os.File) error {
		return WriteFluctuationCSV(f, Records(res))
	})
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

		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].Timestamp.Before(runs[j].Timestamp)
		}
		return runs[i].ID < runs[j].ID
	})

	return runs, nil
}

// Resolve expands a unique id prefix to a full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("empty run id: %w", ErrRunNotFound)
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, prefix, metadataFile)); err == nil {
		return prefix, nil
	}

	runs, err := s.List()
	if err != nil {
		return "", err
	}

	var match string
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("run id %q is ambiguous", prefix)
		}
		match = r.ID
	}
	if match == "" {
		return "", fmt.Errorf("%s: %w", prefix, ErrRunNotFound)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	return s.readMetadata(id)
}

func (s *Store) readMetadata(runID string) (*RunMetadata, error) {
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

func (s *Store) LoadSeries(runID string) (fractal.Series, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, id, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSeriesCSV(file, "value")
}

// LoadFluctuation returns the stored F_q(s) records of a run. A synth run
// has none and yields an empty slice.
func (s *Store) LoadFluctuation(runID string) ([]Record, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, id, fluctuationFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}
	defer file.Close()

	return ReadFluctuationCSV(file)
}

func writeJSONFile(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, write func(*os.File) error) error {
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
