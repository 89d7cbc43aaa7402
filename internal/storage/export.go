package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run         RunMetadata `json:"run"`
	Series      []float64   `json:"series"`
	Fluctuation []Record    `json:"fluctuation"`
}

func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	series, err := s.LoadSeries(meta.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.LoadFluctuation(meta.ID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Series: series, Fluctuation: records}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(data *ExportData) error {
	return encodeJSON(os.Stdout, data)
}

func encodeJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
