package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// RunRecord is the outcome of the most recent capture run.
type RunRecord struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Success    bool      `json:"success"`
	Browser    string    `json:"browser,omitempty"`
	CPUs       int       `json:"cpus,omitempty"`
	OutputPath string    `json:"outputPath,omitempty"`
	Login      string    `json:"login,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (r RunRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func SaveRunRecord(path string, record RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

func LoadRunRecord(path string) (*RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var record RunRecord
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}
