// Package source supplies the records a dashboard evaluates on each refresh.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dashwatch/internal/models"
)

// Source returns the current batch of records, in display order.
type Source interface {
	Records(ctx context.Context) ([]models.Record, error)
}

// StaticSource serves a fixed batch of records.
type StaticSource struct {
	records []models.Record
}

func NewStaticSource(records []models.Record) *StaticSource {
	return &StaticSource{records: cloneRecords(records)}
}

func (s *StaticSource) Records(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRecords(s.records), nil
}

// FileSource reads a JSON array of records from disk on every call.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Records(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadRecordsFile(f.Path)
}

// LoadRecordsFile parses a JSON array of records.
func LoadRecordsFile(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", path, err)
	}
	return records, nil
}

func cloneRecords(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.Metrics != nil {
			out[i].Metrics = make(map[string]float64, len(r.Metrics))
			for k, v := range r.Metrics {
				out[i].Metrics[k] = v
			}
		}
		if r.Attributes != nil {
			out[i].Attributes = make(map[string]string, len(r.Attributes))
			for k, v := range r.Attributes {
				out[i].Attributes[k] = v
			}
		}
	}
	return out
}
