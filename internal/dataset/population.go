// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/mitchellh/mapstructure"
)

// PopulationMode selects which snapshots LoadPopulation reads.
type PopulationMode string

const (
	// PopulationLatest reads only the most recent snapshot.
	PopulationLatest PopulationMode = "latest"

	// PopulationAll merges every snapshot; later snapshots win per year.
	PopulationAll PopulationMode = "all"
)

// ParsePopulationMode parses a mode name. The empty string is
// PopulationLatest.
func ParsePopulationMode(s string) (PopulationMode, error) {
	switch m := PopulationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", PopulationLatest:
		return PopulationLatest, nil
	case PopulationAll:
		return PopulationAll, nil
	default:
		return "", fmt.Errorf("unknown population mode %q", s)
	}
}

// PopulationRecord is the national population for one year.
type PopulationRecord struct {
	Year       int   `json:"year"`
	Population int64 `json:"population"`
}

// populationRow is decoded from one API record. Field names match
// case-insensitively and numeric strings are accepted.
type populationRow struct {
	Year       *int   `mapstructure:"year"`
	Population *int64 `mapstructure:"population"`
}

// LoadPopulation reads the snapshots stored directly under prefix. An empty
// prefix is not an error and yields no records. The result has one record per
// year, sorted by year.
func (l *Loader) LoadPopulation(ctx context.Context, prefix string, mode PopulationMode) ([]*PopulationRecord, error) {
	logger := logging.FromContext(ctx).Named("dataset.LoadPopulation")

	objs, err := l.blobstore.ListObjects(ctx, l.bucket, storage.DirPrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list %s: %w", ErrSourceUnavailable, prefix, err)
	}

	snapshots := make([]*storage.ObjectAttrs, 0, len(objs))
	for _, obj := range objs {
		name, ok := storage.ChildKey(prefix, obj.Key)
		if !ok || !strings.HasSuffix(name, ".json") {
			continue
		}
		snapshots = append(snapshots, obj)
	}

	if len(snapshots) == 0 {
		logger.Warnw("no population snapshots found", "prefix", prefix)
		return []*PopulationRecord{}, nil
	}

	// Oldest first, so later snapshots overwrite earlier ones.
	sort.SliceStable(snapshots, func(i, j int) bool {
		a, b := snapshots[i], snapshots[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.Before(b.LastModified)
		}
		return a.Key < b.Key
	})

	if mode != PopulationAll {
		snapshots = snapshots[len(snapshots)-1:]
	}

	byYear := make(map[int]int64)
	for _, obj := range snapshots {
		b, err := l.blobstore.GetObject(ctx, l.bucket, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrSourceUnavailable, obj.Key, err)
		}

		records, err := ParsePopulation(b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", obj.Key, err)
		}
		for _, r := range records {
			byYear[r.Year] = r.Population
		}
		logger.Debugw("loaded snapshot", "key", obj.Key, "records", len(records))
	}

	return sortedPopulation(byYear), nil
}

// ParsePopulation flattens an API response into records. The response may be
// an object with a "data" array, a bare array, or a single record. Records
// without both a year and a population are skipped; if no record has both,
// ErrSchemaMismatch is returned. When a year repeats, the last record wins.
func ParsePopulation(b []byte) ([]*PopulationRecord, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %w", ErrSchemaMismatch, err)
	}

	var items []any
	switch typ := doc.(type) {
	case []any:
		items = typ
	case map[string]any:
		if data, ok := typ["data"].([]any); ok {
			items = data
		} else {
			items = []any{typ}
		}
	default:
		return nil, fmt.Errorf("%w: unexpected json %T", ErrSchemaMismatch, doc)
	}

	byYear := make(map[int]int64, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		row, err := decodePopulationRow(m)
		if err != nil || row.Year == nil || row.Population == nil {
			continue
		}
		byYear[*row.Year] = *row.Population
	}

	if len(byYear) == 0 {
		return nil, fmt.Errorf("%w: no records with both year and population", ErrSchemaMismatch)
	}
	return sortedPopulation(byYear), nil
}

func decodePopulationRow(m map[string]any) (*populationRow, error) {
	var row populationRow
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &row,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	return &row, nil
}

func sortedPopulation(byYear map[int]int64) []*PopulationRecord {
	records := make([]*PopulationRecord, 0, len(byYear))
	for year, pop := range byYear {
		records = append(records, &PopulationRecord{Year: year, Population: pop})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Year < records[j].Year
	})
	return records
}
