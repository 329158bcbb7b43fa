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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/laborstats/pipeline/internal/project"
	"github.com/laborstats/pipeline/pkg/logging"
)

// Column names of the labor statistics data file.
const (
	ColumnSeriesID      = "series_id"
	ColumnYear          = "year"
	ColumnPeriod        = "period"
	ColumnValue         = "value"
	ColumnFootnoteCodes = "footnote_codes"
)

// RequiredColumns must be present in the header of the data file.
var RequiredColumns = []string{ColumnSeriesID, ColumnYear, ColumnPeriod, ColumnValue}

// BLSRow holds the cells of one data line exactly as they appear in the file.
// A row may have fewer cells than the table has columns.
type BLSRow []string

// BLSTable is the tab separated data file as loaded.
type BLSTable struct {
	// Columns are the header names with surrounding whitespace removed.
	Columns []string
	Rows    []BLSRow
}

// Index returns the position of the named column, or -1.
func (t *BLSTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at i, and false when the row is too short.
func (r BLSRow) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// LoadBLS reads the data file stored at key.
func (l *Loader) LoadBLS(ctx context.Context, key string) (*BLSTable, error) {
	logger := logging.FromContext(ctx).Named("dataset.LoadBLS")

	b, err := l.blobstore.GetObject(ctx, l.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrSourceUnavailable, key, err)
	}

	table, err := ParseBLS(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}

	logger.Debugw("loaded data file", "key", key, "rows", len(table.Rows))
	return table, nil
}

// maxLineBytes bounds a single line of the data file.
const maxLineBytes = 1 << 20

// ParseBLS parses a tab separated data file. Header names are stripped of
// surrounding whitespace and every required column must be present. Blank
// lines are ignored; short rows are kept as they are. Quotes carry no meaning,
// so a stray quote stays inside its own cell.
func ParseBLS(r io.Reader) (*BLSTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var table *BLSTable
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if project.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")

		if table == nil {
			table = &BLSTable{
				Columns: make([]string, len(cells)),
			}
			for i, h := range cells {
				table.Columns[i] = project.TrimSpace(h)
			}

			var missing []string
			for _, c := range RequiredColumns {
				if table.Index(c) < 0 {
					missing = append(missing, c)
				}
			}
			if len(missing) > 0 {
				return nil, fmt.Errorf("%w: missing columns %q", ErrSchemaMismatch, missing)
			}
			continue
		}

		table.Rows = append(table.Rows, BLSRow(cells))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read data file: %w", ErrSchemaMismatch, err)
	}

	if table == nil {
		return nil, fmt.Errorf("%w: missing header", ErrSchemaMismatch)
	}
	return table, nil
}
