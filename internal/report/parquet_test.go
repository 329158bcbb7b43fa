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

package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	pfile "github.com/apache/arrow/go/v10/parquet/file"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
	"github.com/google/go-cmp/cmp"
	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/laborstats/pipeline/internal/quality"
)

func readParquet(tb testing.TB, b []byte) (series []string, values []float64, populations []*int64) {
	tb.Helper()

	fr, err := pfile.NewParquetReader(bytes.NewReader(b))
	if err != nil {
		tb.Fatal(err)
	}
	defer fr.Close()

	reader, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		tb.Fatal(err)
	}

	table, err := reader.ReadTable(context.Background())
	if err != nil {
		tb.Fatal(err)
	}
	defer table.Release()

	tr := array.NewTableReader(table, 1024)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for i, col := range rec.Columns() {
			switch rec.ColumnName(i) {
			case "series_id":
				arr := col.(*array.String)
				for j := 0; j < arr.Len(); j++ {
					series = append(series, arr.Value(j))
				}
			case "value":
				arr := col.(*array.Float64)
				for j := 0; j < arr.Len(); j++ {
					values = append(values, arr.Value(j))
				}
			case "population":
				arr := col.(*array.Int64)
				for j := 0; j < arr.Len(); j++ {
					if arr.IsNull(j) {
						populations = append(populations, nil)
						continue
					}
					v := arr.Value(j)
					populations = append(populations, &v)
				}
			}
		}
	}
	return series, values, populations
}

func TestEncodeParquet(t *testing.T) {
	t.Parallel()

	rows := joinPopulation([]*quality.Record{
		rec("PRS30006032", 2012, "Q01", "1.25"),
		rec("PRS30006032", 2013, "Q01", "-3.5"),
	}, []*dataset.PopulationRecord{pop(2013, 316128839)})

	b, err := encodeParquet(rows)
	if err != nil {
		t.Fatal(err)
	}

	series, values, populations := readParquet(t, b)

	if diff := cmp.Diff([]string{"PRS30006032", "PRS30006032"}, series); diff != "" {
		t.Errorf("series mismatch (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.25, -3.5}, values); diff != "" {
		t.Errorf("values mismatch (-want, +got):\n%s", diff)
	}

	want := int64(316128839)
	if diff := cmp.Diff([]*int64{nil, &want}, populations); diff != "" {
		t.Errorf("population mismatch (-want, +got):\n%s", diff)
	}
}
