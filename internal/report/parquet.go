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
	"fmt"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet"
	"github.com/apache/arrow/go/v10/parquet/compress"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
)

// joinedSchema is the column layout of the parquet export.
var joinedSchema = arrow.NewSchema([]arrow.Field{
	{Name: "series_id", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "period", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	{Name: "population", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
}, nil)

// encodeParquet writes the joined rows as a single parquet row group. Unknown
// populations are stored as nulls.
func encodeParquet(rows []*JoinedRow) ([]byte, error) {
	b := array.NewRecordBuilder(memory.DefaultAllocator, joinedSchema)
	defer b.Release()

	series := b.Field(0).(*array.StringBuilder)
	years := b.Field(1).(*array.Int32Builder)
	periods := b.Field(2).(*array.StringBuilder)
	values := b.Field(3).(*array.Float64Builder)
	populations := b.Field(4).(*array.Int64Builder)

	for _, r := range rows {
		series.Append(r.SeriesID)
		years.Append(int32(r.Year))
		periods.Append(r.Period)
		values.Append(r.Value.InexactFloat64())
		if r.Population != nil {
			populations.Append(*r.Population)
		} else {
			populations.AppendNull()
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(joinedSchema, &buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
