package output

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/monetate/monte-carlo-simulator/internal/constants"
	"github.com/monetate/monte-carlo-simulator/internal/engine"
)

// arrowBatchRows bounds the rows per record batch.
const arrowBatchRows = 64 * 1024

// ArrowWriter writes the matrix as an Arrow IPC stream with columns
// trial, group, sum_y0, sum_y1 and sum_y2.
type ArrowWriter struct {
	w       io.Writer
	profile constants.Profile
	mem     memory.Allocator
}

// NewArrowWriter creates an ArrowWriter.
func NewArrowWriter(w io.Writer, profile constants.Profile) *ArrowWriter {
	return &ArrowWriter{w: w, profile: profile, mem: memory.DefaultAllocator}
}

// Schema returns the stream schema for profile.
func Schema(profile constants.Profile) *arrow.Schema {
	md := arrow.NewMetadata([]string{"profile"}, []string{profile.String()})
	return arrow.NewSchema([]arrow.Field{
		{Name: "trial", Type: arrow.PrimitiveTypes.Int64},
		{Name: "group", Type: arrow.PrimitiveTypes.Int64},
		{Name: "sum_y0", Type: arrow.PrimitiveTypes.Float64},
		{Name: "sum_y1", Type: arrow.PrimitiveTypes.Float64},
		{Name: "sum_y2", Type: arrow.PrimitiveTypes.Float64},
	}, &md)
}

// Write implements Writer.
func (a *ArrowWriter) Write(m *engine.Matrix) error {
	schema := Schema(a.profile)
	w := ipc.NewWriter(a.w, ipc.WithSchema(schema), ipc.WithAllocator(a.mem))

	b := array.NewRecordBuilder(a.mem, schema)
	defer b.Release()

	trials := b.Field(0).(*array.Int64Builder)
	groups := b.Field(1).(*array.Int64Builder)
	y0 := b.Field(2).(*array.Float64Builder)
	y1 := b.Field(3).(*array.Float64Builder)
	y2 := b.Field(4).(*array.Float64Builder)

	flush := func() error {
		rec := b.NewRecord()
		defer rec.Release()
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing arrow record: %w", err)
		}
		return nil
	}

	rows := 0
	err := m.Each(func(trial, group int, cell engine.Cell) error {
		trials.Append(int64(trial))
		groups.Append(int64(group))
		y0.Append(cell.Y0)
		y1.Append(cell.Y1)
		y2.Append(cell.Y2)
		rows++
		if rows == arrowBatchRows {
			rows = 0
			return flush()
		}
		return nil
	})
	if err != nil {
		w.Close()
		return err
	}
	if rows > 0 {
		if err := flush(); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
