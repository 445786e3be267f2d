package inventory

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// parquetBatch is the number of rows buffered before a write.
const parquetBatch = 1024

type parquetWriter struct {
	w   *parquet.GenericWriter[Entry]
	buf []Entry
}

func newParquetWriter(w io.Writer) *parquetWriter {
	return &parquetWriter{
		w:   parquet.NewGenericWriter[Entry](w),
		buf: make([]Entry, 0, parquetBatch),
	}
}

func (pw *parquetWriter) Write(e Entry) error {
	pw.buf = append(pw.buf, e)
	if len(pw.buf) >= parquetBatch {
		return pw.flush()
	}
	return nil
}

func (pw *parquetWriter) flush() error {
	if len(pw.buf) == 0 {
		return nil
	}
	if _, err := pw.w.Write(pw.buf); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	pw.buf = pw.buf[:0]
	return nil
}

func (pw *parquetWriter) Close() error {
	if err := pw.flush(); err != nil {
		return err
	}
	if err := pw.w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// parquetReader streams rows group by group.
type parquetReader struct {
	pathCol, kindCol, sizeCol, depthCol int

	rowGroups    []parquet.RowGroup
	currentRGIdx int
	currentRows  parquet.Rows
	rowBuf       []parquet.Row
	bufIdx       int
	bufLen       int
}

// NewParquetReader returns a Reader over a Parquet inventory.
func NewParquetReader(r io.ReaderAt, size int64) (Reader, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	pr := &parquetReader{
		pathCol:      -1,
		kindCol:      -1,
		sizeCol:      -1,
		depthCol:     -1,
		rowGroups:    file.RowGroups(),
		currentRGIdx: -1,
		rowBuf:       make([]parquet.Row, parquetBatch),
	}
	for i, field := range file.Schema().Fields() {
		switch field.Name() {
		case "path":
			pr.pathCol = i
		case "kind":
			pr.kindCol = i
		case "size":
			pr.sizeCol = i
		case "depth":
			pr.depthCol = i
		}
	}
	if pr.pathCol < 0 || pr.kindCol < 0 || pr.sizeCol < 0 || pr.depthCol < 0 {
		return nil, errors.New("parquet schema is not an inventory schema")
	}
	return pr, nil
}

func (pr *parquetReader) Next() (Entry, error) {
	for {
		if pr.bufIdx < pr.bufLen {
			row := pr.rowBuf[pr.bufIdx]
			pr.bufIdx++
			return pr.toEntry(row), nil
		}

		if pr.currentRows != nil {
			n, err := pr.currentRows.ReadRows(pr.rowBuf)
			if n > 0 {
				pr.bufIdx = 0
				pr.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return Entry{}, fmt.Errorf("read parquet rows: %w", err)
			}
			pr.currentRows.Close()
			pr.currentRows = nil
		}

		pr.currentRGIdx++
		if pr.currentRGIdx >= len(pr.rowGroups) {
			return Entry{}, io.EOF
		}
		pr.currentRows = pr.rowGroups[pr.currentRGIdx].Rows()
	}
}

func (pr *parquetReader) toEntry(row parquet.Row) Entry {
	var e Entry
	for _, val := range row {
		if val.IsNull() {
			continue
		}
		switch val.Column() {
		case pr.pathCol:
			e.Path = val.String()
		case pr.kindCol:
			e.Kind = val.String()
		case pr.sizeCol:
			e.Size = val.Int64()
		case pr.depthCol:
			e.Depth = val.Int32()
		}
	}
	return e
}

func (pr *parquetReader) Close() error {
	if pr.currentRows != nil {
		return pr.currentRows.Close()
	}
	return nil
}
