package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zstd"
)

var csvHeader = []string{"path", "kind", "size", "depth"}

type csvWriter struct {
	w      *csv.Writer
	closer io.Closer // zstd encoder, if any
	header bool
	rec    []string
}

func newCSVWriter(w io.Writer, closer io.Closer) *csvWriter {
	return &csvWriter{
		w:      csv.NewWriter(w),
		closer: closer,
		rec:    make([]string, len(csvHeader)),
	}
}

func newZstdCSVWriter(w io.Writer) (*csvWriter, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return newCSVWriter(enc, enc), nil
}

func (cw *csvWriter) Write(e Entry) error {
	if !cw.header {
		if err := cw.w.Write(csvHeader); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		cw.header = true
	}
	cw.rec[0] = e.Path
	cw.rec[1] = e.Kind
	cw.rec[2] = strconv.FormatInt(e.Size, 10)
	cw.rec[3] = strconv.FormatInt(int64(e.Depth), 10)
	if err := cw.w.Write(cw.rec); err != nil {
		return fmt.Errorf("write CSV row: %w", err)
	}
	return nil
}

func (cw *csvWriter) Close() error {
	if !cw.header {
		if err := cw.w.Write(csvHeader); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		cw.header = true
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	if cw.closer != nil {
		if err := cw.closer.Close(); err != nil {
			return fmt.Errorf("close zstd encoder: %w", err)
		}
	}
	return nil
}

// csvReader reads rows written by csvWriter.
type csvReader struct {
	r       *csv.Reader
	closers []io.Closer
	header  bool
}

// NewCSVReader returns a Reader over CSV data, decompressing zstd when
// compressed is true. The caller keeps ownership of r.
func NewCSVReader(r io.Reader, compressed bool) (Reader, error) {
	cr := &csvReader{}
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		cr.closers = append(cr.closers, closerFunc(func() error { dec.Close(); return nil }))
		r = dec
	}
	cr.r = csv.NewReader(r)
	cr.r.ReuseRecord = true
	cr.r.FieldsPerRecord = len(csvHeader)
	return cr, nil
}

func (cr *csvReader) Next() (Entry, error) {
	for {
		fields, err := cr.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Entry{}, io.EOF
			}
			return Entry{}, fmt.Errorf("read CSV row: %w", err)
		}
		if !cr.header {
			cr.header = true
			if fields[0] == csvHeader[0] {
				continue
			}
		}

		size, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parse size of %s: %w", fields[0], err)
		}
		depth, err := strconv.ParseInt(fields[3], 10, 32)
		if err != nil {
			return Entry{}, fmt.Errorf("parse depth of %s: %w", fields[0], err)
		}
		return Entry{Path: fields[0], Kind: fields[1], Size: size, Depth: int32(depth)}, nil
	}
}

func (cr *csvReader) Close() error {
	var firstErr error
	for i := len(cr.closers) - 1; i >= 0; i-- {
		if err := cr.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
