// Package customerimport bulk-registers customers from gzip-compressed NDJSON
// exports. Files are parsed concurrently; registration is sequential and goes
// through the customer service, so imported rows obey API validation.
package customerimport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

const (
	defaultCapacity = 1_000_000
	defaultFPR      = 0.001
	progressEvery   = 10_000
	// maxLineSize bounds one NDJSON record; longer lines count as malformed.
	maxLineSize = 1 << 20
)

// Registry is the subset of customer.Service the importer writes through.
type Registry interface {
	Register(ctx context.Context, in customer.Input) (*customer.Customer, error)
	GetByEmail(ctx context.Context, email string) (*customer.Customer, error)
	ToggleActive(ctx context.Context, id int64) (*customer.Customer, error)
}

// Record is one NDJSON line.
type Record struct {
	customer.Input
	Active bool
	// File and Line locate the record for error reports.
	File string
	Line int
}

// Stats summarizes an import run.
type Stats struct {
	Read int
	// Malformed lines are not valid JSON objects.
	Malformed int
	// Invalid records failed customer validation.
	Invalid    int
	Registered int
	// Repeated records share an email with an earlier record of this run.
	Repeated int
	// Existing records were registered before this run.
	Existing int
}

// Options tune an import.
type Options struct {
	// Capacity is the expected number of records. It sizes the duplicate
	// filter and defaults to one million.
	Capacity uint
}

// Run imports every file. Parsing stops on the first I/O error; bad records
// are counted and skipped.
func Run(ctx context.Context, reg Registry, files []string, opts Options) (Stats, error) {
	lg := zctx.From(ctx)

	parsed := make([][]Record, len(files))
	malformed := make([]int, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			recs, bad, err := parseFile(gctx, f)
			if err != nil {
				return errors.Wrapf(err, "parse %s", f)
			}
			lg.Info("Parsed file",
				zap.String("file", f),
				zap.Int("records", len(recs)),
				zap.Int("malformed", bad),
			)
			parsed[i], malformed[i] = recs, bad
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	capacity := opts.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	seen := bloom.NewWithEstimates(capacity, defaultFPR)

	var st Stats
	for i, recs := range parsed {
		st.Malformed += malformed[i]
		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			st.Read++
			if err := register(ctx, reg, seen, rec, &st); err != nil {
				return st, errors.Wrapf(err, "%s:%d", rec.File, rec.Line)
			}
			if st.Read%progressEvery == 0 {
				lg.Info("Import progress", zap.Int("read", st.Read), zap.Int("registered", st.Registered))
			}
		}
	}
	return st, nil
}

func register(ctx context.Context, reg Registry, seen *bloom.BloomFilter, rec Record, st *Stats) error {
	lg := zctx.From(ctx)

	in := rec.Input.Normalize()
	if err := in.Validate(); err != nil {
		lg.Debug("Invalid record",
			zap.String("file", rec.File),
			zap.Int("line", rec.Line),
			zap.Error(err),
		)
		st.Invalid++
		return nil
	}

	// A filter hit is only a hint; the store decides.
	if seen.TestOrAddString(in.Email) {
		_, err := reg.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			st.Repeated++
			return nil
		case fault.KindOf(err) != fault.KindNotFound:
			return errors.Wrap(err, "lookup email")
		}
	}

	c, err := reg.Register(ctx, in)
	switch {
	case fault.KindOf(err) == fault.KindConflict:
		st.Existing++
		return nil
	case err != nil:
		return errors.Wrap(err, "register")
	}
	if !rec.Active {
		if _, err := reg.ToggleActive(ctx, c.ID); err != nil {
			return errors.Wrap(err, "deactivate")
		}
	}
	st.Registered++
	return nil
}

// parseFile streams a gzip NDJSON file. Lines that are not JSON objects or
// exceed maxLineSize are counted as malformed.
func parseFile(ctx context.Context, path string) (recs []Record, malformed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	rd := bufio.NewReaderSize(gz, maxLineSize)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		raw, err := rd.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// Over-long line: skip to its end.
			line++
			malformed++
			for errors.Is(err, bufio.ErrBufferFull) {
				_, err = rd.ReadSlice('\n')
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, 0, errors.Wrapf(err, "read %s", path)
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, errors.Wrapf(err, "read %s", path)
		}
		if len(raw) == 0 && err != nil {
			break
		}
		line++
		if raw = bytes.TrimRight(raw, "\r\n"); len(raw) > 0 {
			rec, decodeErr := decodeRecord(raw)
			if decodeErr != nil {
				malformed++
			} else {
				rec.File, rec.Line = path, line
				recs = append(recs, rec)
			}
		}
		if err != nil {
			break
		}
	}
	return recs, malformed, nil
}

func decodeRecord(raw []byte) (Record, error) {
	rec := Record{Active: true}
	err := jx.DecodeBytes(raw).ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			rec.Name, err = d.Str()
		case "email":
			rec.Email, err = d.Str()
		case "phone":
			rec.Phone, err = optStr(d)
		case "address":
			rec.Address, err = optStr(d)
		case "active":
			rec.Active, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	return rec, err
}

func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
