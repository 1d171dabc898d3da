// Package combine merges result CSVs of mixed format versions into one file
// in the latest format.
package combine

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/mattjoyce/rotbench/internal/log"
	"github.com/mattjoyce/rotbench/internal/schema"
)

// minCells is the largest row width still treated as incomplete.
const minCells = 3

var ErrNotAVersion = errors.New("leading cell is not a version number")

// RowError locates a fatal problem in an input file.
type RowError struct {
	File   string
	Record int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: record %d: %v", e.File, e.Record, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result summarizes a finished merge.
type Result struct {
	Files   int
	Rows    int
	Skipped int
	Digest  string
}

// Combiner accumulates normalized records in input order.
type Combiner struct {
	logger  *slog.Logger
	records []schema.Record
	files   int
	skipped int
}

// New returns an empty Combiner. A nil logger uses the package default.
func New(logger *slog.Logger) *Combiner {
	if logger == nil {
		logger = log.WithComponent("combine")
	}
	return &Combiner{logger: logger}
}

// ReadFile reads and normalizes every row of the CSV at path.
func (c *Combiner) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return c.Read(path, f)
}

// Read normalizes every row from r. name is only used in errors and logs.
// Header rows and rows with at most three cells are skipped.
func (c *Combiner) Read(name string, r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows, skipped int
	for n := 1; ; n++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		if len(cells) > 0 && cells[0] == schema.VersionField {
			skipped++
			continue
		}
		if len(cells) <= minCells {
			skipped++
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(cells[0]))
		if err != nil {
			return &RowError{File: name, Record: n, Err: fmt.Errorf("%w: %q", ErrNotAVersion, cells[0])}
		}
		rec, err := schema.ToLatest(id, cells)
		if err != nil {
			return &RowError{File: name, Record: n, Err: err}
		}
		c.records = append(c.records, rec)
		rows++
	}

	c.files++
	c.skipped += skipped
	c.logger.Debug("input read", "file", name, "rows", rows, "skipped", skipped)
	return nil
}

// Len reports how many records have been accumulated.
func (c *Combiner) Len() int {
	return len(c.records)
}

// Encode writes the latest header followed by every record.
// Lines end in CRLF to match files produced by the existing tooling.
func (c *Combiner) Encode(w io.Writer) error {
	latest, err := schema.Lookup(schema.Latest)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(latest.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range c.records {
		if err := cw.Write(rec.Values(latest)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Combine reads every input, then writes output in one step. Nothing is
// written unless all inputs were read successfully.
func Combine(output string, inputs []string, logger *slog.Logger) (Result, error) {
	c := New(logger)
	for _, in := range inputs {
		if err := c.ReadFile(in); err != nil {
			return Result{}, err
		}
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return Result{}, err
	}
	if err := WriteFileAtomic(output, buf.Bytes()); err != nil {
		return Result{}, err
	}

	sum := blake3.Sum256(buf.Bytes())
	res := Result{
		Files:   c.files,
		Rows:    c.Len(),
		Skipped: c.skipped,
		Digest:  hex.EncodeToString(sum[:]),
	}
	c.logger.Info("combined output written",
		"output", output,
		"files", res.Files,
		"rows", res.Rows,
		"skipped", res.Skipped,
		"blake3", res.Digest,
	)
	return res, nil
}
