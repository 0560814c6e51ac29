package rawload

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/molset/pkg/molset/internalerr"
)

// DefaultColumn is the column holding SMILES strings
const DefaultColumn = "smiles"

// Policy decides which directory entry is read as the data file
type Policy string

const (
	// PolicyFirst reads the first entry in directory-listing order.
	// os.ReadDir sorts by file name, so the choice is stable across platforms.
	PolicyFirst Policy = "first"
	// PolicySingle requires the directory to hold exactly one data file.
	PolicySingle Policy = "single"
)

// ParsePolicy converts a config string into a Policy. Empty means PolicyFirst.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicySingle:
		return PolicySingle, nil
	default:
		return "", fmt.Errorf("%w: unknown select policy %q", internalerr.ErrInvalidConfig, s)
	}
}

// Options configures column extraction
type Options struct {
	Column string
	Policy Policy
}

func (o Options) withDefaults() Options {
	if o.Column == "" {
		o.Column = DefaultColumn
	}
	if o.Policy == "" {
		o.Policy = PolicyFirst
	}
	return o
}

// SelectFile picks the data file inside dir according to policy.
// Subdirectories and hidden entries are never candidates.
func SelectFile(dir string, policy Policy) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %s: %w", dir, err)
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", internalerr.ErrNoDataFile, dir)
	}

	switch policy {
	case "", PolicyFirst:
		return candidates[0], nil
	case PolicySingle:
		if len(candidates) > 1 {
			return "", fmt.Errorf("%w in %s: found %d", internalerr.ErrAmbiguousDataFile, dir, len(candidates))
		}
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: unknown select policy %q", internalerr.ErrInvalidConfig, policy)
	}
}

// ColumnReader yields one column of a gzip-compressed CSV file, row by row.
// It holds the file open until Close or until the rows run out.
type ColumnReader struct {
	path   string
	column string
	index  int
	row    int

	file   *os.File
	gz     *gzip.Reader
	csv    *csv.Reader
	closed bool
}

// OpenColumn selects the data file in dir, opens it and reads the header.
// Missing files and missing columns are reported here, before any row is read.
func OpenColumn(dir string, opts Options) (*ColumnReader, error) {
	opts = opts.withDefaults()

	path, err := SelectFile(dir, opts.Policy)
	if err != nil {
		return nil, err
	}
	return OpenFile(path, opts.Column)
}

// OpenFile opens a specific gzip CSV file and positions the reader after its header.
func OpenFile(path, column string) (*ColumnReader, error) {
	if column == "" {
		column = DefaultColumn
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%w: %s: %w", internalerr.ErrDecode, path, err)
	}

	br := bufio.NewReader(gz)
	if err := skipBOM(br); err != nil {
		gz.Close()
		fh.Close()
		return nil, fmt.Errorf("%w: %s: %w", internalerr.ErrDecode, path, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = ','
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	r := &ColumnReader{
		path:   path,
		column: column,
		file:   fh,
		gz:     gz,
		csv:    cr,
		row:    -1,
	}

	header, err := cr.Read()
	if err != nil {
		r.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty table, no header row", internalerr.ErrDecode, path)
		}
		return nil, fmt.Errorf("%w: %s: header: %w", internalerr.ErrDecode, path, err)
	}

	r.index = -1
	for i, name := range header {
		if name == column {
			r.index = i
			break
		}
	}
	if r.index < 0 {
		r.Close()
		return nil, fmt.Errorf("%w %q in %s", internalerr.ErrMissingColumn, column, path)
	}

	return r, nil
}

// Path returns the file being read
func (r *ColumnReader) Path() string { return r.path }

// Row returns the 0-based index of the last row returned by Next, or -1.
func (r *ColumnReader) Row() int { return r.row }

// Next returns the column value of the next row, or io.EOF when the table is exhausted.
// The file is released as soon as io.EOF is reached.
func (r *ColumnReader) Next() (string, error) {
	if r.closed {
		return "", io.EOF
	}

	rec, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.Close()
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: row %d: %w", internalerr.ErrDecode, r.path, r.row+1, err)
	}

	r.row++
	if r.index >= len(rec) {
		return "", fmt.Errorf("%w: %s: row %d has %d fields, column %q is field %d",
			internalerr.ErrDecode, r.path, r.row, len(rec), r.column, r.index)
	}
	return rec[r.index], nil
}

// Close releases the gzip stream and the file. Safe to call more than once.
func (r *ColumnReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	gzErr := r.gz.Close()
	fileErr := r.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// LoadColumn reads the whole column from the data file in dir, preserving row order.
func LoadColumn(dir string, opts Options) ([]string, error) {
	r, err := OpenColumn(dir, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var values []string
	for {
		v, err := r.Next()
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

func skipBOM(br *bufio.Reader) error {
	lead, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if len(lead) == 3 && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		_, err = br.Discard(3)
		return err
	}
	return nil
}
