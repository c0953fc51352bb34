package source

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

var bom = []byte{0xef, 0xbb, 0xbf}

// candidates are the delimiters considered when sniffing, in tie-break order.
var candidates = []rune{',', '\t', '|', ';'}

// sniffLines is how many leading lines are inspected when sniffing.
const sniffLines = 10

// CSV reads delimited text with a header row.
//
// Empty fields are null. encoding/csv does not report whether a field was
// quoted, so a quoted empty field ("") is null as well.
type CSV struct {
	path      string
	header    []string
	reader    *csv.Reader
	closers   []io.Closer
	delimiter rune
}

// OpenCSV opens path, transparently decompressing .gz and .bz2 files.
// A zero delimiter is sniffed from the leading lines.
func OpenCSV(path string, delimiter rune) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("filename '%s' %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	c := &CSV{path: path, closers: []io.Closer{f}}

	r, err := decompress(path, f)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if rc, ok := r.(io.Closer); ok && r != io.Reader(f) {
		c.closers = append(c.closers, rc)
	}

	br := bufio.NewReaderSize(r, 64*1024)
	if head, _ := br.Peek(len(bom)); bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}

	if delimiter == 0 {
		head, _ := br.Peek(br.Size())
		delimiter = Sniff(head)
	}
	c.delimiter = delimiter

	c.reader = csv.NewReader(br)
	c.reader.Comma = delimiter
	c.reader.FieldsPerRecord = -1
	c.reader.LazyQuotes = true

	header, err := c.reader.Read()
	if err != nil || !hasName(header) {
		_ = c.Close()
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w for file '%s'", ErrNoHeader, path)
		}
		return nil, fmt.Errorf("%w for file '%s': %v", ErrNoHeader, path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	c.header = header

	return c, nil
}

func hasName(header []string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			return true
		}
	}
	return false
}

func decompress(path string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return gr, nil
	case ".bz2", ".bzip2":
		return bzip2.NewReader(r), nil
	}
	return r, nil
}

// Sniff picks the candidate delimiter that occurs the same, non-zero number
// of times on every inspected line, preferring the most frequent. It falls
// back to the delimiter most frequent on the first line, then to comma.
func Sniff(head []byte) rune {
	lines := strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n")
	// The last line may be cut off by the peek window.
	if len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
		if len(kept) == sniffLines {
			break
		}
	}
	if len(kept) == 0 {
		return ','
	}

	best, bestCount := rune(0), 0
	for _, d := range candidates {
		n := countOutsideQuotes(kept[0], d)
		if n == 0 {
			continue
		}
		consistent := true
		for _, l := range kept[1:] {
			if countOutsideQuotes(l, d) != n {
				consistent = false
				break
			}
		}
		if consistent && n > bestCount {
			best, bestCount = d, n
		}
	}
	if best != 0 {
		return best
	}

	for _, d := range candidates {
		if n := countOutsideQuotes(kept[0], d); n > bestCount {
			best, bestCount = d, n
		}
	}
	if best != 0 {
		return best
	}
	return ','
}

func countOutsideQuotes(line string, d rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}

// Header implements Source.
func (c *CSV) Header() []string { return c.header }

// Delimiter returns the field separator in use.
func (c *CSV) Delimiter() rune { return c.delimiter }

// Next implements Source.
func (c *CSV) Next() (core.Row, error) {
	rec, err := c.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}

	row := make(core.Row, len(rec))
	for i, field := range rec {
		if field == "" {
			row[i] = core.Null()
			continue
		}
		row[i] = core.Text(field)
	}
	return row, nil
}

// Close implements Source.
func (c *CSV) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
