// Package csvimport parses the document CSV files staff upload and maps
// their rows onto invoices and credit notes. Files come from EDI exports,
// so the parser tolerates both comma and semicolon delimiters and German
// number and date formats.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads a document CSV with header detection.
type CSVParser struct {
	delimiter  rune
	headerMap  map[string]int
	headers    []string
	currentRow int
	totalRows  int
	reader     *csv.Reader
	bufReader  *bufio.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter forces a field delimiter instead of auto-detecting one.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser creates a parser from a reader. Unless a delimiter is
// forced, it is detected from the header line (semicolon beats comma,
// which matches the common German export convention).
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{
		headerMap: make(map[string]int),
	}

	for _, opt := range opts {
		opt(parser)
	}

	parser.bufReader = bufio.NewReader(r)

	// Strip a UTF-8 BOM if present
	bom, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	head, err := parser.bufReader.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if err == nil {
		// A full peek window can cut a multibyte rune at the boundary.
		head = trimPartialRune(head)
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	if parser.delimiter == 0 {
		parser.delimiter = detectDelimiter(head)
	}

	parser.reader = csv.NewReader(parser.bufReader)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

// detectDelimiter picks the delimiter from the first line.
// trimPartialRune drops an incomplete trailing multibyte sequence so a
// window boundary inside a rune does not read as invalid encoding.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}
		break
	}
	return b
}

func detectDelimiter(head []byte) rune {
	line := head
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		line = head[:idx]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// ParseHeader reads the header row. Header names are normalized to
// lower case so exports with mixed casing still match.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = header
		p.headerMap[header] = i
	}

	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1

	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingHeaders returns the required headers not present in the file.
func (p *CSVParser) MissingHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one parsed CSV data row.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or default if empty
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row from the CSV
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	p.currentRow++
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}

	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}

	return row, nil
}

// ReadAllRows reads all remaining rows, skipping fully empty ones.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row

	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}

		if row.IsEmpty() {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// CurrentRow returns the current row number (1-indexed, header is row 1)
func (p *CSVParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the number of data rows read so far
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}
