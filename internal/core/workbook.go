package core

// workbook.go reads the first worksheet of an uploaded file.
//
// Two formats are accepted:
//   - xlsx workbooks (detected by the zip signature), read with excelize
//   - delimited text (comma or semicolon), read with encoding/csv
//
// Text files exported by Spanish-locale Excel are often Windows-1252 with a
// semicolon delimiter; both are detected here.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyWorksheet is returned when a file holds no non-blank row.
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	// ErrNoRecognizedColumns is returned when no header maps to a known field.
	ErrNoRecognizedColumns = errors.New("no recognized columns in header row")
	// ErrUnreadableFile wraps xlsx and csv decoding failures.
	ErrUnreadableFile = errors.New("unreadable file")
)

var (
	zipSignature = []byte("PK\x03\x04")
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// Worksheet is the cell grid of a single sheet.
type Worksheet struct {
	Name string
	Rows [][]string
	// Lines holds the 1-based source line of each row when it differs from
	// its index+1, as in CSV files where blank lines are skipped.
	Lines []int
}

// ReadWorksheet decodes file data into the first sheet's rows.
func ReadWorksheet(fileName string, data []byte) (*Worksheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyWorksheet
	}
	if bytes.HasPrefix(data, zipSignature) {
		return readXLSX(data)
	}
	return readDelimited(fileName, data)
}

func readXLSX(data []byte) (*Worksheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w: %w", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorksheet
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: read sheet %s: %w: %w", sheet, ErrUnreadableFile, err)
	}
	return &Worksheet{Name: sheet, Rows: rows}, nil
}

func readDelimited(fileName string, data []byte) (*Worksheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = decodeText(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = detectDelimiter(data)

	ws := &Worksheet{Name: fileName}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w: %w", ErrUnreadableFile, err)
		}
		line, _ := r.FieldPos(0)
		ws.Rows = append(ws.Rows, record)
		ws.Lines = append(ws.Lines, line)
	}
	return ws, nil
}

// decodeText returns UTF-8 text. Invalid UTF-8 is assumed to be
// Windows-1252; anything that still fails gets replacement characters.
func decodeText(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return decoded
	}
	return sanitizeUTF8(data)
}

func sanitizeUTF8(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// detectDelimiter picks ';' when the first line has more semicolons than commas.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// Line returns the 1-based source line of row i.
func (w *Worksheet) Line(i int) int {
	if i < len(w.Lines) {
		return w.Lines[i]
	}
	return i + 1
}

// DataRows returns the rows below headerIdx with their source lines.
func (w *Worksheet) DataRows(headerIdx int) ([][]string, []int) {
	rows := w.Rows[headerIdx+1:]
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = w.Line(headerIdx + 1 + i)
	}
	return rows, lines
}

// HeaderRow returns the index of the first non-blank row.
func (w *Worksheet) HeaderRow() (int, error) {
	for i, row := range w.Rows {
		if !isEmptyRow(row) {
			return i, nil
		}
	}
	return -1, ErrEmptyWorksheet
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
