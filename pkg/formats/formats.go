// Package formats exports record tables as csv, json, jsonl, avro or text
// and imports csv and json back through a table's write pipeline, so every
// loaded cell is validated like any other write.
//
// # Basic Usage
//
//	err := formats.Write(os.Stdout, table, formats.CSV, nil)
//
//	n, err := formats.ReadCSV(file, table, nil)
//
// Avro output is an object container file whose schema is generated from
// the table columns. Nullable columns become unions with null and time
// values are written as Unix microseconds.
package formats

import (
	"strings"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// Format names an export format.
type Format string

const (
	// CSV is comma separated values with a header line
	CSV Format = "csv"
	// JSON is one array of row objects
	JSON Format = "json"
	// JSONL is one row object per line
	JSONL Format = "jsonl"
	// Avro is an Avro object container file
	Avro Format = "avro"
	// Text is an aligned plain text table
	Text Format = "text"
)

// Formats lists every export format.
var Formats = []Format{CSV, JSON, JSONL, Avro, Text}

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", commonerrors.Newf(commonerrors.ErrorTypeArgument, "unsupported format: %s", s)
}

// Extension returns the file suffix for f.
func (f Format) Extension() string {
	if f == Text {
		return ".txt"
	}
	return "." + string(f)
}

// Options configures export.
type Options struct {
	// Columns restricts and orders the exported columns by name. Empty
	// exports every column.
	Columns []string
	// Rows selects and orders the exported rows by position. Nil exports
	// every row; an empty non-nil slice exports none.
	Rows []int
	// Delimiter separates csv fields. Zero means comma.
	Delimiter rune
	// NoHeader omits the csv header line.
	NoHeader bool
	// DisplayNames uses column display names for csv and text headers.
	DisplayNames bool
	// Pretty indents json output.
	Pretty bool
	// Indent is the json indentation, two spaces by default.
	Indent string
	// AvroCompression is null, deflate or snappy. Empty means null.
	AvroCompression string
}

func (o *Options) indent() string {
	if o.Indent == "" {
		return "  "
	}
	return o.Indent
}

// projection resolves the exported columns and their positions.
func (o *Options) projection(t record.Table) ([]*record.Column, []int, error) {
	if len(o.Columns) == 0 {
		columns := t.Columns()
		indexes := make([]int, len(columns))
		for i := range indexes {
			indexes[i] = i
		}
		return columns, indexes, nil
	}

	columns := make([]*record.Column, len(o.Columns))
	indexes := make([]int, len(o.Columns))
	for i, name := range o.Columns {
		c, err := t.ColumnNamed(name)
		if err != nil {
			return nil, nil, err
		}
		columns[i] = c
		indexes[i] = t.ColumnIndexNamed(name)
	}
	return columns, indexes, nil
}

func (o *Options) headers(columns []*record.Column) []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		if o.DisplayNames {
			headers[i] = c.DisplayName()
		} else {
			headers[i] = c.Name()
		}
	}
	return headers
}

func columnNames(columns []*record.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	return names
}
