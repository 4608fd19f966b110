package formats

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	jsonpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/json"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// Write exports the rows of t selected by opts to w. A nil opts exports
// every row and column with the defaults.
func Write(w io.Writer, t record.Table, format Format, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}

	columns, indexes, err := opts.projection(t)
	if err != nil {
		return err
	}
	rows, err := t.ToTabular(opts.Rows, indexes)
	if err != nil {
		return err
	}

	switch format {
	case CSV:
		err = writeCSV(w, columns, rows, opts)
	case JSON:
		err = writeJSON(w, columns, rows, opts, true)
	case JSONL:
		err = writeJSON(w, columns, rows, opts, false)
	case Avro:
		err = writeAvro(w, t.Name(), columns, rows, opts)
	case Text:
		err = writeText(w, columns, rows, opts)
	default:
		return commonerrors.Newf(commonerrors.ErrorTypeArgument, "unsupported format: %s", format)
	}
	if err != nil {
		return commonerrors.Wrapf(err, errorType(err),
			"failed to write %s", format).
			WithDetail("table", t.Name())
	}
	return nil
}

func writeCSV(w io.Writer, columns []*record.Column, rows [][]interface{}, opts *Options) error {
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if !opts.NoHeader {
		if err := cw.Write(opts.headers(columns)); err != nil {
			return err
		}
	}

	line := make([]string, len(columns))
	for _, row := range rows {
		for i, v := range row {
			line[i] = stringpool.ValueToString(v)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, columns []*record.Column, rows [][]interface{}, opts *Options, isArray bool) error {
	enc := jsonpool.NewStreamingEncoder(w, isArray)
	enc.SetPretty(opts.Pretty, opts.indent())

	names := columnNames(columns)
	for _, row := range rows {
		r, err := record.NewRecordFrom(names, row)
		if err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}

func writeText(w io.Writer, columns []*record.Column, rows [][]interface{}, opts *Options) error {
	headers := opts.headers(columns)
	widths := make([]int, len(columns))
	for i, h := range headers {
		widths[i] = stringpool.RuneLen(h)
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			s := stringpool.ValueToString(v)
			cells[r][i] = s
			if n := stringpool.RuneLen(s); n > widths[i] {
				widths[i] = n
			}
		}
	}

	builder := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(builder, stringpool.Medium)

	padded := make([]string, len(columns))
	writeLine := func(values []string) {
		for i, v := range values {
			padded[i] = stringpool.PadRight(v, widths[i])
		}
		builder.WriteString(strings.TrimRight(stringpool.Join(padded, "  "), " "))
		builder.WriteByte('\n')
	}

	writeLine(headers)
	rules := make([]string, len(widths))
	for i, n := range widths {
		rules[i] = strings.Repeat("-", n)
	}
	writeLine(rules)
	for _, row := range cells {
		writeLine(row)
	}

	_, err := w.Write(builder.Bytes())
	return err
}

// errorType keeps the category of structured errors and classifies the
// rest as data errors.
func errorType(err error) commonerrors.ErrorType {
	var e *commonerrors.Error
	if errors.As(err, &e) {
		return e.Type
	}
	return commonerrors.ErrorTypeData
}
