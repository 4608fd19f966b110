package formats

import (
	"bufio"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"io"
	"reflect"
	"unicode"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	jsonpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/json"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// ReadOptions configures import.
type ReadOptions struct {
	// Delimiter separates csv fields. Zero means comma.
	Delimiter rune
	// NoHeader reads csv fields positionally instead of by header name.
	NoHeader bool
}

// rowError attaches the 1-based data row number to a failed row.
func rowError(err error, row int) error {
	return commonerrors.Wrapf(err, errorType(err), "row %d", row).WithDetail("row", row)
}

// ReadCSV appends the rows of a csv stream to t and returns how many were
// added. Header fields name table columns; columns absent from the header
// receive null, so their defaults apply. Reading stops at the first row the
// table rejects, leaving earlier rows in place.
func ReadCSV(r io.Reader, t record.Table, opts *ReadOptions) (int, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}

	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	columns := t.Columns()
	positions := make([]int, len(columns))
	for i := range positions {
		positions[i] = i
	}

	if !opts.NoHeader {
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		if err != nil {
			return 0, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to read csv header")
		}
		if positions, err = headerPositions(t, header); err != nil {
			return 0, err
		}
	}

	added := 0
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, rowError(commonerrors.Wrap(err, commonerrors.ErrorTypeData, "malformed csv"), added+1)
		}

		values := make([]interface{}, len(columns))
		for i, c := range columns {
			p := positions[i]
			if p < 0 || p >= len(line) {
				continue
			}
			v, err := schema.ParseValue(c, line[p])
			if err != nil {
				return added, rowError(err, added+1)
			}
			values[i] = v
		}

		if err := t.AppendValues(values...); err != nil {
			return added, rowError(err, added+1)
		}
		added++
	}
}

// headerPositions maps each table column to its csv field, or -1.
func headerPositions(t record.Table, header []string) ([]int, error) {
	positions := make([]int, t.ColumnCount())
	for i := range positions {
		positions[i] = -1
	}
	for p, name := range header {
		i := t.ColumnIndexNamed(name)
		if i < 0 {
			return nil, commonerrors.Wrapf(record.ErrNoSuchColumn, commonerrors.ErrorTypeNotFound,
				"csv header names unknown column %q", name).
				WithDetail("column", name)
		}
		positions[i] = p
	}
	return positions, nil
}

// ReadJSON appends rows from either a JSON array of objects or a stream of
// objects, one per line, and returns how many were added. Object keys name
// table columns. Reading stops at the first rejected row.
func ReadJSON(r io.Reader, t record.Table) (int, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to read json")
	}

	dec := jsonpool.NewDecoder(br)
	if first == '[' {
		var objects []map[string]interface{}
		if err := dec.Decode(&objects); err != nil {
			return 0, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "malformed json array")
		}
		for i, obj := range objects {
			if err := appendObject(t, obj); err != nil {
				return i, rowError(err, i+1)
			}
		}
		return len(objects), nil
	}

	added := 0
	for {
		var obj map[string]interface{}
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, rowError(commonerrors.Wrap(err, commonerrors.ErrorTypeData, "malformed json"), added+1)
		}
		if err := appendObject(t, obj); err != nil {
			return added, rowError(err, added+1)
		}
		added++
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b[0])) {
			return b[0], nil
		}
		if _, err := br.ReadByte(); err != nil {
			return 0, err
		}
	}
}

func appendObject(t record.Table, obj map[string]interface{}) error {
	values := make([]interface{}, t.ColumnCount())
	for name, raw := range obj {
		i := t.ColumnIndexNamed(name)
		if i < 0 {
			return commonerrors.Wrapf(record.ErrNoSuchColumn, commonerrors.ErrorTypeNotFound,
				"json object names unknown column %q", name).
				WithDetail("column", name)
		}
		c, err := t.Column(i)
		if err != nil {
			return err
		}
		v, err := jsonValue(c, raw)
		if err != nil {
			return err
		}
		values[i] = v
	}
	return t.AppendValues(values...)
}

// jsonValue converts a decoded JSON value to the column type. Numbers are
// parsed from their text, byte columns expect base64 strings and other
// strings are parsed like csv cells when the column is not textual.
func jsonValue(c *record.Column, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case jsonpool.Number:
		if c.Type() == record.AnyType {
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
			return v.Float64()
		}
		return schema.ParseValue(c, v.String())
	case string:
		if c.Type() == bytesType {
			b, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, commonerrors.Wrapf(record.ErrInvalidColumnValueType, commonerrors.ErrorTypeValidation,
					"column %q expects base64 bytes", c.Name())
			}
			return b, nil
		}
		if c.Accepts(v) {
			return v, nil
		}
		if c.Type().Kind() == reflect.String {
			return reflect.ValueOf(v).Convert(c.Type()).Interface(), nil
		}
		return schema.ParseValue(c, v)
	case bool:
		if c.Accepts(v) {
			return v, nil
		}
		return schema.ParseValue(c, stringpool.ValueToString(v))
	default:
		// objects and arrays are stored as decoded
		return v, nil
	}
}
