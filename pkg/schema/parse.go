package schema

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// TimeLayouts are tried in order when parsing time cells.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// ParseValue converts a text cell to the type of column. Empty text is
// null; the table decides whether null is acceptable.
func ParseValue(column *record.Column, text string) (interface{}, error) {
	if text == "" {
		return nil, nil
	}
	v, err := parseText(column.Type(), text)
	if err != nil {
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeValidation, "column %q", column.Name()).
			WithDetail("column", column.Name()).
			WithDetail("text", text)
	}
	return v, nil
}

// parseText converts text to typ. Numeric kinds other than the named types
// are parsed at full width and converted.
func parseText(typ reflect.Type, text string) (interface{}, error) {
	switch {
	case typ == record.AnyType:
		return text, nil
	case typ == timeType:
		return parseTime(text)
	case typ == bytesType:
		return []byte(text), nil
	}

	switch typ.Kind() {
	case reflect.String:
		return reflect.ValueOf(text).Convert(typ).Interface(), nil
	case reflect.Bool:
		b, ok := parseBool(text)
		if !ok {
			return nil, parseError(typ, text)
		}
		return reflect.ValueOf(b).Convert(typ).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, typ.Bits())
		if err != nil {
			return nil, parseError(typ, text)
		}
		return reflect.ValueOf(n).Convert(typ).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(text), 10, typ.Bits())
		if err != nil {
			return nil, parseError(typ, text)
		}
		return reflect.ValueOf(n).Convert(typ).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), typ.Bits())
		if err != nil {
			return nil, parseError(typ, text)
		}
		return reflect.ValueOf(f).Convert(typ).Interface(), nil
	}

	return nil, commonerrors.Wrapf(record.ErrUnsupportedOperation, commonerrors.ErrorTypeUnsupported,
		"cannot parse text as %s", typ)
}

func parseError(typ reflect.Type, text string) error {
	return commonerrors.Wrapf(record.ErrInvalidColumnValueType, commonerrors.ErrorTypeValidation,
		"cannot parse %q as %s", text, typ)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

func parseTime(text string) (time.Time, error) {
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, parseError(timeType, text)
}
