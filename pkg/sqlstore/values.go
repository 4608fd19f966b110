package sqlstore

import (
	"reflect"
	"time"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/schema"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// toSQL converts a cell to a bind argument. Values of text columns, and of
// unconstrained columns, are bound as their string form.
func toSQL(c *record.Column, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch kindOf(c.Type()) {
	case kindText:
		return stringpool.ValueToString(v)
	case kindTime:
		return v.(time.Time).UTC()
	}
	return v
}

// fromSQL converts a scanned driver value to the type of c.
func fromSQL(c *record.Column, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	typ := c.Type()

	if b, ok := v.([]byte); ok && typ != bytesType {
		v = string(b)
	}
	if typ == record.AnyType || reflect.TypeOf(v).AssignableTo(typ) {
		return v, nil
	}

	switch x := v.(type) {
	case string:
		if typ == bytesType {
			return []byte(x), nil
		}
		return schema.ParseValue(c, x)
	case int64:
		switch kindOf(typ) {
		case kindBool:
			return reflect.ValueOf(x != 0).Convert(typ).Interface(), nil
		case kindInteger, kindReal:
			return reflect.ValueOf(x).Convert(typ).Interface(), nil
		}
	case float64:
		switch kindOf(typ) {
		case kindInteger, kindReal:
			return reflect.ValueOf(x).Convert(typ).Interface(), nil
		}
	case bool:
		if kindOf(typ) == kindBool {
			return reflect.ValueOf(x).Convert(typ).Interface(), nil
		}
	case time.Time:
		if typ.Kind() == reflect.String {
			return reflect.ValueOf(x.Format(time.RFC3339Nano)).Convert(typ).Interface(), nil
		}
	}
	return schema.ParseValue(c, stringpool.ValueToString(v))
}
