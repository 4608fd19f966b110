package formats

import (
	"io"
	"reflect"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	jsonpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/json"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// avroType returns the Avro primitive a column's values are written as.
func avroType(t reflect.Type) string {
	switch {
	case t == timeType:
		return "long"
	case t == bytesType:
		return "bytes"
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return "long"
	case reflect.Float32, reflect.Float64:
		return "double"
	default:
		return "string"
	}
}

// AvroName converts s into a valid Avro name by replacing every character
// outside [A-Za-z0-9_] with an underscore and prefixing a leading digit.
func AvroName(s string) string {
	if s == "" {
		return "_"
	}
	return stringpool.BuildWith(stringpool.Small, func(b *stringpool.Builder) {
		for i, r := range s {
			switch {
			case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
				b.WriteRune(r)
			case r >= '0' && r <= '9':
				if i == 0 {
					b.WriteByte('_')
				}
				b.WriteRune(r)
			default:
				b.WriteByte('_')
			}
		}
	})
}

// AvroSchema generates the record schema for columns of the named table.
func AvroSchema(table string, columns []*record.Column) (string, error) {
	fields := make([]map[string]interface{}, 0, len(columns))

	for _, c := range columns {
		var typ interface{} = avroType(c.Type())
		if c.Nullable() {
			typ = []interface{}{"null", typ}
		}

		field := map[string]interface{}{
			"name": AvroName(c.Name()),
			"type": typ,
		}
		if c.Description() != "" {
			field["doc"] = c.Description()
		}
		fields = append(fields, field)
	}

	schema, err := jsonpool.Marshal(map[string]interface{}{
		"type":   "record",
		"name":   AvroName(table),
		"fields": fields,
	})
	if err != nil {
		return "", err
	}
	return string(schema), nil
}

// avroNative converts a cell to the native form goavro expects for typ.
func avroNative(typ string, v interface{}) interface{} {
	switch typ {
	case "long":
		if t, ok := v.(time.Time); ok {
			return t.UnixMicro()
		}
		rv := reflect.ValueOf(v)
		if rv.CanInt() {
			return rv.Int()
		}
		return int64(rv.Uint())
	case "double":
		return reflect.ValueOf(v).Float()
	case "boolean":
		return reflect.ValueOf(v).Bool()
	case "bytes":
		return v
	default:
		return stringpool.ValueToString(v)
	}
}

func avroCompression(name string) (string, error) {
	switch name {
	case "", goavro.CompressionNullLabel:
		return goavro.CompressionNullLabel, nil
	case goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
		return name, nil
	default:
		return "", commonerrors.Newf(commonerrors.ErrorTypeArgument, "unsupported avro compression: %s", name)
	}
}

func writeAvro(w io.Writer, table string, columns []*record.Column, rows [][]interface{}, opts *Options) error {
	schema, err := AvroSchema(table, columns)
	if err != nil {
		return err
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to create Avro codec")
	}
	compressionName, err := avroCompression(opts.AvroCompression)
	if err != nil {
		return err
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compressionName,
	})
	if err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to create Avro writer")
	}

	types := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		types[i] = avroType(c.Type())
		names[i] = AvroName(c.Name())
	}

	natives := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		native := make(map[string]interface{}, len(row))
		for i, v := range row {
			switch {
			case v == nil:
				native[names[i]] = nil
			case columns[i].Nullable():
				native[names[i]] = goavro.Union(types[i], avroNative(types[i], v))
			default:
				native[names[i]] = avroNative(types[i], v)
			}
		}
		natives = append(natives, native)
	}

	return ocf.Append(natives)
}
