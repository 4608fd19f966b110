package schema

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/logger"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

// InferenceEngine derives column definitions from sample text rows.
type InferenceEngine struct {
	logger     *zap.Logger
	sampleSize int
}

// NewInferenceEngine creates an engine examining at most sampleSize rows.
// A non-positive sampleSize examines every row.
func NewInferenceEngine(log *zap.Logger, sampleSize int) *InferenceEngine {
	return &InferenceEngine{logger: logger.OrNop(log), sampleSize: sampleSize}
}

// candidates are tried narrowest first; string always matches.
var candidates = []struct {
	name  string
	match func(string) bool
}{
	{TypeInt, isInteger},
	{TypeFloat, isFloat},
	{TypeBool, isBoolean},
	{TypeTime, isTime},
}

// Infer builds a definition named name with one column per header entry.
// A column is nullable when any sampled cell is empty or missing, and its
// type is the first of int, float, bool and time that every non-empty
// sampled cell parses as, or string.
func (e *InferenceEngine) Infer(name string, header []string, rows [][]string) (*Definition, error) {
	if len(header) == 0 {
		return nil, commonerrors.Wrap(ErrInvalidDefinition, commonerrors.ErrorTypeArgument, "no header to infer columns from")
	}

	sample := rows
	if e.sampleSize > 0 && len(sample) > e.sampleSize {
		sample = sample[:e.sampleSize]
	}

	d := &Definition{Name: name, Version: "1", Columns: make([]ColumnDef, len(header))}
	for i, h := range header {
		d.Columns[i] = e.inferColumn(strings.TrimSpace(h), i, sample)
	}

	e.logger.Debug("inferred table definition",
		zap.String("table", name),
		zap.Int("columns", len(header)),
		zap.Int("sampled_rows", len(sample)))

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (e *InferenceEngine) inferColumn(name string, index int, rows [][]string) ColumnDef {
	values := make([]string, 0, len(rows))
	nullable := false
	for _, row := range rows {
		if index >= len(row) || row[index] == "" {
			nullable = true
			continue
		}
		values = append(values, row[index])
	}

	def := ColumnDef{Name: name, Type: TypeString}
	if !nullable {
		required := false
		def.Nullable = &required
	}
	if len(values) == 0 {
		return def
	}

	for _, c := range candidates {
		if all(values, c.match) {
			def.Type = c.name
			break
		}
	}
	return def
}

// Infer derives a definition with an engine sampling every row.
func Infer(name string, header []string, rows [][]string) (*Definition, error) {
	return NewInferenceEngine(nil, 0).Infer(name, header, rows)
}

func all(values []string, match func(string) bool) bool {
	for _, v := range values {
		if !match(v) {
			return false
		}
	}
	return true
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isBoolean(s string) bool {
	_, ok := parseBool(s)
	return ok
}

func isTime(s string) bool {
	_, err := parseTime(s)
	return err == nil
}

// ParseRow converts one text row to typed values for columns. Missing
// trailing cells are null.
func ParseRow(columns []*record.Column, row []string) ([]interface{}, error) {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		if i >= len(row) {
			continue
		}
		v, err := ParseValue(c, row[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
