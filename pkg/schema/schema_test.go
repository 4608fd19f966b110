package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

const peopleYAML = `
name: people
version: "2"
columns:
  - name: id
    type: int
    unique: true
    nullable: false
  - name: name
    type: string
    size: 10
    display_name: Full Name
  - name: score
    type: float
    default: 1
  - name: joined
    type: time
`

func TestParseYAML(t *testing.T) {
	d, err := Parse([]byte(peopleYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "people", d.Name)
	assert.Equal(t, "2", d.Version)
	require.Len(t, d.Columns, 4)

	columns, err := d.BuildColumns()
	require.NoError(t, err)

	id := columns[0]
	assert.Equal(t, record.TypeFor[int](), id.Type())
	assert.True(t, id.Unique())
	assert.False(t, id.Nullable())

	name := columns[1]
	assert.Equal(t, 10, name.Size())
	assert.Equal(t, "Full Name", name.DisplayName())
	assert.True(t, name.Nullable())

	assert.Equal(t, 1.0, columns[2].DefaultValue())
	assert.Equal(t, record.TypeFor[time.Time](), columns[3].Type())
}

func TestParseJSON(t *testing.T) {
	d, err := Parse([]byte(`{"name":"t","columns":[{"name":"n","type":"int64","default":5}]}`), FormatJSON)
	require.NoError(t, err)

	columns, err := d.BuildColumns()
	require.NoError(t, err)
	assert.Equal(t, int64(5), columns[0].DefaultValue())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		is   error
	}{
		{"no name", Definition{Columns: []ColumnDef{{Name: "a", Type: TypeInt}}}, ErrInvalidDefinition},
		{"no columns", Definition{Name: "t"}, ErrInvalidDefinition},
		{"empty column name", Definition{Name: "t", Columns: []ColumnDef{{Type: TypeInt}}}, ErrInvalidDefinition},
		{"duplicate", Definition{Name: "t", Columns: []ColumnDef{{Name: "a", Type: TypeInt}, {Name: "a", Type: TypeBool}}}, record.ErrDuplicateColumn},
		{"unknown type", Definition{Name: "t", Columns: []ColumnDef{{Name: "a", Type: "decimal"}}}, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			assert.ErrorIs(t, err, tt.is)
			assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeValidation))
		})
	}
}

func TestColumnDefaultMustFit(t *testing.T) {
	d := Definition{Name: "t", Columns: []ColumnDef{{Name: "a", Type: TypeInt, Default: "abc"}}}
	_, err := d.BuildColumns()
	assert.ErrorIs(t, err, record.ErrInvalidColumnValueType)

	d = Definition{Name: "t", Columns: []ColumnDef{{Name: "a", Type: TypeString, Size: 2, Default: "abc"}}}
	_, err = d.BuildColumns()
	assert.ErrorIs(t, err, record.ErrInvalidColumnValueSize)
}

func TestFromColumnsRoundTrip(t *testing.T) {
	d, err := Parse([]byte(peopleYAML), FormatYAML)
	require.NoError(t, err)
	columns, err := d.BuildColumns()
	require.NoError(t, err)

	back := FromColumns("people", columns)
	rebuilt, err := back.BuildColumns()
	require.NoError(t, err)
	require.Len(t, rebuilt, len(columns))
	for i := range columns {
		assert.True(t, columns[i].Equal(rebuilt[i]), "column %s", columns[i].Name())
	}

	assert.Equal(t, TypeAny, FromColumns("x", []*record.Column{record.MustColumn("v", record.TypeFor[int32]())}).Columns[0].Type)
}

func TestCompressedDefinitionFiles(t *testing.T) {
	d, err := Parse([]byte(peopleYAML), FormatYAML)
	require.NoError(t, err)

	format, err := FormatForPath("people.yml.GZ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)
	_, err = FormatForPath("people.zst")
	assert.Error(t, err)

	dir := t.TempDir()
	for name, format := range map[string]string{"people.yaml.zst": FormatYAML, "people.json.gz": FormatJSON} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, d))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		plain, err := Marshal(d, format)
		require.NoError(t, err)
		assert.NotEqual(t, plain, raw)

		again, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Empty(t, Diff(d, again))
	}

	corrupt := filepath.Join(dir, "corrupt.yaml.gz")
	require.NoError(t, os.WriteFile(corrupt, []byte(peopleYAML), 0o600))
	_, err = LoadFile(corrupt)
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeFile))
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(peopleYAML), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)

	out := filepath.Join(dir, "people.json")
	require.NoError(t, SaveFile(out, d))
	again, err := LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, d.Name, again.Name)
	assert.Len(t, again.Columns, 4)
	assert.Empty(t, Diff(d, again))

	_, err = LoadFile(filepath.Join(dir, "people.txt"))
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeFile))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeFile))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: [unterminated"), 0o600))
	_, err = LoadFile(bad)
	var e *commonerrors.Error
	require.ErrorAs(t, err, &e)
	file, ok := e.Detail("file")
	assert.True(t, ok)
	assert.Equal(t, bad, file)
}

func TestParseValue(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		typ  string
		text string
		want interface{}
	}{
		{TypeString, "Jon", "Jon"},
		{TypeInt, "42", 42},
		{TypeInt64, " 42 ", int64(42)},
		{TypeFloat, "2.5", 2.5},
		{TypeBool, "yes", true},
		{TypeBool, "F", false},
		{TypeTime, "2024-03-01T12:30:00Z", when},
		{TypeTime, "2024-03-01 12:30:00", when},
		{TypeTime, "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{TypeBytes, "abc", []byte("abc")},
		{TypeAny, "x", "x"},
		{TypeInt, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.text, func(t *testing.T) {
			typ, err := TypeForName(tt.typ)
			require.NoError(t, err)
			v, err := ParseValue(record.MustColumn("c", typ), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	_, err := ParseValue(record.MustColumn("age", record.TypeFor[int]()), "old")
	assert.ErrorIs(t, err, record.ErrInvalidColumnValueType)
	assert.True(t, record.IsConstraintViolation(err))

	_, err = ParseValue(record.MustColumn("small", record.TypeFor[int8]()), "300")
	assert.ErrorIs(t, err, record.ErrInvalidColumnValueType)

	v, err := ParseValue(record.MustColumn("small", record.TypeFor[uint16]()), "300")
	require.NoError(t, err)
	assert.Equal(t, uint16(300), v)

	_, err = ParseValue(record.MustColumn("list", record.TypeFor[[]int]()), "1,2")
	assert.ErrorIs(t, err, record.ErrUnsupportedOperation)
}

func TestParseRow(t *testing.T) {
	columns := []*record.Column{
		record.MustColumn("id", record.TypeFor[int]()),
		record.MustColumn("name", record.TypeFor[string]()),
	}
	values, err := ParseRow(columns, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, nil}, values)
}

func TestInfer(t *testing.T) {
	header := []string{"id", "score", "active", "joined", "name", "empty"}
	rows := [][]string{
		{"1", "2.5", "true", "2024-03-01", "Jon", ""},
		{"2", "3", "false", "2024-03-02", "Sarah", ""},
		{"3", "", "yes", "2024-03-03 10:00:00", "4"},
	}

	d, err := Infer("people", header, rows)
	require.NoError(t, err)

	types := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		types[i] = c.Type
	}
	assert.Equal(t, []string{TypeInt, TypeFloat, TypeBool, TypeTime, TypeString, TypeString}, types)
	assert.False(t, d.Columns[0].IsNullable())
	assert.True(t, d.Columns[1].IsNullable())
	assert.True(t, d.Columns[5].IsNullable())

	_, err = Infer("people", nil, rows)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestInferSampleSize(t *testing.T) {
	rows := [][]string{{"1"}, {"2"}, {"x"}}
	d, err := NewInferenceEngine(nil, 2).Infer("t", []string{"a"}, rows)
	require.NoError(t, err)
	assert.Equal(t, TypeInt, d.Columns[0].Type)
}

func TestDiff(t *testing.T) {
	old := &Definition{Name: "t", Columns: []ColumnDef{
		{Name: "id", Type: TypeInt},
		{Name: "name", Type: TypeString, Size: 10},
		{Name: "gone", Type: TypeBool},
	}}
	required := false
	new := &Definition{Name: "t", Columns: []ColumnDef{
		{Name: "id", Type: TypeInt64, Nullable: &required},
		{Name: "name", Type: TypeString, Size: 20},
		{Name: "extra", Type: TypeString},
	}}

	changes := Diff(old, new)
	kinds := make([]ChangeType, len(changes))
	for i, c := range changes {
		kinds[i] = c.Type
	}
	assert.Equal(t, []ChangeType{
		ChangeTypeModifyType,
		ChangeTypeModifyNullable,
		ChangeTypeModifySize,
		ChangeTypeRemoveColumn,
		ChangeTypeAddColumn,
	}, kinds)

	assert.True(t, changes[0].Breaking())
	assert.True(t, changes[1].Breaking())
	assert.False(t, changes[2].Breaking())
	assert.False(t, changes[3].Breaking())
	assert.False(t, changes[4].Breaking())
	assert.False(t, Compatible(old, new))
	assert.True(t, Compatible(old, old))
}
