// Package strings provides pooled string building and value formatting
// helpers shared by the record, export and SQL packages.
package strings

import (
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"
	"unsafe"
)

// BytesToString converts a byte slice to a string without allocation.
// The string shares memory with b; b must not be modified afterwards.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Builder is an append-only byte buffer that renders to a string.
type Builder struct {
	buf []byte
}

// NewBuilder creates a new builder with the given capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteRune appends the UTF-8 encoding of r.
func (b *Builder) WriteRune(r rune) (int, error) {
	n := len(b.buf)
	b.buf = utf8.AppendRune(b.buf, r)
	return len(b.buf) - n, nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string. The result aliases the builder's memory;
// use Clone before returning the builder to a pool.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Bytes returns the underlying byte slice.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset clears the builder, keeping its capacity.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// BuilderSize selects one of the pooled builder classes.
type BuilderSize int

const (
	Small  BuilderSize = iota // < 1KB
	Medium                    // 1KB - 16KB
	Large                     // 16KB+
)

var builderPools = [...]*sync.Pool{
	Small:  {New: func() interface{} { return NewBuilder(1024) }},
	Medium: {New: func() interface{} { return NewBuilder(16 * 1024) }},
	Large:  {New: func() interface{} { return NewBuilder(64 * 1024) }},
}

func poolFor(size BuilderSize) *sync.Pool {
	if size < Small || size > Large {
		size = Small
	}
	return builderPools[size]
}

// sizeFor picks the builder class for an estimated output length.
func sizeFor(n int) BuilderSize {
	switch {
	case n > 16*1024:
		return Large
	case n > 1024:
		return Medium
	default:
		return Small
	}
}

// GetBuilder retrieves a pooled builder of the specified size.
func GetBuilder(size BuilderSize) *Builder {
	builder := poolFor(size).Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to its pool.
func PutBuilder(builder *Builder, size BuilderSize) {
	if builder == nil {
		return
	}
	builder.Reset()
	poolFor(size).Put(builder)
}

// Clone returns a copy of s that owns its memory.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

// Sprintf is a pooled fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := sizeFor(len(format) + len(args)*16)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)
	return Clone(builder.String())
}

// Join concatenates parts separated by delimiter using a pooled builder.
func Join(parts []string, delimiter string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}

	total := (len(parts) - 1) * len(delimiter)
	for _, s := range parts {
		total += len(s)
	}

	size := sizeFor(total)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	builder.WriteString(parts[0])
	for _, s := range parts[1:] {
		builder.WriteString(delimiter)
		builder.WriteString(s)
	}
	return Clone(builder.String())
}

// BuildWith runs fn against a pooled builder and returns an owned copy of
// what it wrote.
func BuildWith(size BuilderSize, fn func(*Builder)) string {
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fn(builder)
	return Clone(builder.String())
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// PadRight pads s with spaces to width characters. Longer strings are
// returned unchanged.
func PadRight(s string, width int) string {
	n := RuneLen(s)
	if n >= width {
		return s
	}
	return BuildWith(sizeFor(len(s)+width-n), func(b *Builder) {
		b.WriteString(s)
		for i := n; i < width; i++ {
			b.WriteByte(' ')
		}
	})
}

// ValueToString renders a cell value as text. Nil renders as the empty string.
// This is the string form size bounds are measured against.
func ValueToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return Sprintf("%v", value)
	}
}

// SQLBuilder builds SQL statements on a pooled builder. Identifiers are
// quoted with the configured quote character.
type SQLBuilder struct {
	builder *Builder
	size    BuilderSize
	quote   byte
}

// NewSQLBuilder creates a new SQL builder quoting identifiers with quote.
func NewSQLBuilder(estimatedLength int, quote byte) *SQLBuilder {
	size := sizeFor(estimatedLength)
	return &SQLBuilder{
		builder: GetBuilder(size),
		size:    size,
		quote:   quote,
	}
}

// WriteQuery writes a raw SQL fragment.
func (sb *SQLBuilder) WriteQuery(query string) *SQLBuilder {
	sb.builder.WriteString(query)
	return sb
}

// WriteIdentifier writes a quoted identifier, doubling embedded quotes.
func (sb *SQLBuilder) WriteIdentifier(name string) *SQLBuilder {
	sb.builder.WriteByte(sb.quote)
	for i := 0; i < len(name); i++ {
		if name[i] == sb.quote {
			sb.builder.WriteByte(sb.quote)
		}
		sb.builder.WriteByte(name[i])
	}
	sb.builder.WriteByte(sb.quote)
	return sb
}

// WriteIdentifiers writes a comma separated list of quoted identifiers.
func (sb *SQLBuilder) WriteIdentifiers(names []string) *SQLBuilder {
	for i, name := range names {
		if i > 0 {
			sb.builder.WriteString(", ")
		}
		sb.WriteIdentifier(name)
	}
	return sb
}

// String returns the built statement.
func (sb *SQLBuilder) String() string {
	return Clone(sb.builder.String())
}

// Close releases the builder back to the pool.
func (sb *SQLBuilder) Close() {
	if sb.builder != nil {
		PutBuilder(sb.builder, sb.size)
		sb.builder = nil
	}
}
