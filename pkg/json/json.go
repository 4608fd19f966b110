// Package json provides JSON encoding for records and tables on top of
// goccy/go-json, with pooled buffers and a streaming encoder for array and
// line-delimited output.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// NewEncoder returns an encoder that does not escape HTML.
func NewEncoder(w io.Writer) *gojson.Encoder {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// NewDecoder returns a decoder that keeps numbers as json.Number so integer
// cells survive decoding without passing through float64.
func NewDecoder(r io.Reader) *gojson.Decoder {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// Number is the decoded form of JSON numbers from NewDecoder.
type Number = gojson.Number

// MarshalRecord encodes a record as a JSON object whose keys keep the
// record's field order.
func MarshalRecord(r record.Record[string]) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := appendRecord(buf, r); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

func appendRecord(buf *bytes.Buffer, r record.Record[string]) error {
	enc := NewEncoder(buf)
	buf.WriteByte('{')
	var err error
	first := true
	r.Range(func(field string, value interface{}) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err = encodeValue(enc, buf, field); err != nil {
			return false
		}
		buf.WriteByte(':')
		err = encodeValue(enc, buf, value)
		return err == nil
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// encodeValue encodes v into buf without the newline Encoder appends.
func encodeValue(enc *gojson.Encoder, buf *bytes.Buffer, v interface{}) error {
	if err := enc.Encode(v); err != nil {
		return err
	}
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
	return nil
}

// StreamingEncoder writes a sequence of records either as one JSON array or
// as line-delimited JSON.
type StreamingEncoder struct {
	writer      io.Writer
	buffer      *bytes.Buffer
	firstRecord bool
	isArray     bool
	pretty      bool
	indent      string
}

// NewStreamingEncoder creates a new streaming encoder. Nothing is written
// until the first call to Encode or Close.
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	return &StreamingEncoder{
		writer:      w,
		buffer:      GetBuffer(),
		firstRecord: true,
		isArray:     isArray,
	}
}

// SetPretty enables indentation of each record.
func (se *StreamingEncoder) SetPretty(pretty bool, indent string) {
	se.pretty = pretty
	se.indent = indent
}

// Encode writes one record.
func (se *StreamingEncoder) Encode(r record.Record[string]) error {
	se.buffer.Reset()
	if se.isArray {
		if se.firstRecord {
			se.buffer.WriteByte('[')
		} else {
			se.buffer.WriteByte(',')
		}
		if se.pretty {
			se.buffer.WriteByte('\n')
		}
	}
	se.firstRecord = false

	data, err := MarshalRecord(r)
	if err != nil {
		return err
	}
	if se.pretty {
		prefix := ""
		if se.isArray {
			prefix = se.indent
			se.buffer.WriteString(prefix)
		}
		if err := gojson.Indent(se.buffer, data, prefix, se.indent); err != nil {
			return err
		}
	} else {
		se.buffer.Write(data)
	}
	if !se.isArray {
		se.buffer.WriteByte('\n')
	}

	_, err = se.writer.Write(se.buffer.Bytes())
	return err
}

// Close finishes the output. For arrays it writes the closing bracket, or
// an empty array if nothing was encoded.
func (se *StreamingEncoder) Close() error {
	defer PutBuffer(se.buffer)
	if !se.isArray {
		return nil
	}

	var tail []byte
	switch {
	case se.firstRecord:
		tail = []byte("[]\n")
	case se.pretty:
		tail = []byte("\n]\n")
	default:
		tail = []byte("]\n")
	}
	_, err := se.writer.Write(tail)
	return err
}
