package codec

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/klyja/geco/common"
	"google.golang.org/protobuf/encoding/protowire"
)

// --- Writing ---

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendRepeatedString writes every element, empty strings included.
func appendRepeatedString(b []byte, num protowire.Number, ss []string) []byte {
	for _, s := range ss {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

// appendInt32 writes v as a sign-extended varint, the int32 and enum encoding.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	if math.Float32bits(v) == 0 {
		return b
	}
	return appendFloatAlways(b, num, v)
}

func appendFloatAlways(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// --- Reading ---

// fieldReader walks the fields of one encoded message.
// After next reports true, num and typ describe the current field and exactly one of the value
// methods or skip must be called before the following next.
type fieldReader struct {
	msg string
	b   []byte
	num protowire.Number
	typ protowire.Type
}

func newFieldReader(msg string, b []byte) *fieldReader {
	return &fieldReader{msg: msg, b: b}
}

// next reads the following tag. It reports false at the end of the message.
func (r *fieldReader) next() (bool, error) {
	if len(r.b) == 0 {
		return false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.b)
	if n < 0 {
		return false, r.fail("tag", protowire.ParseError(n))
	}
	r.num, r.typ, r.b = num, typ, r.b[n:]
	return true, nil
}

func (r *fieldReader) fail(what string, err error) error {
	return &common.DecodeError{Reason: fmt.Sprintf("%s field %d: %s", r.msg, r.num, what), Err: err}
}

func (r *fieldReader) expect(typ protowire.Type) error {
	if r.typ != typ {
		return &common.DecodeError{
			Reason: fmt.Sprintf("%s field %d: wire type %d, want %d", r.msg, r.num, r.typ, typ),
		}
	}
	return nil
}

func (r *fieldReader) int32() (int32, error) {
	if err := r.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(r.b)
	if n < 0 {
		return 0, r.fail("varint", protowire.ParseError(n))
	}
	r.b = r.b[n:]
	return int32(v), nil
}

func (r *fieldReader) float32() (float32, error) {
	if err := r.expect(protowire.Fixed32Type); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeFixed32(r.b)
	if n < 0 {
		return 0, r.fail("fixed32", protowire.ParseError(n))
	}
	r.b = r.b[n:]
	return math.Float32frombits(v), nil
}

func (r *fieldReader) bytes() ([]byte, error) {
	if err := r.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeBytes(r.b)
	if n < 0 {
		return nil, r.fail("length-delimited", protowire.ParseError(n))
	}
	r.b = r.b[n:]
	return v, nil
}

func (r *fieldReader) string() (string, error) {
	v, err := r.bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(v) {
		return "", &common.DecodeError{Reason: fmt.Sprintf("%s field %d: invalid UTF-8", r.msg, r.num)}
	}
	return string(v), nil
}

// skip discards the value of an unknown field.
func (r *fieldReader) skip() error {
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.b)
	if n < 0 {
		return r.fail("unknown field", protowire.ParseError(n))
	}
	r.b = r.b[n:]
	return nil
}
