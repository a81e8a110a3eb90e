// Package clinicv1 holds the clinic.v1 messages and service descriptor
// described by api/clinic/v1/clinic.proto. Messages encode themselves with
// protowire and travel through a codec registered under the "proto" name.
package clinicv1

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Message is implemented by every clinic.v1 message.
type Message interface {
	AppendWire(b []byte) []byte
	// ConsumeField decodes the value of field num from b and returns the
	// bytes read. It returns 0 for fields it does not know.
	ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error)
}

var ErrMalformed = errors.New("malformed message")

func Marshal(m Message) []byte { return m.AppendWire(nil) }

func Unmarshal(b []byte, m Message) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := m.ConsumeField(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

// ---------- encoding ----------

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendOptString writes s even when empty, so presence survives.
func appendOptString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

func appendInt(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendSint(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.AppendWire(nil))
}

func appendTimestamp(b []byte, num protowire.Number, ts *timestamppb.Timestamp) []byte {
	if ts == nil {
		return b
	}
	var inner []byte
	if ts.Seconds != 0 {
		inner = protowire.AppendTag(inner, 1, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(ts.Seconds))
	}
	if ts.Nanos != 0 {
		inner = protowire.AppendTag(inner, 2, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(ts.Nanos))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

// ---------- decoding ----------

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	*dst = string(v)
	return n, nil
}

func consumeOptString(typ protowire.Type, b []byte, dst **string) (int, error) {
	var s string
	n, err := consumeString(typ, b, &s)
	if n > 0 {
		*dst = &s
	}
	return n, err
}

func consumeInt(typ protowire.Type, b []byte, dst *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n, nil
	}
	*dst = int32(v)
	return n, nil
}

func consumeSint(typ protowire.Type, b []byte, dst *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n, nil
	}
	*dst = int32(protowire.DecodeZigZag(v))
	return n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n, nil
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func consumeMessage(typ protowire.Type, b []byte, m Message) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	if err := Unmarshal(v, m); err != nil {
		return 0, err
	}
	return n, nil
}

func consumeTimestamp(typ protowire.Type, b []byte, dst **timestamppb.Timestamp) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	ts := &timestamppb.Timestamp{}
	for len(v) > 0 {
		num, t, m := protowire.ConsumeTag(v)
		if m < 0 {
			return m, nil
		}
		v = v[m:]
		switch {
		case num == 1 && t == protowire.VarintType:
			x, m := protowire.ConsumeVarint(v)
			if m < 0 {
				return m, nil
			}
			ts.Seconds = int64(x)
			v = v[m:]
		case num == 2 && t == protowire.VarintType:
			x, m := protowire.ConsumeVarint(v)
			if m < 0 {
				return m, nil
			}
			ts.Nanos = int32(x)
			v = v[m:]
		default:
			m := protowire.ConsumeFieldValue(num, t, v)
			if m < 0 {
				return m, nil
			}
			v = v[m:]
		}
	}
	*dst = ts
	return n, nil
}
