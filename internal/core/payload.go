package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PayloadKind identifies the shape of a Payload value.
type PayloadKind int

const (
	KindAbsent PayloadKind = iota
	KindText
	KindNumber
	KindSequence
	KindMapping
)

func (k PayloadKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Payload is the closed set of value shapes an attack payload can take.
// It covers the JSON-like space (null, string, number, array, object)
// without admitting arbitrary values. Render is the single defined string
// serialization; defenses that inspect textual content use it instead of
// relying on implicit stringification.
type Payload interface {
	Kind() PayloadKind
	Render() string
	json.Marshaler
}

// Absent is the absence-of-value payload (a null).
type Absent struct{}

// Text is a string payload.
type Text string

// Number is a numeric payload.
type Number float64

// Sequence is an ordered list of payloads.
type Sequence []Payload

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Payload
}

// Mapping is an ordered set of string-keyed pairs. Order is part of the
// value: it keeps rendering and JSON output deterministic.
type Mapping []Entry

func (Absent) Kind() PayloadKind   { return KindAbsent }
func (Text) Kind() PayloadKind     { return KindText }
func (Number) Kind() PayloadKind   { return KindNumber }
func (Sequence) Kind() PayloadKind { return KindSequence }
func (Mapping) Kind() PayloadKind  { return KindMapping }

func (Absent) Render() string   { return "null" }
func (t Text) Render() string   { return string(t) }
func (n Number) Render() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

func (s Sequence) Render() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(renderQuoted(v))
	}
	buf.WriteByte(']')
	return buf.String()
}

func (m Mapping) Render() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(strconv.Quote(e.Key))
		buf.WriteString(": ")
		buf.WriteString(renderQuoted(e.Value))
	}
	buf.WriteByte('}')
	return buf.String()
}

// renderQuoted renders nested values the way collections display them:
// text gets quoted so the textual form of a collection is unambiguous.
func renderQuoted(p Payload) string {
	if t, ok := p.(Text); ok {
		return strconv.Quote(string(t))
	}
	return p.Render()
}

func (Absent) MarshalJSON() ([]byte, error)   { return []byte("null"), nil }
func (t Text) MarshalJSON() ([]byte, error)   { return json.Marshal(string(t)) }
func (n Number) MarshalJSON() ([]byte, error) { return json.Marshal(float64(n)) }

func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Payload(s))
}

func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
