package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodePayload reconstructs a payload from its JSON form. Mapping key
// order is preserved as it appears in the document.
func DecodePayload(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (Payload, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return Absent{}, nil
	}
	switch t := tok.(type) {
	case string:
		return Text(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			seq := Sequence{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		case '{':
			m := Mapping{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("payload: non-string mapping key %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m = append(m, Entry{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("payload: unsupported JSON token %v", tok)
}

// UnmarshalJSON restores the payload field through DecodePayload; the
// remaining fields decode as usual.
func (r *ExploitRecord) UnmarshalJSON(data []byte) error {
	type alias ExploitRecord
	aux := struct {
		Payload json.RawMessage `json:"payload"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Payload) == 0 {
		r.Payload = Absent{}
		return nil
	}
	p, err := DecodePayload(aux.Payload)
	if err != nil {
		return err
	}
	r.Payload = p
	return nil
}
