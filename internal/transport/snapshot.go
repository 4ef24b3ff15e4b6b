package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/boothsync/internal/survey"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeSnapshot serializes rs as an indented JSON array.
// An empty set encodes as "[]".
func EncodeSnapshot(rs []survey.Response) ([]byte, error) {
	if rs == nil {
		rs = []survey.Response{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseSnapshot decodes snapshot bytes into a foreign batch.
//
// The input must be a JSON array whose elements are all objects; anything
// else is a format error and no records are returned. Fields inside an
// element are read leniently:
//
//   - text fields accept strings, numbers and booleans; anything else is ""
//   - nps accepts integral numbers and numeric strings ("9", 9.0); absent,
//     null or unreadable scores become NPSUnanswered
//   - booleans accept true/false, "true"/"false" and numbers
//   - selectedProducts accepts an array or a single string
//   - synced stays unset when absent, null or unreadable
//
// Whether each element carries an id is checked by the merge engine.
func ParseSnapshot(data []byte) ([]survey.Response, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, survey.NewFormatError(-1, "snapshot is not a JSON array", nil)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, survey.NewFormatError(-1, "snapshot is not valid JSON", err)
	}

	batch := make([]survey.Response, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, survey.NewFormatError(i, "element is not an object", nil)
		}
		var w wireResponse
		if err := json.Unmarshal(elem, &w); err != nil {
			return nil, survey.NewFormatError(i, "element is not an object", err)
		}
		batch = append(batch, w.response())
	}
	return batch, nil
}

// wireResponse holds the raw value of every known field of a snapshot
// element. Unknown fields are ignored.
type wireResponse struct {
	ID               json.RawMessage `json:"id"`
	Timestamp        json.RawMessage `json:"timestamp"`
	FirstName        json.RawMessage `json:"firstName"`
	LastName         json.RawMessage `json:"lastName"`
	Email            json.RawMessage `json:"email"`
	Role             json.RawMessage `json:"role"`
	NPS              json.RawMessage `json:"nps"`
	InterestedInInfo json.RawMessage `json:"interestedInInfo"`
	SelectedProducts json.RawMessage `json:"selectedProducts"`
	Synced           json.RawMessage `json:"synced"`
	DeviceID         json.RawMessage `json:"deviceId"`
	SectorName       json.RawMessage `json:"sectorName"`
}

func (w wireResponse) response() survey.Response {
	r := survey.Response{
		ID:               looseString(w.ID),
		Timestamp:        looseString(w.Timestamp),
		FirstName:        looseString(w.FirstName),
		LastName:         looseString(w.LastName),
		Email:            looseString(w.Email),
		Role:             survey.Role(looseString(w.Role)),
		NPS:              looseNPS(w.NPS),
		SelectedProducts: looseStrings(w.SelectedProducts),
		DeviceID:         looseString(w.DeviceID),
		SectorName:       looseString(w.SectorName),
	}
	r.InterestedInInfo, _ = looseBool(w.InterestedInInfo)
	if synced, ok := looseBool(w.Synced); ok {
		r.Synced = survey.Bool(synced)
	}
	return r
}

// looseValue decodes raw keeping numbers as json.Number. Absent or invalid
// values decode to nil.
func looseValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func looseString(raw json.RawMessage) string {
	return scalarString(looseValue(raw))
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func looseStrings(raw json.RawMessage) []string {
	out := []string{}
	switch x := looseValue(raw).(type) {
	case []any:
		for _, item := range x {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

func looseBool(raw json.RawMessage) (value, ok bool) {
	switch x := looseValue(raw).(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case json.Number:
		f, err := x.Float64()
		return f != 0, err == nil
	}
	return false, false
}

// maxLooseNPS bounds coerced scores so they always fit an int.
const maxLooseNPS = 1 << 30

func looseNPS(raw json.RawMessage) int {
	var text string
	switch x := looseValue(raw).(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
	default:
		return survey.NPSUnanswered
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxLooseNPS {
		return survey.NPSUnanswered
	}
	return int(f)
}
