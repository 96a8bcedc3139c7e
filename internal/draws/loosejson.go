package draws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field aliases for loosely structured JSON feeds, in priority order: the
// first key present with a non-null value wins.
var (
	envelopeKeys   = []string{"draws", "data", "results"}
	dateKeys       = []string{"date", "drawDate"}
	bonusKeys      = []string{"bonus", "bonusNumber", "bonusBall"}
	numbersKeys    = []string{"numbers", "results"}
	drawNumberKeys = []string{"drawNumber", "number"}
)

// FromLooseJSON normalizes either {"draws":[...]} or a bare array of draw
// objects. Elements that are not objects, or whose fields do not coerce, are
// skipped.
func (n *Normalizer) FromLooseJSON(raw []byte, limit int) ([]Record, error) {
	items, err := drawItems(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, max(limit, 0))
	if limit <= 0 {
		return out, nil
	}
	for _, it := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(it, &obj); err != nil || obj == nil {
			continue
		}
		rec, ok := n.recordFromObject(obj)
		if !ok {
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func drawItems(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty json body", ErrSchemaRejected)
	}
	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaRejected, err)
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaRejected, err)
		}
		list, ok := firstPresent(obj, envelopeKeys)
		if !ok {
			return nil, fmt.Errorf("%w: no draw list under %v", ErrSchemaRejected, envelopeKeys)
		}
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, fmt.Errorf("%w: draw list is not an array", ErrSchemaRejected)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: body is neither an array nor an object", ErrSchemaRejected)
	}
}

func (n *Normalizer) recordFromObject(obj map[string]json.RawMessage) (Record, bool) {
	rawDate, ok := firstPresent(obj, dateKeys)
	if !ok {
		return Record{}, false
	}
	var ds string
	if err := json.Unmarshal(rawDate, &ds); err != nil {
		return Record{}, false
	}
	t, err := ParseDate(ds)
	if err != nil || CheckWeekday(t, n.Target) != nil {
		return Record{}, false
	}

	rawBonus, ok := firstPresent(obj, bonusKeys)
	if !ok {
		return Record{}, false
	}
	bonus, ok := jsonInt(rawBonus)
	if !ok {
		return Record{}, false
	}

	rec := Record{Date: FormatDate(t), BonusNumber: bonus, Numbers: []int{}}
	if rawNums, ok := firstPresent(obj, numbersKeys); ok {
		rec.Numbers = jsonInts(rawNums)
	}
	if rawDN, ok := firstPresent(obj, drawNumberKeys); ok {
		if v, ok := jsonInt(rawDN); ok {
			rec.DrawNumber = intPtr(v)
		}
	}
	return rec, true
}

func firstPresent(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if t := bytes.TrimSpace(v); len(t) == 0 || bytes.Equal(t, []byte("null")) {
			continue
		}
		return v, true
	}
	return nil, false
}

// jsonInt accepts a JSON number or a numeric string.
func jsonInt(raw json.RawMessage) (int, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return floatToInt(x)
	case string:
		return Atoi(x)
	}
	return 0, false
}

// jsonInts reads an array of numbers, or a "1, 2, 3" string. Entries that do
// not coerce are dropped.
func jsonInts(raw json.RawMessage) []int {
	out := []int{}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, it := range arr {
			if v, ok := jsonInt(it); ok {
				out = append(out, v)
			}
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '-' }) {
			if v, ok := Atoi(f); ok {
				out = append(out, v)
			}
		}
	}
	return out
}
