package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Page is one page of a list endpoint after envelope normalisation.
type Page[T any] struct {
	Items []T
	Total int
}

// Envelope locates the records and the total count inside a list response.
// List endpoints disagree on nesting, so each Resource carries its own.
// Paths use gjson syntax.
type Envelope struct {
	Items string
	Total string
}

// Envelopes used by the admin API.
var (
	// {"data": {"data": [...], "totalData": 47}}
	NestedTotalData = Envelope{Items: "data.data", Total: "data.totalData"}

	// {"data": {"data": [...], "pagination": {"total": 47}}}
	NestedPagination = Envelope{Items: "data.data", Total: "data.pagination.total"}

	// {"data": [...], "totalData": 47}
	FlatTotalData = Envelope{Items: "data", Total: "totalData"}
)

// decodePage applies the envelope to a list body. A missing total falls back
// to the number of records returned.
func decodePage[T any](env Envelope, body []byte) (Page[T], error) {
	res := gjson.ParseBytes(body)

	items := res.Get(env.Items)
	if !items.Exists() || items.Type == gjson.Null {
		return Page[T]{Items: []T{}}, nil
	}
	if !items.IsArray() {
		return Page[T]{}, decodeError(0, fmt.Errorf("%s is not an array", env.Items))
	}

	arr := items.Array()
	page := Page[T]{Items: make([]T, 0, len(arr))}
	for i, item := range arr {
		var rec T
		if err := json.Unmarshal(normalizeID([]byte(item.Raw)), &rec); err != nil {
			return Page[T]{}, decodeError(0, fmt.Errorf("record %d: %w", i, err))
		}
		page.Items = append(page.Items, rec)
	}

	if total := res.Get(env.Total); total.Exists() && total.Type == gjson.Number {
		page.Total = int(total.Int())
	} else {
		page.Total = len(page.Items)
	}
	return page, nil
}

// decodeRecord reads a single record that is either wrapped in "data" or
// returned bare. ok is false when the body is a status/message envelope
// without a record.
func decodeRecord[T any](body []byte) (rec T, ok bool, err error) {
	if len(body) == 0 {
		return rec, false, nil
	}
	res := gjson.ParseBytes(body)

	raw := res
	if data := res.Get("data"); data.Exists() {
		raw = data
	}
	if !raw.IsObject() {
		return rec, false, nil
	}
	if !raw.Get("id").Exists() && !raw.Get("_id").Exists() {
		return rec, false, nil
	}

	if err := json.Unmarshal(normalizeID([]byte(raw.Raw)), &rec); err != nil {
		return rec, false, decodeError(0, err)
	}
	return rec, true, nil
}

// normalizeID copies "_id" into "id" so records decode into an ID field
// regardless of which name the endpoint uses.
func normalizeID(raw []byte) []byte {
	res := gjson.ParseBytes(raw)
	if res.Get("id").Exists() {
		return raw
	}
	mongoID := res.Get("_id")
	if !mongoID.Exists() {
		return raw
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	id, err := json.Marshal(mongoID.String())
	if err != nil {
		return raw
	}
	obj["id"] = id
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}
