package section

import "fmt"

// Record is one extracted row of a section, keyed by field name. Values are
// whatever the model emitted; strings in practice, nested maps for Year_N
// sub-objects, occasionally numbers. Consumers stringify on the way to the
// sheet.
type Record map[string]interface{}

// DealID returns the record's Deal_ID as a string, or "" when unset.
func (r Record) DealID() string {
	return r.StringField(DealIDField)
}

// SetDealID force-sets the Deal_ID field, overwriting anything the model put
// there. Every record is stamped with the filename-derived Deal before it
// leaves the extractor.
func (r Record) SetDealID(id string) {
	r[DealIDField] = id
}

// StringField returns the field rendered as a string. Missing fields come
// back as the empty string; non-string scalars are formatted with %v.
func (r Record) StringField(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ParseRecords pulls the record list for a section out of a decoded model
// payload of the shape {"<Section>": [{...}, ...]}. Records that are not
// JSON objects are skipped. A missing or malformed payload key yields an
// empty slice, never an error; upstream parse failures already collapsed to
// an empty object.
func ParseRecords(n Name, payload map[string]interface{}) []Record {
	raw, ok := payload[string(n)]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		// Some responses wrap a single object instead of a list.
		if m, ok := raw.(map[string]interface{}); ok {
			return []Record{Record(m)}
		}
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Record(m))
	}
	return out
}
