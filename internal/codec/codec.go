// Package codec is the serialization boundary for structured question and
// answer fields. Structured values live in TEXT columns as JSON; everything
// crossing that boundary goes through an explicit encode/decode pair here.
//
// Decoding is deliberately forgiving: NULL or empty text yields an empty
// structure, a double-encoded value (a JSON string that itself contains JSON,
// which older rows carry) is unwrapped and retried, and malformed text
// degrades to an empty structure instead of surfacing an error.
package codec

import "encoding/json"

// ImageOptions carries the selection lists attached to a hybrid
// image+selection question.
type ImageOptions struct {
	Checkboxes     []string `json:"checkboxes"`
	MultipleChoice []string `json:"multiple_choice"`
}

// Annotation is one admin-placed marker on a reference image.
type Annotation struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ImageSelection bundles the per-image checkbox/choice selections a
// respondent attached to one uploaded image.
type ImageSelection struct {
	Image      int      `json:"image"`
	Checkboxes []string `json:"checkboxes,omitempty"`
	Choice     string   `json:"choice,omitempty"`
}

// EncodeStrings encodes a string list for storage. A nil or empty list
// encodes as "[]" so Decode(Encode(v)) round-trips to an empty slice.
func EncodeStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStrings decodes a stored string list, falling back to an empty slice.
func DecodeStrings(s string) []string {
	v := []string{}
	decodeInto(s, &v)
	if v == nil {
		v = []string{}
	}
	return v
}

func EncodeImageOptions(v ImageOptions) string {
	if v.Checkboxes == nil {
		v.Checkboxes = []string{}
	}
	if v.MultipleChoice == nil {
		v.MultipleChoice = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return `{"checkboxes":[],"multiple_choice":[]}`
	}
	return string(b)
}

func DecodeImageOptions(s string) ImageOptions {
	v := ImageOptions{}
	decodeInto(s, &v)
	if v.Checkboxes == nil {
		v.Checkboxes = []string{}
	}
	if v.MultipleChoice == nil {
		v.MultipleChoice = []string{}
	}
	return v
}

func EncodeAnnotations(v []Annotation) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func DecodeAnnotations(s string) []Annotation {
	v := []Annotation{}
	decodeInto(s, &v)
	if v == nil {
		v = []Annotation{}
	}
	return v
}

func EncodeImageSelections(v []ImageSelection) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func DecodeImageSelections(s string) []ImageSelection {
	v := []ImageSelection{}
	decodeInto(s, &v)
	if v == nil {
		v = []ImageSelection{}
	}
	return v
}

// EncodeText encodes a single scalar value (e.g. a selected choice) as a
// JSON string for storage.
func EncodeText(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// DecodeText decodes a stored value that may be a bare string or a JSON
// string. Used for single-choice values saved by older writers that wrapped
// the choice in JSON.
func DecodeText(s string) string {
	if s == "" || s == "null" {
		return ""
	}
	var out string
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out
	}
	return s
}

// decodeInto unmarshals s into out, unwrapping one level of double encoding.
// On any failure out is left untouched (its zero value).
func decodeInto(s string, out any) {
	if s == "" || s == "null" {
		return
	}
	if err := json.Unmarshal([]byte(s), out); err == nil {
		return
	}
	// Older rows were stringified twice: the column holds a JSON string
	// whose contents are the real JSON document.
	var inner string
	if err := json.Unmarshal([]byte(s), &inner); err == nil && inner != "" {
		_ = json.Unmarshal([]byte(inner), out)
	}
}
