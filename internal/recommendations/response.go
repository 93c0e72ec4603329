package recommendations

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	labeledFence = "```json"
	fence        = "```"
)

// Item is one ranked recommendation. Rank is the position in the slice.
type Item struct {
	ProductID   string  `json:"product_id"`
	Explanation *string `json:"explanation"`
}

// ParseResponse validates raw model output. It strips code fences, then
// requires a non-empty JSON array. Elements are returned untouched; their
// shape is checked by DecodeItems.
func ParseResponse(raw string) ([]json.RawMessage, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, labeledFence)
	cleaned = strings.TrimPrefix(cleaned, fence)
	cleaned = strings.TrimSuffix(cleaned, fence)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, &Error{Kind: KindEmptyOutput, Reason: "LLM returned empty output."}
	}

	var doc json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &Error{
			Kind:      KindInvalidJSON,
			Reason:    "LLM response was not valid JSON.",
			RawOutput: raw,
			Err:       err,
		}
	}
	if !bytes.HasPrefix(bytes.TrimSpace(doc), []byte("[")) {
		return nil, &Error{Kind: KindNotAList, Reason: "LLM returned JSON but not in the expected list format."}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(doc, &elems); err != nil {
		return nil, &Error{
			Kind:      KindInvalidJSON,
			Reason:    "LLM response was not valid JSON.",
			RawOutput: raw,
			Err:       err,
		}
	}
	return elems, nil
}

// DecodeItems converts array elements into Items without enforcing count or
// required keys. Elements that are not objects, or whose product_id is not a
// string or number, yield an Item with an empty ProductID.
func DecodeItems(elems []json.RawMessage) []Item {
	items := make([]Item, 0, len(elems))
	for _, elem := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			items = append(items, Item{})
			continue
		}
		items = append(items, Item{
			ProductID:   decodeID(obj["product_id"]),
			Explanation: decodeExplanation(obj["explanation"]),
		})
	}
	return items
}

func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func decodeExplanation(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	// A JSON null leaves the pointer nil.
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}
