package recommendations

import (
	"encoding/json"
	"errors"
	"testing"
)

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var recErr *Error
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return recErr.Kind
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantLen  int
		wantKind Kind
	}{
		{name: "labeled fence", raw: "```json\n[{\"product_id\":\"P1\"}]\n```", wantLen: 1},
		{name: "unlabeled fence", raw: "```\n[{\"product_id\":\"P1\"},{\"product_id\":\"P2\"}]\n```", wantLen: 2},
		{name: "bare array", raw: "  [] ", wantLen: 0},
		{name: "short array accepted", raw: `[{"product_id":"P1"},{"foo":1},"x"]`, wantLen: 3},
		{name: "not json", raw: "not json", wantKind: KindInvalidJSON},
		{name: "object", raw: `{"a":1}`, wantKind: KindNotAList},
		{name: "string literal", raw: `"hello"`, wantKind: KindNotAList},
		{name: "whitespace", raw: "   ", wantKind: KindEmptyOutput},
		{name: "fence only", raw: "```json\n```", wantKind: KindEmptyOutput},
		{name: "prose around array", raw: "Here you go: [1]", wantKind: KindInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elems, err := ParseResponse(tt.raw)
			if tt.wantKind != "" {
				if got := kindOf(t, err); got != tt.wantKind {
					t.Fatalf("kind = %q, want %q", got, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if len(elems) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(elems), tt.wantLen)
			}
		})
	}
}

func TestParseResponseKeepsRawOutputOnlyForInvalidJSON(t *testing.T) {
	_, err := ParseResponse("  not json  ")
	var recErr *Error
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *Error")
	}
	if recErr.RawOutput != "  not json  " {
		t.Fatalf("expected untrimmed raw output, got %q", recErr.RawOutput)
	}
	if recErr.Error() != "LLM response was not valid JSON." {
		t.Fatalf("unexpected message %q", recErr.Error())
	}

	_, err = ParseResponse(`{"a":1}`)
	if !errors.As(err, &recErr) || recErr.RawOutput != "" {
		t.Fatalf("expected no raw output for not-a-list")
	}
}

func TestDecodeItemsIsLenient(t *testing.T) {
	elems := []json.RawMessage{
		json.RawMessage(`{"product_id":"P1","explanation":"Fits winter."}`),
		json.RawMessage(`{"product_id":"P2","explanation":null}`),
		json.RawMessage(`{"explanation":"no id"}`),
		json.RawMessage(`{"product_id":42}`),
		json.RawMessage(`"just a string"`),
		json.RawMessage(`{"product_id":"P3","explanation":7}`),
	}
	items := DecodeItems(elems)
	if len(items) != len(elems) {
		t.Fatalf("expected one item per element, got %d", len(items))
	}
	if items[0].ProductID != "P1" || items[0].Explanation == nil || *items[0].Explanation != "Fits winter." {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Explanation != nil {
		t.Fatalf("expected null explanation to be nil")
	}
	if items[2].ProductID != "" {
		t.Fatalf("expected missing product id")
	}
	if items[3].ProductID != "42" {
		t.Fatalf("expected numeric id to be kept as text, got %q", items[3].ProductID)
	}
	if items[4].ProductID != "" {
		t.Fatalf("expected non-object element to have no id")
	}
	if items[5].Explanation != nil {
		t.Fatalf("expected non-string explanation to be dropped")
	}
}

func TestParsedNullExplanationStaysNil(t *testing.T) {
	elems, err := ParseResponse("```json\n[{\"product_id\":\"P1\",\"explanation\":null}]\n```")
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	items := DecodeItems(elems)
	if len(items) != 1 || items[0].ProductID != "P1" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Explanation != nil {
		t.Fatalf("expected nil explanation, got %q", *items[0].Explanation)
	}
}
