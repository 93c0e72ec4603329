package recommendations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
)

type stubClient struct {
	out     string
	err     error
	calls   int
	prompts []string
}

func (s *stubClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.out, s.err
}

func newRequester(c llm.Client) *Requester {
	reg := llm.NewRegistry(llm.BackendOllama)
	reg.Register(llm.BackendOllama, c, []string{"llama3.2"}, true)
	reg.Register(llm.BackendGemini, llm.Unavailable{Backend: llm.BackendGemini}, []string{"gemini-1.5-flash"}, false)
	return NewRequester(reg, 15)
}

var oneCandidate = []catalog.Product{{ID: "P1", Category: "Electronics:Phones", Rating: 4.5}}

func TestRequestSuccess(t *testing.T) {
	stub := &stubClient{out: "```json\n[{\"product_id\":\"P1\",\"explanation\":\"Great fit.\"}]\n```"}
	items, err := newRequester(stub).Request(context.Background(), "profile", oneCandidate, llm.BackendOllama, "llama3.2")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "P1" || *items[0].Explanation != "Great fit." {
		t.Fatalf("unexpected items %+v", items)
	}
	if stub.calls != 1 || !strings.Contains(stub.prompts[0], "- ID: P1") {
		t.Fatalf("expected a single call carrying the candidate block")
	}
}

func TestRequestNoCandidatesSkipsBackend(t *testing.T) {
	stub := &stubClient{out: "[]"}
	_, err := newRequester(stub).Request(context.Background(), "profile", nil, llm.BackendOllama, "llama3.2")
	if kindOf(t, err) != KindNoCandidates {
		t.Fatalf("expected KindNoCandidates")
	}
	if err.Error() != "Could not generate: No candidates." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if stub.calls != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestRequestUnknownBackend(t *testing.T) {
	stub := &stubClient{out: "[]"}
	req := newRequester(stub)
	for _, name := range []llm.Backend{"claude", llm.BackendOpenAI} {
		_, err := req.Request(context.Background(), "profile", oneCandidate, name, "m")
		if kindOf(t, err) != KindUnknownBackend {
			t.Fatalf("%s: expected KindUnknownBackend", name)
		}
		if err.Error() != "Invalid service configuration: "+string(name) {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}
	if stub.calls != 0 {
		t.Fatalf("no network call expected")
	}
}

func TestRequestWrapsBackendError(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	_, err := newRequester(stub).Request(context.Background(), "profile", oneCandidate, llm.BackendOllama, "llama3.2")
	if kindOf(t, err) != KindBackend {
		t.Fatalf("expected KindBackend")
	}
	if err.Error() != "Could not get recommendations from ollama: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRequestMissingCredential(t *testing.T) {
	_, err := newRequester(&stubClient{}).Request(context.Background(), "profile", oneCandidate, llm.BackendGemini, "gemini-1.5-flash")
	if kindOf(t, err) != KindBackend || !errors.Is(err, llm.ErrMissingCredential) {
		t.Fatalf("expected backend error wrapping ErrMissingCredential, got %v", err)
	}
}

func TestRequestInvalidJSONKeepsRaw(t *testing.T) {
	stub := &stubClient{out: "Sorry, I cannot help."}
	_, err := newRequester(stub).Request(context.Background(), "profile", oneCandidate, llm.BackendOllama, "llama3.2")
	var recErr *Error
	if !errors.As(err, &recErr) || recErr.Kind != KindInvalidJSON {
		t.Fatalf("expected KindInvalidJSON, got %v", err)
	}
	if recErr.RawOutput != "Sorry, I cannot help." {
		t.Fatalf("expected raw output retained")
	}
	if stub.calls != 1 {
		t.Fatalf("expected no retry, got %d calls", stub.calls)
	}
}
