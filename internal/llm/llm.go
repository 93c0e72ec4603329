// Package llm defines the text-generation backends used for recommendations
// and the registry that dispatches between them.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names a supported text-generation service.
type Backend string

const (
	BackendOllama Backend = "ollama"
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
	BackendYandex Backend = "yandex"
)

var allBackends = []Backend{BackendOllama, BackendGemini, BackendOpenAI, BackendYandex}

var (
	// ErrUnknownBackend is returned for a backend name outside the supported set.
	ErrUnknownBackend = errors.New("unknown llm backend")
	// ErrMissingCredential is returned by a cloud backend whose credential is not configured.
	ErrMissingCredential = errors.New("llm credential not configured")
	// ErrEmptyResponse is returned when a backend answers without any text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Client generates text for a prompt with the named model.
type Client interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Backends lists every supported backend in display order.
func Backends() []Backend {
	out := make([]Backend, len(allBackends))
	copy(out, allBackends)
	return out
}

// ParseBackend maps a user-supplied name onto a Backend.
func ParseBackend(name string) (Backend, error) {
	candidate := Backend(strings.ToLower(strings.TrimSpace(name)))
	for _, b := range allBackends {
		if b == candidate {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}

// Label returns the display name of the backend.
func (b Backend) Label() string {
	switch b {
	case BackendOllama:
		return "Ollama"
	case BackendGemini:
		return "Gemini"
	case BackendOpenAI:
		return "OpenAI"
	case BackendYandex:
		return "YandexGPT"
	default:
		return string(b)
	}
}

// CredentialEnv returns the environment variable holding the backend's
// credential, or "" for backends that need none.
func (b Backend) CredentialEnv() string {
	switch b {
	case BackendGemini:
		return "GOOGLE_API_KEY"
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendYandex:
		return "YANDEX_OAUTH_TOKEN"
	default:
		return ""
	}
}

// Unavailable stands in for a cloud backend whose credential is missing.
type Unavailable struct {
	Backend Backend
}

func (u Unavailable) Generate(ctx context.Context, prompt, model string) (string, error) {
	return "", fmt.Errorf("%w: %s env var not set", ErrMissingCredential, u.Backend.CredentialEnv())
}
