package main

// Run one recommendation request from the command line:
//   go run ./cmd/prompttest -customer C1000 -backend ollama -model llama3.2
// With -prompt-only the rendered prompt is printed and no backend is called.

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"shopping-buddy/internal/bootstrap"
	"shopping-buddy/internal/candidates"
	"shopping-buddy/internal/recommendations"
	"shopping-buddy/internal/shared/config"
	"shopping-buddy/internal/storefront"
)

type result struct {
	CustomerID      string           `json:"customerId"`
	Backend         string           `json:"backend"`
	Model           string           `json:"model"`
	Profile         string           `json:"profile,omitempty"`
	Recommendations []storefront.Row `json:"recommendations,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		exitErr(fmt.Sprintf("load config: %v", err))
	}

	customerID := flag.String("customer", "", "Customer ID to recommend for")
	backend := flag.String("backend", cfg.LLMService, "LLM backend (ollama, gemini, openai, yandex)")
	model := flag.String("model", "", "Generation model")
	promptOnly := flag.Bool("prompt-only", false, "Print the prompt instead of calling the backend")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	flag.Parse()

	if strings.TrimSpace(*customerID) == "" {
		exitErr("customer is required")
	}

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		exitErr(fmt.Sprintf("bootstrap: %v", err))
	}
	defer app.Close()

	if *promptOnly {
		prompt, err := renderPrompt(ctx, app, *customerID)
		if err != nil {
			app.Close()
			exitErr(err.Error())
		}
		fmt.Println(prompt)
		return
	}

	out := app.Storefront.Recommend(ctx, storefront.Input{CustomerID: *customerID, Backend: *backend, Model: *model})
	res := result{
		CustomerID:      *customerID,
		Backend:         *backend,
		Model:           *model,
		Profile:         out.Profile,
		Recommendations: out.Rows,
	}
	if out.Failure != nil {
		res.Error = out.Failure.Message
	}

	pretty, err := prettyJSON(res)
	if err != nil {
		app.Close()
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			app.Close()
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		app.Close()
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if out.Failure != nil {
		app.Close()
		os.Exit(1)
	}
}

func renderPrompt(ctx context.Context, app *bootstrap.App, customerID string) (string, error) {
	profile, err := app.Profiles.Get(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("profile: %w", err)
	}
	cands := candidates.Select(app.Catalog, customerID, app.Config.MaxCandidates)
	if len(cands) == 0 {
		return "", fmt.Errorf("no candidates for %s", customerID)
	}
	return recommendations.BuildPrompt(profile, cands, app.Config.MaxCandidateDetails)
}

func prettyJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
