package recommendations

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"shopping-buddy/internal/catalog"
)

//go:embed prompts/recommend_v1.txt
var promptV1 string

var promptTemplate = template.Must(template.New("recommend_v1").Parse(promptV1))

const na = "N/A"

// FormatCandidates renders at most maxDetails candidates, one per line, and
// notes how many were left out.
func FormatCandidates(candidates []catalog.Product, maxDetails int) string {
	if len(candidates) == 0 {
		return "No candidate products."
	}
	if maxDetails < 0 {
		maxDetails = 0
	}
	var b strings.Builder
	b.WriteString("Candidate Products (Selected based on profile matching):\n")
	shown := candidates
	if len(shown) > maxDetails {
		shown = shown[:maxDetails]
	}
	for _, p := range shown {
		fmt.Fprintf(&b, "- ID: %s, Cat: %s, Subcat: %s, Brand: %s, Price: %s, Rating: %s\n",
			p.ID,
			textOrNA(p.Category),
			textOrNA(p.Subcategory),
			textOrNA(p.Brand),
			numberOrNA(p.Price),
			numberOrNA(p.Rating),
		)
	}
	if extra := len(candidates) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "... (plus %d more candidates not detailed)\n", extra)
	}
	return b.String()
}

// BuildPrompt embeds the profile and candidate block into the instruction
// template.
func BuildPrompt(profile string, candidates []catalog.Product, maxDetails int) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Profile    string
		Candidates string
	}{
		Profile:    profile,
		Candidates: FormatCandidates(candidates, maxDetails),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func textOrNA(s string) string {
	if s == "" {
		return na
	}
	return s
}

func numberOrNA(v float64) string {
	if v == 0 {
		return na
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
