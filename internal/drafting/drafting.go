// Package drafting turns a crop and land description into a requirements
// draft using a text generator.
package drafting

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"farm-planner/internal/llm"
	"farm-planner/internal/validation"
)

// MaxLandArea is the largest land area, in hectares, a draft can be asked for.
const MaxLandArea = 10000

//go:embed system_prompt.md
var systemPrompt string

//go:embed user_prompt.md
var userPrompt string

var userTemplate = template.Must(template.New("user").Parse(userPrompt))

// Prompt describes the planting a draft is requested for.
type Prompt struct {
	CropType string  `json:"cropType"`
	LandArea float64 `json:"landArea"`
	SoilType string  `json:"soilType,omitempty"`
	Season   string  `json:"season,omitempty"`
	Location string  `json:"location,omitempty"`
}

// Validate checks the prompt before any request is made.
func (p Prompt) Validate() error {
	if strings.TrimSpace(p.CropType) == "" {
		return validation.New("cropType", "crop type is required")
	}
	if p.LandArea <= 0 {
		return validation.New("landArea", "land area must be greater than 0")
	}
	if p.LandArea > MaxLandArea {
		return validation.New("landArea", "land area is too large (maximum 10,000 hectares)")
	}
	return nil
}

// Result is a generated draft with its usage metadata. Latency is also set
// when generation fails.
type Result struct {
	Text    string
	Usage   llm.TokenUsage
	Latency time.Duration
}

// Generator produces drafts. It makes a single generation call per draft.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate validates p and requests a draft for it.
func (g *Generator) Generate(ctx context.Context, p Prompt) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	prompt, err := buildUserPrompt(p)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, llm.Request{System: systemPrompt, Prompt: prompt})
	if err != nil {
		return Result{Latency: time.Since(start)}, fmt.Errorf("failed to generate draft: %w", err)
	}
	return Result{
		Text:    resp.Content,
		Usage:   resp.Usage,
		Latency: time.Since(start),
	}, nil
}

type userPromptData struct {
	CropType string
	LandArea string
	SoilType string
	Season   string
	Location string
}

func buildUserPrompt(p Prompt) (string, error) {
	var buf bytes.Buffer
	err := userTemplate.Execute(&buf, userPromptData{
		CropType: strings.TrimSpace(p.CropType),
		LandArea: strconv.FormatFloat(p.LandArea, 'f', -1, 64),
		SoilType: strings.TrimSpace(p.SoilType),
		Season:   strings.TrimSpace(p.Season),
		Location: strings.TrimSpace(p.Location),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render draft prompt: %w", err)
	}
	return buf.String(), nil
}
