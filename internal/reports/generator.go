package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"profile-report/internal/llm"
	"profile-report/internal/shared/telemetry"
	"profile-report/internal/templates"
)

// DefaultTemperature keeps section output near-deterministic.
const DefaultTemperature float32 = 0.1

// Generator produces the text of one report section.
type Generator struct {
	LLM         llm.Completer
	Model       string
	Temperature float32
}

// NewGenerator constructs a Generator with the default temperature.
func NewGenerator(client llm.Completer, model string) *Generator {
	return &Generator{LLM: client, Model: model, Temperature: DefaultTemperature}
}

// GenerateSection issues one completion with the section prompt as the system
// message and the serialized artifacts as the user message.
func (g *Generator) GenerateSection(ctx context.Context, section templates.Section, a Artifacts) (string, error) {
	const op = "generate section"

	userContent, err := BuildContext(a)
	if err != nil {
		return "", newError(KindMalformed, op, err)
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: section.Prompt},
		{Role: llm.RoleUser, Content: userContent},
	}

	start := time.Now()
	out, err := g.LLM.Complete(ctx, llm.CompletionRequest{
		Model:       g.Model,
		Messages:    messages,
		Temperature: llm.Temperature(g.Temperature),
	})
	fields := map[string]any{
		"section":     section.Name,
		"model":       g.Model,
		"prompt_hash": llm.PromptHash(messages),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("report.section.failed", fields)
		return "", newError(KindCompletion, op, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		telemetry.Error("report.section.failed", fields)
		return "", newError(KindCompletion, op, fmt.Errorf("empty completion for section %q", section.Name))
	}
	fields["chars"] = len(out)
	telemetry.Info("report.section.generated", fields)
	return out, nil
}

// BuildContext serializes the artifacts in a fixed order under headed blocks.
func BuildContext(a Artifacts) (string, error) {
	blocks := []struct {
		heading string
		value   any
	}{
		{"Documents", a.ParsedDocuments},
		{"Questionnaire Responses", a.Questionnaire},
		{"Approved Summary", a.Summary},
		{"Q&A Session", a.QA},
	}

	var b strings.Builder
	for i, block := range blocks {
		payload, err := json.MarshalIndent(block.value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", block.heading, err)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.heading)
		b.WriteString(":\n")
		b.Write(payload)
	}
	return b.String(), nil
}
