package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adrflow/adrflow/internal/domain/report"
)

const defaultModel = "gpt-4o-mini"

const systemPrompt = `You are a clinical pharmacovigilance assistant. Given an
adverse drug reaction report, respond with ONLY a JSON object of this shape:
{
  "summary": string,
  "severity_score": number (0-10),
  "overall_risk_score": number (0-10),
  "causality_assessment": {"likelihood": string, "reasoning": string},
  "patient_guidance": {"urgency_level": "routine"|"soon"|"urgent", "advice": string},
  "recommended_actions": [string]
}`

// Analyzer produces triage metadata for reports via the OpenAI chat API.
type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer constructs an OpenAI-backed analyzer. An empty model falls back
// to the default.
func NewAnalyzer(apiKey, model string) *Analyzer {
	if model == "" {
		model = defaultModel
	}
	return &Analyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Analyze asks the model to triage the report and parses the response into
// the fixed triage shape.
func (a *Analyzer) Analyze(ctx context.Context, rep *report.Report) (*report.TriageMetadata, error) {
	if a.client == nil {
		return nil, errors.New("openai client not initialized")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(rep)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	triage, err := parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	triage.AnalyzedAt = time.Now().UTC()
	return triage, nil
}

// buildPrompt renders the report as plain text for the model.
func buildPrompt(rep *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Medicine: %s", rep.Medicine.Name)
	if rep.Medicine.Dosage != "" {
		fmt.Fprintf(&b, " (%s", rep.Medicine.Dosage)
		if rep.Medicine.Frequency != "" {
			fmt.Fprintf(&b, ", %s", rep.Medicine.Frequency)
		}
		b.WriteString(")")
	}
	b.WriteString("\nReported side effects:\n")
	for _, se := range rep.SideEffects {
		fmt.Fprintf(&b, "- %s (severity: %s", se.Effect, se.Severity)
		if se.Onset != "" {
			fmt.Fprintf(&b, ", onset: %s", se.Onset)
		}
		if se.Duration != "" {
			fmt.Fprintf(&b, ", duration: %s", se.Duration)
		}
		b.WriteString(")\n")
	}
	return b.String()
}

// parseResponse extracts the triage JSON from a model reply, tolerating
// markdown code fences.
func parseResponse(content string) (*report.TriageMetadata, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
		content = strings.TrimSpace(content)
	}

	var triage report.TriageMetadata
	if err := json.Unmarshal([]byte(content), &triage); err != nil {
		return nil, fmt.Errorf("parse triage response: %w", err)
	}
	if !triage.PatientGuidance.UrgencyLevel.Valid() {
		return nil, fmt.Errorf("triage response has unknown urgency level %q", triage.PatientGuidance.UrgencyLevel)
	}
	return &triage, nil
}
