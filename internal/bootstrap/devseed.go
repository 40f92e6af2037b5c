package bootstrap

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"profile-report/internal/artifacts"
	"profile-report/internal/shared/telemetry"
	"profile-report/internal/templates"
)

//go:embed devseed.yaml
var devSeedYAML []byte

type devSeed struct {
	Template  templates.File `yaml:"template"`
	Documents []struct {
		Type   string         `yaml:"type"`
		Result map[string]any `yaml:"result"`
	} `yaml:"documents"`
	Questionnaire map[string]any `yaml:"questionnaire"`
	Summary       string         `yaml:"summary"`
	QA            []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"qa"`
}

// seedMemory fills the in-memory repositories with a ready-to-generate user
// and an active template.
func seedMemory(ctx context.Context, userID string, repo *artifacts.MemoryRepo, tpls *templates.Service, now time.Time) error {
	var seed devSeed
	if err := yaml.Unmarshal(devSeedYAML, &seed); err != nil {
		return fmt.Errorf("decode dev seed: %w", err)
	}

	tplYAML, err := yaml.Marshal(seed.Template)
	if err != nil {
		return fmt.Errorf("encode seed template: %w", err)
	}
	if _, err := tpls.Import(ctx, bytes.NewReader(tplYAML), true); err != nil {
		return fmt.Errorf("import seed template: %w", err)
	}

	for _, d := range seed.Documents {
		result, err := json.Marshal(d.Result)
		if err != nil {
			return fmt.Errorf("seed %s document: %w", d.Type, err)
		}
		repo.AddDocument(artifacts.DocumentAnalysis{
			ID: uuid.NewString(), UserID: userID, DocumentType: d.Type,
			Status: artifacts.StatusComplete, Result: result, CreatedAt: now,
		})
	}

	answers, err := json.Marshal(seed.Questionnaire)
	if err != nil {
		return fmt.Errorf("seed questionnaire: %w", err)
	}
	repo.AddQuestionnaire(artifacts.QuestionnaireResponse{ID: uuid.NewString(), UserID: userID, Answers: answers, CreatedAt: now})
	repo.AddSummary(artifacts.Summary{
		ID: uuid.NewString(), UserID: userID, Version: 1,
		Status: artifacts.SummaryStatusApproved, Content: seed.Summary, CreatedAt: now,
	})

	session := artifacts.QASession{ID: uuid.NewString(), UserID: userID, Status: artifacts.StatusComplete, CreatedAt: now, UpdatedAt: now}
	responses := make([]artifacts.QAResponse, 0, len(seed.QA))
	for i, qa := range seed.QA {
		responses = append(responses, artifacts.QAResponse{
			ID: uuid.NewString(), SessionID: session.ID, QuestionNumber: i + 1,
			Question: qa.Question, Answer: qa.Answer, CreatedAt: now,
		})
	}
	repo.AddSession(session, responses...)

	telemetry.Info("bootstrap.dev_seed", map[string]any{"user_id": userID, "documents": len(seed.Documents), "qa": len(responses)})
	return nil
}
