package reports

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"profile-report/internal/artifacts"
	"profile-report/internal/llm"
	"profile-report/internal/templates"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeCompleter struct {
	mu        sync.Mutex
	calls     []llm.CompletionRequest
	responses map[string]string // system prompt -> completion
	errs      map[string]error  // system prompt -> error
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	prompt := req.Messages[0].Content
	if err, ok := f.errs[prompt]; ok {
		return "", err
	}
	if out, ok := f.responses[prompt]; ok {
		return out, nil
	}
	return "generated for " + prompt, nil
}

func (f *fakeCompleter) Calls() []llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.CompletionRequest(nil), f.calls...)
}

type testEnv struct {
	svc       *Service
	artifacts *artifacts.MemoryRepo
	templates *templates.MemoryRepo
	reports   *MemoryRepo
	llm       *fakeCompleter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		artifacts: artifacts.NewMemoryRepo(),
		templates: templates.NewMemoryRepo(),
		reports:   NewMemoryRepo(),
		llm:       newFakeCompleter(),
	}
	env.reports.now = func() time.Time { return testNow }
	env.svc = &Service{
		Artifacts: env.artifacts,
		Templates: templates.NewService(env.templates),
		Reports:   env.reports,
		Generator: NewGenerator(env.llm, "gpt-4"),
		Sessions:  NewSessionStore(),
		Now:       func() time.Time { return testNow },
	}
	return env
}

func twoSectionTemplate() templates.Template {
	return templates.Template{
		ID:       "tpl-1",
		Name:     "profile-report",
		Version:  3,
		IsActive: true,
		Sections: []templates.Section{
			{Name: "Overview", Prompt: "P1"},
			{Name: "Strengths", Prompt: "P2"},
		},
		CreatedAt: testNow,
	}
}

func (e *testEnv) activateTemplate(t *testing.T, tpl templates.Template) {
	t.Helper()
	if err := e.templates.Create(context.Background(), tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
}

// seedReadyUser stores every artifact a report needs.
func (e *testEnv) seedReadyUser(userID string) {
	base := testNow.Add(-48 * time.Hour)
	e.artifacts.AddDocument(artifacts.DocumentAnalysis{
		ID: "doc-cv", UserID: userID, DocumentType: artifacts.DocumentTypeCV, Status: artifacts.StatusComplete,
		Result: json.RawMessage(`{"name":"Ada"}`), CreatedAt: base,
	})
	e.artifacts.AddDocument(artifacts.DocumentAnalysis{
		ID: "doc-tr", UserID: userID, DocumentType: artifacts.DocumentTypeTranscript, Status: artifacts.StatusComplete,
		Result: json.RawMessage(`{"gpa":3.9}`), CreatedAt: base.Add(time.Minute),
	})
	e.artifacts.AddQuestionnaire(artifacts.QuestionnaireResponse{
		ID: "q-1", UserID: userID, Answers: json.RawMessage(`{"goal":"medicine"}`), CreatedAt: base,
	})
	e.artifacts.AddSummary(artifacts.Summary{
		ID: "sum-2", UserID: userID, Version: 2, Status: artifacts.SummaryStatusApproved, Content: "summary", CreatedAt: base,
	})
	e.artifacts.AddSession(artifacts.QASession{
		ID: "sess-1", UserID: userID, Status: artifacts.StatusComplete, CreatedAt: base, UpdatedAt: base.Add(time.Hour),
	}, artifacts.QAResponse{ID: "r-1", QuestionNumber: 1, Question: "Why medicine?", Answer: "To help."})
}

// failingArtifacts fails every call after embedding a working repo.
type failingArtifacts struct {
	artifacts.Repo
	err error
}

func (f failingArtifacts) ListQuestionnaires(ctx context.Context, userID string) ([]artifacts.QuestionnaireResponse, error) {
	return nil, f.err
}

var errBoom = errors.New("boom")

// rejectingReports fails id lookups the way Postgres rejects a non-UUID literal.
type rejectingReports struct {
	Repo
}

func (r rejectingReports) GetByID(ctx context.Context, reportID string) (Report, error) {
	return Report{}, errors.New(`invalid input syntax for type uuid: "` + reportID + `" (SQLSTATE 22P02)`)
}

// gatedCompleter blocks every completion until release is closed and signals
// started on the first call.
type gatedCompleter struct {
	inner   *fakeCompleter
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedCompleter() *gatedCompleter {
	return &gatedCompleter{inner: newFakeCompleter(), started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return g.inner.Complete(ctx, req)
}
