package reports

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"profile-report/internal/artifacts"
	"profile-report/internal/templates"
)

func TestBuildContextOrderAndHeadings(t *testing.T) {
	a := Artifacts{
		ParsedDocuments: []artifacts.DocumentAnalysis{{ID: "d1", DocumentType: "cv", Result: json.RawMessage(`{"name":"Ada"}`)}},
		Questionnaire:   &artifacts.QuestionnaireResponse{ID: "q1", Answers: json.RawMessage(`{"goal":"medicine"}`)},
		Summary:         &artifacts.Summary{ID: "s1", Version: 2, Content: "summary text"},
		QA: QABundle{
			Session:   &artifacts.QASession{ID: "sess-1"},
			Responses: []artifacts.QAResponse{{QuestionNumber: 1, Question: "Why?", Answer: "Because."}},
		},
	}

	out, err := BuildContext(a)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	headings := []string{"Documents:\n", "Questionnaire Responses:\n", "Approved Summary:\n", "Q&A Session:\n"}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		if idx == -1 {
			t.Fatalf("missing heading %q in:\n%s", h, out)
		}
		if idx < last {
			t.Fatalf("heading %q out of order", h)
		}
		last = idx
	}
	for _, want := range []string{`"name": "Ada"`, `"goal": "medicine"`, `"content": "summary text"`, `"question_number": 1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in context:\n%s", want, out)
		}
	}
}

func TestBuildContextEmptyArtifacts(t *testing.T) {
	out, err := BuildContext(Artifacts{})
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if !strings.Contains(out, "Questionnaire Responses:\nnull") {
		t.Fatalf("expected null questionnaire, got:\n%s", out)
	}
	if !strings.Contains(out, `"session": null`) {
		t.Fatalf("expected null session, got:\n%s", out)
	}
}

func TestGenerateSectionRejectsEmptyCompletion(t *testing.T) {
	fake := newFakeCompleter()
	fake.responses["P1"] = "   "
	g := NewGenerator(fake, "gpt-4")

	_, err := g.GenerateSection(context.Background(), templates.Section{Name: "Overview", Prompt: "P1"}, Artifacts{})
	if KindOf(err) != KindCompletion {
		t.Fatalf("expected completion error, got %v", err)
	}
}
