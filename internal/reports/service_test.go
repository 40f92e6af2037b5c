package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-report/internal/artifacts"
	"profile-report/internal/templates"
)

func TestCheckPrerequisitesRequiresCVAndTranscript(t *testing.T) {
	tests := []struct {
		name      string
		docs      []artifacts.DocumentAnalysis
		wantReady bool
		wantCV    bool
		wantTR    bool
	}{
		{name: "none"},
		{
			name:   "cv only",
			docs:   []artifacts.DocumentAnalysis{{ID: "d1", DocumentType: "cv", Status: artifacts.StatusComplete}},
			wantCV: true,
		},
		{
			name: "transcript pending",
			docs: []artifacts.DocumentAnalysis{
				{ID: "d1", DocumentType: "cv", Status: artifacts.StatusComplete},
				{ID: "d2", DocumentType: "transcript", Status: "pending"},
			},
			wantCV: true,
		},
		{
			name: "both complete",
			docs: []artifacts.DocumentAnalysis{
				{ID: "d1", DocumentType: "cv", Status: artifacts.StatusComplete},
				{ID: "d2", DocumentType: "transcript", Status: artifacts.StatusComplete},
			},
			wantReady: true, wantCV: true, wantTR: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			for _, d := range tt.docs {
				d.UserID = "u1"
				env.artifacts.AddDocument(d)
			}
			p, err := env.svc.CheckPrerequisites(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantReady, p.Documents.Ready)
			assert.Equal(t, tt.wantCV, p.Documents.CV)
			assert.Equal(t, tt.wantTR, p.Documents.Transcript)
			assert.False(t, p.AllReady())
		})
	}
}

func TestNoCompleteSessionBlocksGeneration(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.artifacts.AddDocument(artifacts.DocumentAnalysis{ID: "d1", UserID: "u1", DocumentType: "cv", Status: artifacts.StatusComplete})
	env.artifacts.AddDocument(artifacts.DocumentAnalysis{ID: "d2", UserID: "u1", DocumentType: "transcript", Status: artifacts.StatusComplete})
	env.artifacts.AddQuestionnaire(artifacts.QuestionnaireResponse{ID: "q1", UserID: "u1"})
	env.artifacts.AddSummary(artifacts.Summary{ID: "s1", UserID: "u1", Version: 1, Status: artifacts.SummaryStatusApproved})
	env.artifacts.AddSession(artifacts.QASession{ID: "open", UserID: "u1", Status: "in_progress"})

	p, err := env.svc.CheckPrerequisites(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, p.QASession)
	assert.True(t, p.Documents.Ready && p.Questionnaire && p.Summary)
	assert.Equal(t, []string{"qa_session"}, p.Unmet())

	_, err = env.svc.Generate(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, ErrPrerequisitesUnmet)
	assert.Empty(t, env.llm.Calls())

	v, err := env.svc.View(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StateNoReport, v.State)
	assert.Equal(t, BlockedPrerequisites, v.Blocked)
	assert.False(t, v.CanGenerate)
}

func TestCheckPrerequisitesDatastoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Artifacts = failingArtifacts{Repo: env.artifacts, err: errBoom}

	_, err := env.svc.CheckPrerequisites(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, KindDatastore, KindOf(err))
	assert.ErrorIs(t, err, errBoom)

	_, err = env.svc.LoadArtifacts(context.Background(), "u1")
	assert.Equal(t, KindDatastore, KindOf(err))
}

func TestLoadArtifactsSelectsRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedReadyUser("u1")
	env.artifacts.AddQuestionnaire(artifacts.QuestionnaireResponse{ID: "q-later", UserID: "u1", CreatedAt: testNow})
	env.artifacts.AddSummary(artifacts.Summary{ID: "sum-1", UserID: "u1", Version: 1, Status: artifacts.SummaryStatusApproved})

	a, err := env.svc.LoadArtifacts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, a.ParsedDocuments, 2)
	require.NotNil(t, a.Questionnaire)
	assert.Equal(t, "q-1", a.Questionnaire.ID)
	require.NotNil(t, a.Summary)
	assert.Equal(t, "sum-2", a.Summary.ID)
	require.NotNil(t, a.QA.Session)
	assert.Equal(t, "sess-1", a.QA.Session.ID)
	require.Len(t, a.QA.Responses, 1)
}

func TestLoadArtifactsWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	env.artifacts.AddQuestionnaire(artifacts.QuestionnaireResponse{ID: "q1", UserID: "u1"})

	a, err := env.svc.LoadArtifacts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, a.QA.Session)
	assert.Nil(t, a.QA.Responses)
	assert.Nil(t, a.Summary)
}

func TestSaveReportPreconditions(t *testing.T) {
	env := newTestEnv(t)
	env.seedReadyUser("u1")
	full, err := env.svc.LoadArtifacts(context.Background(), "u1")
	require.NoError(t, err)
	tpl := twoSectionTemplate()
	sections := []SectionContent{{Name: "Overview", Content: "C1"}, {Name: "Strengths", Content: "C2"}}

	tests := []struct {
		name     string
		mutate   func(a *Artifacts)
		sections []SectionContent
		want     error
	}{
		{name: "no documents", mutate: func(a *Artifacts) { a.ParsedDocuments = nil }, sections: sections, want: ErrMissingDocuments},
		{name: "no questionnaire", mutate: func(a *Artifacts) { a.Questionnaire = nil }, sections: sections, want: ErrMissingQuestionnaire},
		{name: "no summary", mutate: func(a *Artifacts) { a.Summary = nil }, sections: sections, want: ErrMissingSummary},
		{name: "no session", mutate: func(a *Artifacts) { a.QA = QABundle{} }, sections: sections, want: ErrMissingQASession},
		{name: "missing section", mutate: func(a *Artifacts) {}, sections: sections[:1], want: ErrIncompleteGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := full
			tt.mutate(&a)
			_, err := env.svc.SaveReport(context.Background(), "u1", tpl, tt.sections, a)
			require.Error(t, err)
			assert.Equal(t, KindPrecondition, KindOf(err))
			assert.ErrorIs(t, err, tt.want)

			_, err = env.reports.Latest(context.Background(), "u1")
			assert.ErrorIs(t, err, ErrReportNotFound, "nothing may be inserted")
		})
	}
}

func TestGenerateTwoSectionExample(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")
	env.llm.responses["P1"] = "C1"
	env.llm.responses["P2"] = "C2"

	var progress []Progress
	rep, err := env.svc.Generate(context.Background(), "u1", func(p Progress) { progress = append(progress, p) })
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, rep.Status)
	assert.Equal(t, []SectionContent{{Name: "Overview", Content: "C1"}, {Name: "Strengths", Content: "C2"}}, rep.Content.Sections)
	assert.Equal(t, "tpl-1", rep.TemplateID)
	assert.Equal(t, 3, rep.TemplateVersion)
	assert.Equal(t, []Progress{
		{Index: 1, Total: 2, Section: "Overview", OK: true},
		{Index: 2, Total: 2, Section: "Strengths", OK: true},
	}, progress)

	calls := env.llm.Calls()
	require.Len(t, calls, 2)
	for i, prompt := range []string{"P1", "P2"} {
		assert.Equal(t, "gpt-4", calls[i].Model)
		require.NotNil(t, calls[i].Temperature)
		assert.InDelta(t, 0.1, *calls[i].Temperature, 1e-6)
		require.Len(t, calls[i].Messages, 2)
		assert.Equal(t, "system", calls[i].Messages[0].Role)
		assert.Equal(t, prompt, calls[i].Messages[0].Content)
		assert.Equal(t, "user", calls[i].Messages[1].Role)
	}

	stored, err := env.reports.Latest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, rep.ID, stored.ID)
	assert.Equal(t, "doc-cv", stored.Artifacts.DocumentAnalyses["cv"].ID)
	assert.Equal(t, "sess-1", stored.Artifacts.QASession.ID)

	sess := env.svc.Sessions.Get("u1")
	require.NotNil(t, sess.CurrentReport)
	assert.Equal(t, rep.ID, sess.CurrentReport.ID)
}

func TestGenerateWithFailedSectionPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")
	env.llm.errs["P1"] = errBoom

	var progress []Progress
	_, err := env.svc.Generate(context.Background(), "u1", func(p Progress) { progress = append(progress, p) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteGeneration)
	assert.Equal(t, KindCompletion, KindOf(err))
	assert.Len(t, env.llm.Calls(), 2, "remaining sections still run")
	require.Len(t, progress, 2)
	assert.False(t, progress[0].OK)
	assert.True(t, progress[1].OK)

	_, err = env.reports.Latest(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestGenerateWithoutActiveTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.seedReadyUser("u1")

	_, err := env.svc.Generate(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, templates.ErrNoActiveTemplate)
	assert.Empty(t, env.llm.Calls())

	v, err := env.svc.View(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, BlockedNoActiveTemplate, v.Blocked)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")

	rep, err := env.svc.Generate(context.Background(), "u1", nil)
	require.NoError(t, err)

	first, err := env.svc.Finalize(context.Background(), "u1", rep.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinal, first.Status)
	require.NotNil(t, first.FinalizedAt)

	second, err := env.svc.Finalize(context.Background(), "u1", rep.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.FinalizedAt, second.FinalizedAt)
	assert.Equal(t, StatusFinal, second.Status)
}

func TestFinalizeChecksOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")

	rep, err := env.svc.Generate(context.Background(), "u1", nil)
	require.NoError(t, err)

	_, err = env.svc.Finalize(context.Background(), "intruder", rep.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
	_, err = env.svc.Finalize(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)

	stored, err := env.reports.GetByID(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
}

func TestConcurrentGenerateSavesOneDraft(t *testing.T) {
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")
	gated := newGatedCompleter()
	env.svc.Generator = NewGenerator(gated, "gpt-4")

	type result struct {
		rep Report
		err error
	}
	first := make(chan result, 1)
	go func() {
		rep, err := env.svc.Generate(context.Background(), "u1", nil)
		first <- result{rep, err}
	}()
	<-gated.started

	_, err := env.svc.Generate(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(gated.release)
	got := <-first
	require.NoError(t, got.err)
	assert.Len(t, gated.inner.Calls(), 2)

	latest, err := env.reports.Latest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, got.rep.ID, latest.ID)
	assert.False(t, env.svc.Sessions.Get("u1").Generating)

	_, err = env.svc.Generate(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, ErrDraftPending)
}

func TestFinalizeRejectsMalformedID(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Reports = rejectingReports{Repo: env.reports}

	_, err := env.svc.Finalize(context.Background(), "u1", "not-a-uuid")
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.Empty(t, KindOf(err))
}

func TestViewStateMachine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.activateTemplate(t, twoSectionTemplate())
	env.seedReadyUser("u1")

	v, err := env.svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateNoReport, v.State)
	assert.True(t, v.CanGenerate)
	assert.Equal(t, []string{"generate"}, v.Actions())

	draft, err := env.svc.Generate(ctx, "u1", nil)
	require.NoError(t, err)

	v, err = env.svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateDraft, v.State)
	assert.Equal(t, draft.ID, v.Report.ID)
	assert.Equal(t, []string{"finalize", "regenerate"}, v.Actions())

	_, err = env.svc.Generate(ctx, "u1", nil)
	assert.ErrorIs(t, err, ErrDraftPending)

	require.NoError(t, env.svc.Regenerate(ctx, "u1"))
	v, err = env.svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateNoReport, v.State)
	assert.True(t, v.Regenerating)
	assert.True(t, v.CanGenerate)
	assert.Nil(t, env.svc.Sessions.Get("u1").CurrentReport)

	second, err := env.svc.Generate(ctx, "u1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, draft.ID, second.ID)
	assert.False(t, env.svc.Sessions.Get("u1").Regenerating)

	v, err = env.svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateDraft, v.State)
	assert.Equal(t, second.ID, v.Report.ID)

	_, err = env.svc.Finalize(ctx, "u1", second.ID)
	require.NoError(t, err)
	v, err = env.svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateFinal, v.State)
	assert.Empty(t, v.Actions())

	assert.ErrorIs(t, env.svc.Regenerate(ctx, "u1"), ErrReportFinal)
	_, err = env.svc.Generate(ctx, "u1", nil)
	assert.ErrorIs(t, err, ErrReportFinal)
}

func TestViewDatastoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Artifacts = failingArtifacts{Repo: env.artifacts, err: errBoom}

	_, err := env.svc.View(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, KindDatastore, KindOf(err))
}
