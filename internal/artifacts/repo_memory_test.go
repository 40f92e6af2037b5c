package artifacts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoSelectsLatestRows(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.AddDocument(DocumentAnalysis{ID: "d1", UserID: "u1", DocumentType: "cv", Status: StatusComplete, CreatedAt: base})
	repo.AddDocument(DocumentAnalysis{ID: "d2", UserID: "u1", DocumentType: "transcript", Status: "pending", CreatedAt: base})
	repo.AddSummary(Summary{ID: "s1", UserID: "u1", Version: 1, Status: SummaryStatusApproved})
	repo.AddSummary(Summary{ID: "s3", UserID: "u1", Version: 3, Status: "draft"})
	repo.AddSummary(Summary{ID: "s2", UserID: "u1", Version: 2, Status: SummaryStatusApproved})
	repo.AddSession(QASession{ID: "old", UserID: "u1", Status: StatusComplete, CreatedAt: base})
	repo.AddSession(QASession{ID: "new", UserID: "u1", Status: StatusComplete, CreatedAt: base.Add(time.Hour)},
		QAResponse{ID: "r2", QuestionNumber: 2},
		QAResponse{ID: "r1", QuestionNumber: 1},
	)
	repo.AddSession(QASession{ID: "open", UserID: "u1", Status: "in_progress", CreatedAt: base.Add(2 * time.Hour)})

	docs, err := repo.ListCompleteDocuments(ctx, "u1")
	if err != nil || len(docs) != 1 || docs[0].ID != "d1" {
		t.Fatalf("unexpected documents %+v err=%v", docs, err)
	}

	summary, err := repo.LatestApprovedSummary(ctx, "u1")
	if err != nil || summary.ID != "s2" {
		t.Fatalf("expected s2, got %+v err=%v", summary, err)
	}

	session, err := repo.LatestCompleteSession(ctx, "u1")
	if err != nil || session.ID != "new" {
		t.Fatalf("expected session new, got %+v err=%v", session, err)
	}

	responses, err := repo.ListResponses(ctx, "new")
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(responses) != 2 || responses[0].ID != "r1" || responses[0].SessionID != "new" {
		t.Fatalf("unexpected responses %+v", responses)
	}
}

func TestMemoryRepoNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.LatestApprovedSummary(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for summary, got %v", err)
	}
	if _, err := repo.LatestCompleteSession(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for session, got %v", err)
	}
}
