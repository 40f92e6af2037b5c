package templates

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSectionYAML = `
name: profile-report
sections:
  - name: Overview
    prompt: |
      Summarize the candidate.
  - name: Strengths
    prompt: List the strengths.
`

func TestImportAssignsNextVersionAndActivates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	first, err := svc.Import(ctx, strings.NewReader(twoSectionYAML), true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, []Section{
		{Name: "Overview", Prompt: "Summarize the candidate."},
		{Name: "Strengths", Prompt: "List the strengths."},
	}, first.Sections)

	second, err := svc.Import(ctx, strings.NewReader(twoSectionYAML), true)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[1].IsActive, "older template must be deactivated")
}

func TestImportInactiveLeavesActiveTemplate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	active, err := svc.Import(ctx, strings.NewReader(twoSectionYAML), true)
	require.NoError(t, err)
	_, err = svc.Import(ctx, strings.NewReader(twoSectionYAML), false)
	require.NoError(t, err)

	got, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
}

func TestImportRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "no sections", body: "name: x\nsections: []\n"},
		{name: "missing prompt", body: "sections:\n  - name: Overview\n"},
		{name: "duplicate names", body: "sections:\n  - {name: A, prompt: p}\n  - {name: A, prompt: q}\n"},
		{name: "unknown field", body: "sections:\n  - {name: A, prompt: p}\nextra: true\n"},
		{name: "not yaml", body: "sections: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(NewMemoryRepo()).Import(context.Background(), strings.NewReader(tt.body), true)
			assert.ErrorIs(t, err, ErrMalformedTemplate)
		})
	}
}

func TestActiveWithoutTemplates(t *testing.T) {
	_, err := NewService(NewMemoryRepo()).Active(context.Background())
	if !errors.Is(err, ErrNoActiveTemplate) {
		t.Fatalf("expected ErrNoActiveTemplate, got %v", err)
	}
}

func TestDecodeSections(t *testing.T) {
	sections, err := DecodeSections([]byte(`{"sections":[{"name":"Overview","prompt":"P1"},{"name":"Strengths","prompt":"P2"}]}`))
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Strengths", sections[1].Name)

	_, err = DecodeSections([]byte(`{"sections":{}}`))
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}
