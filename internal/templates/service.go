package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"profile-report/internal/shared/telemetry"
)

// DefaultName is used when an imported file does not name its template.
const DefaultName = "profile-report"

// Service selects and manages report templates.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Active returns the active template with the highest version.
func (s *Service) Active(ctx context.Context) (Template, error) {
	return s.Repo.Active(ctx)
}

// List returns all stored templates.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx)
}

// File is the YAML layout accepted by Import.
//
//	name: profile-report
//	version: 2        # optional, defaults to the next free version
//	sections:
//	  - name: Overview
//	    prompt: ...
type File struct {
	Name     string    `yaml:"name"`
	Version  int       `yaml:"version"`
	Sections []Section `yaml:"sections"`
}

// Import parses a YAML template file and stores it as a new version.
func (s *Service) Import(ctx context.Context, r io.Reader, activate bool) (Template, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Template{}, fmt.Errorf("%w: empty file", ErrMalformedTemplate)
		}
		return Template{}, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	for i := range f.Sections {
		f.Sections[i].Name = strings.TrimSpace(f.Sections[i].Name)
		f.Sections[i].Prompt = strings.TrimSpace(f.Sections[i].Prompt)
	}
	if err := validateSections(f.Sections); err != nil {
		return Template{}, err
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = DefaultName
	}
	version := f.Version
	if version < 0 {
		return Template{}, fmt.Errorf("%w: negative version", ErrMalformedTemplate)
	}
	if version == 0 {
		latest, err := s.Repo.MaxVersion(ctx, name)
		if err != nil {
			return Template{}, err
		}
		version = latest + 1
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := Template{
		ID:        uuid.NewString(),
		Name:      name,
		Version:   version,
		IsActive:  activate,
		Sections:  f.Sections,
		CreatedAt: now().UTC(),
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return Template{}, err
	}

	telemetry.Info("template.imported", map[string]any{
		"template_id": t.ID,
		"name":        t.Name,
		"version":     t.Version,
		"active":      t.IsActive,
		"sections":    len(t.Sections),
	})
	return t, nil
}
