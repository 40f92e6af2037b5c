package templates

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu        sync.RWMutex
	templates []Template
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Active returns the active template with the highest version.
func (r *MemoryRepo) Active(ctx context.Context) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  Template
		found bool
	)
	for _, t := range r.templates {
		if !t.IsActive {
			continue
		}
		if !found || t.Version > best.Version {
			best = t
			found = true
		}
	}
	if !found {
		return Template{}, ErrNoActiveTemplate
	}
	return cloneTemplate(best), nil
}

// Create stores a template, deactivating the others when it is active.
func (r *MemoryRepo) Create(ctx context.Context, t Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSections(t.Sections); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.IsActive {
		for i := range r.templates {
			r.templates[i].IsActive = false
		}
	}
	r.templates = append(r.templates, cloneTemplate(t))
	return nil
}

// List returns all templates, newest version first.
func (r *MemoryRepo) List(ctx context.Context) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, cloneTemplate(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Version > out[j].Version
	})
	return out, nil
}

// MaxVersion returns the highest stored version for a template name.
func (r *MemoryRepo) MaxVersion(ctx context.Context, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	highest := 0
	for _, t := range r.templates {
		if t.Name == name && t.Version > highest {
			highest = t.Version
		}
	}
	return highest, nil
}

func cloneTemplate(t Template) Template {
	t.Sections = append([]Section(nil), t.Sections...)
	return t
}

var (
	_ Repo = (*PGRepo)(nil)
	_ Repo = (*MemoryRepo)(nil)
)
