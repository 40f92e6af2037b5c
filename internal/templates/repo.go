package templates

import "context"

// Repo persists report templates.
type Repo interface {
	// Active returns the active template with the highest version.
	Active(ctx context.Context) (Template, error)
	// Create inserts a template. When t.IsActive is set every other template is deactivated.
	Create(ctx context.Context, t Template) error
	// List returns all templates, newest version first.
	List(ctx context.Context) ([]Template, error)
	// MaxVersion returns the highest stored version for a name, or 0.
	MaxVersion(ctx context.Context, name string) (int, error)
}
