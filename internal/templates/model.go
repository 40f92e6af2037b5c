package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Section is one named prompt of a report template.
type Section struct {
	Name   string `json:"name" yaml:"name"`
	Prompt string `json:"prompt" yaml:"prompt"`
}

// Template is a versioned, ordered list of report sections.
type Template struct {
	ID        string
	Name      string
	Version   int
	IsActive  bool
	Sections  []Section
	CreatedAt time.Time
}

type sectionsDocument struct {
	Sections []Section `json:"sections"`
}

// DecodeSections parses the stored {"sections":[...]} document.
func DecodeSections(raw []byte) ([]Section, error) {
	var doc sectionsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	if err := validateSections(doc.Sections); err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// EncodeSections renders sections in the stored document shape.
func EncodeSections(sections []Section) ([]byte, error) {
	return json.Marshal(sectionsDocument{Sections: sections})
}

func validateSections(sections []Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrMalformedTemplate)
	}
	seen := make(map[string]struct{}, len(sections))
	for i, s := range sections {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: section %d has no name", ErrMalformedTemplate, i)
		}
		if strings.TrimSpace(s.Prompt) == "" {
			return fmt.Errorf("%w: section %q has no prompt", ErrMalformedTemplate, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate section %q", ErrMalformedTemplate, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
