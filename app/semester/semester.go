package semester

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Semester is one academic term that notices are classified into.
type Semester struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Registry holds the closed set of configured semesters. Immutable
// after construction.
type Registry struct {
	semesters []Semester
	byCode    map[string]Semester
}

var dashReplacer = strings.NewReplacer("-", " ", "–", " ", "—", " ")

// Default returns the built-in six-semester registry.
func Default() *Registry {
	return New([]Semester{
		{Code: "1", Name: "1st Semester", Keywords: []string{"sem 1", "semester 1", "first sem", "1st semester", "1st sem"}},
		{Code: "2", Name: "2nd Semester", Keywords: []string{"sem 2", "semester 2", "second sem", "2nd semester", "2nd sem"}},
		{Code: "3", Name: "3rd Semester", Keywords: []string{"sem 3", "semester 3", "third sem", "3rd semester", "3rd sem"}},
		{Code: "4", Name: "4th Semester", Keywords: []string{"sem 4", "semester 4", "fourth sem", "4th semester", "4th sem"}},
		{Code: "5", Name: "5th Semester", Keywords: []string{"sem 5", "semester 5", "fifth sem", "5th semester", "5th sem"}},
		{Code: "6", Name: "6th Semester", Keywords: []string{"sem 6", "semester 6", "sixth sem", "6th semester", "6th sem", "final semester"}},
	})
}

func New(semesters []Semester) *Registry {
	byCode := make(map[string]Semester, len(semesters))
	for _, s := range semesters {
		byCode[s.Code] = s
	}
	return &Registry{semesters: semesters, byCode: byCode}
}

// LoadFile reads a registry from a yaml file of the shape
// {semesters: [{code, name, keywords}, ...]}. A missing file yields
// the default registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read semesters file: %w", err)
	}

	var doc struct {
		Semesters []Semester `yaml:"semesters"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse semesters YAML: %w", err)
	}

	if len(doc.Semesters) == 0 {
		return Default(), nil
	}
	for i, s := range doc.Semesters {
		if s.Code == "" || s.Name == "" || len(s.Keywords) == 0 {
			return nil, fmt.Errorf("semester at index %d must have code, name and keywords", i)
		}
	}
	return New(doc.Semesters), nil
}

// Classify maps item text to the codes of every semester whose keyword
// phrases appear in the normalized text. An empty result means the
// item is not a notice candidate.
func (r *Registry) Classify(text string) []string {
	normalized := Normalize(text)

	var codes []string
	for _, s := range r.semesters {
		for _, kw := range s.Keywords {
			if strings.Contains(normalized, kw) {
				codes = append(codes, s.Code)
				break
			}
		}
	}
	return codes
}

// Normalize lowercases text and folds dash variants to spaces so that
// "2nd-Sem" and "2nd Sem" match the same keyword phrases.
func Normalize(text string) string {
	return dashReplacer.Replace(strings.ToLower(text))
}

func (r *Registry) Valid(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// Name returns the display name for a code, or the code itself when
// unknown (stored notices can outlive a registry change).
func (r *Registry) Name(code string) string {
	if s, ok := r.byCode[code]; ok {
		return s.Name
	}
	return code
}

// Names maps codes to display names, preserving order.
func (r *Registry) Names(codes []string) []string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, r.Name(c))
	}
	return names
}

// All returns the configured semesters in registry order.
func (r *Registry) All() []Semester {
	out := make([]Semester, len(r.semesters))
	copy(out, r.semesters)
	return out
}

// Codes returns all semester codes sorted for stable display.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.semesters))
	for _, s := range r.semesters {
		codes = append(codes, s.Code)
	}
	sort.Strings(codes)
	return codes
}
