// Package catalog provides the feedback categories and the five questions
// asked for each one. The catalog is read from YAML; a default is embedded.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// QuestionCount is the number of prompts every category carries. Prompts 1
// and 2 take Yes/No/Maybe answers, prompts 3 to 5 take 1-5 ratings.
const QuestionCount = 5

//go:embed default.yaml
var defaultCatalog []byte

// ErrUnknownCategory is returned for a category the catalog does not list.
var ErrUnknownCategory = errors.New("unknown category")

// Questions holds the prompts of one category in display order.
type Questions [QuestionCount]string

// Category is one catalog entry.
type Category struct {
	Name      string   `yaml:"name"`
	Questions []string `yaml:"questions"`
}

type document struct {
	Categories []Category `yaml:"categories"`
}

// Provider is the read side consumed by the collection API.
type Provider interface {
	ListCategories() []string
	ListQuestions(category string) (Questions, error)
}

// Catalog is an immutable, validated set of categories.
type Catalog struct {
	names     []string
	questions map[string]Questions
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}

	c := &Catalog{
		names:     make([]string, 0, len(doc.Categories)),
		questions: make(map[string]Questions, len(doc.Categories)),
	}
	for i, cat := range doc.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
		if _, dup := c.questions[name]; dup {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		if len(cat.Questions) != QuestionCount {
			return nil, fmt.Errorf("category %q has %d questions, want %d", name, len(cat.Questions), QuestionCount)
		}

		var qs Questions
		for j, q := range cat.Questions {
			q = strings.TrimSpace(q)
			if q == "" {
				return nil, fmt.Errorf("category %q question %d is empty", name, j+1)
			}
			qs[j] = q
		}
		c.names = append(c.names, name)
		c.questions[name] = qs
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from path. An empty path yields the default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// ListCategories returns category names in catalog order.
func (c *Catalog) ListCategories() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// ListQuestions returns the prompts for category.
func (c *Catalog) ListQuestions(category string) (Questions, error) {
	qs, ok := c.questions[category]
	if !ok {
		return Questions{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return qs, nil
}

// Store holds the current catalog and lets a reload replace it whole.
// Readers never observe a partially applied reload.
type Store struct {
	mu      sync.RWMutex
	current *Catalog
}

// NewStore returns a Store serving c.
func NewStore(c *Catalog) *Store {
	return &Store{current: c}
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Swap replaces the catalog in effect.
func (s *Store) Swap(c *Catalog) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}

func (s *Store) ListCategories() []string {
	return s.Current().ListCategories()
}

func (s *Store) ListQuestions(category string) (Questions, error) {
	return s.Current().ListQuestions(category)
}
