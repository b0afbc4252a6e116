// Package classify decides the catalog type of a scalar and whether a
// parameter name looks security sensitive.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/document"
)

// SecretMatcher decides whether a parameter name should be stored as a
// secret.
type SecretMatcher interface {
	IsSecret(name string) bool
}

// SecretMatcherFunc adapts a plain function to SecretMatcher.
type SecretMatcherFunc func(name string) bool

func (f SecretMatcherFunc) IsSecret(name string) bool { return f(name) }

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	secrets   SecretMatcher
	templates bool
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithSecretPatterns replaces the default vocabulary with the given regular
// expressions. A name is secret when any of them matches.
func WithSecretPatterns(patterns ...string) Option {
	return func(c *Classifier) error {
		m, err := NewPatternMatcher(patterns...)
		if err != nil {
			return err
		}
		c.secrets = m
		return nil
	}
}

// WithSecretMatcher installs a custom secret predicate.
func WithSecretMatcher(m SecretMatcher) Option {
	return func(c *Classifier) error {
		c.secrets = m
		return nil
	}
}

// WithTemplateDetection makes GuessType report catalog.TypeTemplate for
// strings that already contain logic-less template references.
func WithTemplateDetection(on bool) Option {
	return func(c *Classifier) error {
		c.templates = on
		return nil
	}
}

// New builds a classifier using the default secret vocabulary unless an
// option overrides it.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{secrets: DefaultSecretMatcher()}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// GuessType classifies a scalar. Booleans and integers are recognised from
// the scalar kind, never from string content; floats fall back to string.
func (c *Classifier) GuessType(s *document.Scalar) catalog.Type {
	switch s.Kind {
	case document.KindNull:
		return catalog.TypeNull
	case document.KindBool:
		return catalog.TypeBoolean
	case document.KindInt:
		return catalog.TypeInteger
	}
	if c.templates && s.Kind == document.KindString && IsTemplate(s.Raw) {
		return catalog.TypeTemplate
	}
	return catalog.TypeString
}

// IsSecret reports whether name matches the configured secret rule.
func (c *Classifier) IsSecret(name string) bool {
	if c.secrets == nil {
		return false
	}
	return c.secrets.IsSecret(name)
}

// IsTemplate reports whether s parses as a logic-less template that
// references at least one variable.
func IsTemplate(s string) bool {
	if !strings.Contains(s, "{{") {
		return false
	}
	tmpl, err := mustache.ParseString(s)
	if err != nil {
		return false
	}
	return referencesVariable(tmpl.Tags())
}

func referencesVariable(tags []mustache.Tag) bool {
	for _, tag := range tags {
		switch tag.Type() {
		case mustache.Variable:
			return true
		case mustache.Section, mustache.InvertedSection:
			if tag.Name() != "" {
				return true
			}
			if referencesVariable(tag.Tags()) {
				return true
			}
		}
	}
	return false
}

// PatternMatcher is an ordered list of case-insensitive expressions.
type PatternMatcher struct {
	patterns []*regexp.Regexp
}

// NewPatternMatcher compiles patterns. Each one is matched case-insensitively.
func NewPatternMatcher(patterns ...string) (*PatternMatcher, error) {
	m := &PatternMatcher{}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid secret pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

func (m *PatternMatcher) IsSecret(name string) bool {
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
