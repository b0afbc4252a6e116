package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/classify"
	"github.com/specialistvlad/dynimport/internal/ctxlog"
	"github.com/specialistvlad/dynimport/internal/document"
)

// DefaultEnvironment names the environment whose document becomes the
// template.
const DefaultEnvironment = "default"

// Input is the parsed document of one environment.
type Input struct {
	Environment string
	Document    document.Node
}

// Claim is returned by an Interceptor that treats a whole mapping as a single
// parameter.
type Claim struct {
	Value       document.Node
	Type        catalog.Type
	Secret      bool
	Description string
}

// Interceptor lets a format short-circuit the generic descent at a mapping.
// Returning false continues with the generic rule.
type Interceptor interface {
	Intercept(path document.Path, m *document.Mapping) (Claim, bool)
}

// Result is the outcome of one extraction run.
type Result struct {
	// Template is the default environment's document with placeholders
	// substituted.
	Template document.Node
	Catalog  *catalog.Catalog
}

// Engine holds extraction settings.
type Engine struct {
	classifier   *classify.Classifier
	interceptor  Interceptor
	descriptions bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier sets the type and secret classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithInterceptor installs a format-specific traversal override.
func WithInterceptor(i Interceptor) Option {
	return func(e *Engine) { e.interceptor = i }
}

// WithDescriptions copies scalar comments into parameter descriptions.
func WithDescriptions(on bool) Option {
	return func(e *Engine) { e.descriptions = on }
}

// New returns an Engine. Without WithClassifier it uses the default
// classifier.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		c, err := classify.New()
		if err != nil {
			panic(fmt.Sprintf("engine: default classifier: %v", err))
		}
		e.classifier = c
	}
	return e
}

// Extract walks every input in order and returns the template and the merged
// catalog. Inputs are deep-copied; the caller's documents are not modified.
// hints may be nil.
func (e *Engine) Extract(ctx context.Context, inputs []Input, hints *catalog.Catalog) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	seed, err := templateSeed(inputs)
	if err != nil {
		return nil, err
	}

	r := &run{
		Engine:  e,
		hints:   hints,
		hinted:  hints.Len() > 0,
		catalog: catalog.New(),
		owners:  make(map[string]document.Path),
		inputs:  make(map[string]bool, len(inputs)),
	}
	for _, in := range inputs {
		r.inputs[in.Environment] = true
	}
	logger.Debug("Extraction started.", "environments", len(inputs), "hinted", r.hinted, "template_env", seed)

	var template document.Node
	for _, in := range inputs {
		r.env = in.Environment
		r.found = catalog.New()

		walked := r.walk("", in.Document.Clone())
		if in.Environment == seed {
			template = walked
		}
		added := r.merge()
		logger.Debug("Environment walked.", "env", in.Environment, "parameters", r.found.Len(), "new_parameters", added)
	}

	if err := r.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if seed == DefaultEnvironment {
		for p, param := range r.catalog.All() {
			if _, ok := param.Values.Get(DefaultEnvironment); !ok {
				logger.Warn("Parameter has no value in the default environment.", "path", string(p), "param", param.ParamName, "environments", param.Values.Environments())
			}
		}
	}

	logger.Debug("Extraction finished.", "parameters", r.catalog.Len())
	return &Result{Template: template, Catalog: r.catalog}, nil
}

// templateSeed validates the inputs and returns the environment whose
// document seeds the template.
func templateSeed(inputs []Input) (string, error) {
	if len(inputs) == 0 {
		return "", ErrNoInputs
	}
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Environment] {
			return "", fmt.Errorf("%w: %q", ErrDuplicateEnvironment, in.Environment)
		}
		if in.Document == nil {
			return "", fmt.Errorf("environment %q has no document", in.Environment)
		}
		seen[in.Environment] = true
	}
	if seen[DefaultEnvironment] {
		return DefaultEnvironment, nil
	}
	if len(inputs) == 1 {
		return inputs[0].Environment, nil
	}
	return "", ErrNoDefault
}

// run is the state of a single Extract call.
type run struct {
	*Engine

	hints  *catalog.Catalog
	hinted bool
	inputs map[string]bool

	env   string
	found *catalog.Catalog

	catalog *catalog.Catalog
	owners  map[string]document.Path
	clashes map[string]*CollisionError
	errs    *multierror.Error
}

func (r *run) walk(p document.Path, n document.Node) document.Node {
	switch v := n.(type) {
	case *document.Mapping:
		if r.interceptor != nil {
			if claim, ok := r.interceptor.Intercept(p, v); ok {
				if out, ok := r.claim(p, claim); ok {
					return out
				}
			}
		}
		for i := range v.Entries {
			v.Entries[i].Value = r.walk(p.Key(v.Entries[i].Key), v.Entries[i].Value)
		}
		return v
	case *document.Sequence:
		for i := range v.Items {
			v.Items[i] = r.walk(p.Index(i), v.Items[i])
		}
		return v
	case *document.Scalar:
		return r.leaf(p, v)
	}
	return n
}

func (r *run) leaf(p document.Path, s *document.Scalar) document.Node {
	if r.hinted {
		return r.fromHint(p, s.Native(), s)
	}

	name := p.ParamName()
	param := &catalog.Parameter{
		ParamName: name,
		Type:      r.classifier.GuessType(s),
		Secret:    r.classifier.IsSecret(name),
	}
	if r.descriptions {
		param.Description = s.Comment
	}
	param.Values.Set(r.env, s.Native())
	r.found.Put(p, param)
	return placeholder(name, s.Comment)
}

func (r *run) claim(p document.Path, c Claim) (document.Node, bool) {
	if r.hinted {
		if _, ok := r.hints.Get(p); !ok {
			return nil, false
		}
		return r.fromHint(p, document.Native(c.Value), nil), true
	}

	name := p.ParamName()
	param := &catalog.Parameter{
		ParamName:   name,
		Type:        c.Type,
		Secret:      c.Secret,
		Description: c.Description,
	}
	param.Values.Set(r.env, document.Native(c.Value))
	r.found.Put(p, param)
	return placeholder(name, ""), true
}

// fromHint replaces the node at p using the hinted parameter, or returns
// orig untouched when p is not hinted.
func (r *run) fromHint(p document.Path, value any, orig *document.Scalar) document.Node {
	hint, ok := r.hints.Get(p)
	if !ok {
		return orig
	}
	param := *hint
	param.Values = catalog.Values{}
	param.Values.Set(r.env, value)
	r.found.Put(p, &param)
	comment := ""
	if orig != nil {
		comment = orig.Comment
	}
	return placeholder(hint.ParamName, comment)
}

// merge folds the parameters found in the current environment into the run
// catalog and returns how many paths were new.
func (r *run) merge() int {
	added := 0
	for p, param := range r.found.All() {
		existing, ok := r.catalog.Get(p)
		if ok {
			existing.Values.Merge(param.Values)
			continue
		}
		if !r.hinted && r.collides(p, param.ParamName) {
			continue
		}
		if r.hinted {
			r.keepHintedEnvironments(p, param)
		}
		r.catalog.Put(p, param)
		added++
	}
	return added
}

// keepHintedEnvironments copies the hinted values of environments that are
// not part of this run. Environments that are read again always take the
// fresh value.
func (r *run) keepHintedEnvironments(p document.Path, param *catalog.Parameter) {
	hint, ok := r.hints.Get(p)
	if !ok {
		return
	}
	for _, env := range hint.Values.Environments() {
		if r.inputs[env] {
			continue
		}
		v, _ := hint.Values.Get(env)
		param.Values.Set(env, v)
	}
}

// collides records p as the owner of name, or registers a collision when a
// different path already owns it.
func (r *run) collides(p document.Path, name string) bool {
	owner, ok := r.owners[name]
	if !ok {
		r.owners[name] = p
		return false
	}
	if r.clashes == nil {
		r.clashes = make(map[string]*CollisionError)
	}
	clash, ok := r.clashes[name]
	if !ok {
		clash = &CollisionError{Name: name, Paths: []document.Path{owner}}
		r.clashes[name] = clash
		r.errs = multierror.Append(r.errs, clash)
	}
	if !slices.Contains(clash.Paths, p) {
		clash.Paths = append(clash.Paths, p)
	}
	return true
}

func placeholder(name, comment string) *document.Scalar {
	s := document.String(catalog.Reference(name))
	s.Comment = comment
	return s
}
