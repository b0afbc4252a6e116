package publish

import (
	"context"
	"fmt"
	"sync"
)

// Operation is one call a Recorder received.
type Operation struct {
	Kind    string
	Project string
	Target  string
	Detail  string
}

func (o Operation) String() string {
	if o.Detail == "" {
		return fmt.Sprintf("%s %s/%s", o.Kind, o.Project, o.Target)
	}
	return fmt.Sprintf("%s %s/%s: %s", o.Kind, o.Project, o.Target, o.Detail)
}

// Recorder is a Client that only records what it was asked to do. It backs
// dry runs. Values of secret parameters are masked.
type Recorder struct {
	mu      sync.Mutex
	ops     []Operation
	secrets map[string]bool
}

var _ Client = (*Recorder)(nil)

func (r *Recorder) record(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Operations returns the recorded calls in order.
func (r *Recorder) Operations() []Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Operation(nil), r.ops...)
}

func (r *Recorder) EnsureProject(_ context.Context, name, parent string) error {
	r.record(Operation{Kind: "project", Project: parent, Target: name})
	return nil
}

func (r *Recorder) EnsureParameter(_ context.Context, project string, p Parameter) error {
	detail := string(p.Type)
	if p.Secret {
		detail += " secret"
	}
	r.mu.Lock()
	if r.secrets == nil {
		r.secrets = make(map[string]bool)
	}
	r.secrets[project+"/"+p.Name] = p.Secret
	r.mu.Unlock()
	r.record(Operation{Kind: "parameter", Project: project, Target: p.Name, Detail: detail})
	return nil
}

func (r *Recorder) EnsureValue(_ context.Context, project, param, env, value string) error {
	r.mu.Lock()
	if r.secrets[project+"/"+param] {
		value = "*****"
	}
	r.mu.Unlock()
	r.record(Operation{Kind: "value", Project: project, Target: param + "@" + env, Detail: value})
	return nil
}

func (r *Recorder) EnsureTemplate(_ context.Context, project, name, body string) error {
	r.record(Operation{Kind: "template", Project: project, Target: name, Detail: fmt.Sprintf("%d bytes", len(body))})
	return nil
}
