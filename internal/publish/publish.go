// Package publish pushes an extracted catalog and its template to a remote
// configuration store through the Client collaborator.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/ctxlog"
	"github.com/specialistvlad/dynimport/internal/document"
)

// Parameter is the remote view of a catalog entry.
type Parameter struct {
	Name   string
	Type   catalog.Type
	Secret bool
}

// Client creates or updates objects in the remote store. Every method must
// be an upsert: calling it for an existing object is not an error.
type Client interface {
	EnsureProject(ctx context.Context, name, parent string) error
	EnsureParameter(ctx context.Context, project string, p Parameter) error
	EnsureValue(ctx context.Context, project, param, env, value string) error
	EnsureTemplate(ctx context.Context, project, name, body string) error
}

// Publish uploads every parameter of cat with its values, then the template
// body under templateName. A project of the form "parent/child" ensures the
// child project under its parent first and publishes into the child.
func Publish(ctx context.Context, c Client, project, templateName, body string, cat *catalog.Catalog) error {
	logger := ctxlog.FromContext(ctx)

	if parent, child, ok := strings.Cut(project, "/"); ok {
		if err := c.EnsureProject(ctx, child, parent); err != nil {
			return fmt.Errorf("failed to ensure project %q under %q: %w", child, parent, err)
		}
		project = child
	}

	logger.Info("Creating parameters.", "project", project, "count", cat.Len())
	for _, param := range cat.All() {
		remote := Parameter{Name: param.ParamName, Type: param.Type.Coerce(), Secret: param.Secret}
		if err := c.EnsureParameter(ctx, project, remote); err != nil {
			return fmt.Errorf("failed to ensure parameter %q: %w", param.ParamName, err)
		}
		for _, env := range param.Values.Environments() {
			v, _ := param.Values.Get(env)
			text, ok, err := valueText(v)
			if err != nil {
				return fmt.Errorf("failed to render value of %q for %q: %w", param.ParamName, env, err)
			}
			if !ok {
				continue
			}
			if err := c.EnsureValue(ctx, project, param.ParamName, env, text); err != nil {
				return fmt.Errorf("failed to ensure value of %q for %q: %w", param.ParamName, env, err)
			}
		}
		logger.Debug("Parameter published.", "param", param.ParamName, "environments", param.Values.Len())
	}

	logger.Info("Uploading template.", "project", project, "template", templateName)
	if err := c.EnsureTemplate(ctx, project, templateName, body); err != nil {
		return fmt.Errorf("failed to ensure template %q: %w", templateName, err)
	}
	return nil
}

// valueText renders a catalog value for the remote store. Null and empty
// string values are skipped. Collections claimed as a single parameter are
// sent as JSON.
func valueText(v any) (string, bool, error) {
	if text, ok := document.Text(v); ok {
		return text, text != "", nil
	}
	if v == nil {
		return "", false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
