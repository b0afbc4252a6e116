package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/specialistvlad/dynimport/internal/app"
	"github.com/specialistvlad/dynimport/internal/catalog"
	"github.com/specialistvlad/dynimport/internal/ctxlog"
	"github.com/specialistvlad/dynimport/internal/format"
	"github.com/specialistvlad/dynimport/internal/publish"
)

func formatNames() []string {
	return format.Names()
}

func inputFlags(fs *pflag.FlagSet) {
	fs.StringP("file-type", "t", "", fmt.Sprintf("Type of file to process. One of: %s. Derived from the file name when omitted.", strings.Join(formatNames(), ", ")))
	fs.String("default-values", "", "Path to the file holding the default values.")
	fs.StringArray("env-values", nil, "Environment specific values as env:file_path. May be repeated.")
	fs.StringArray("secret-pattern", nil, "Regular expression marking parameter names as secret. May be repeated; replaces the built-in rule.")
	fs.Int("json-indent", format.DefaultOptions().JSONIndent, "Spaces per nesting level in JSON templates. 0 writes a single line.")
}

func (c *command) processCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract a template and its parameters from environment files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.require("project"); err != nil {
				return err
			}
			a, err := c.newApp()
			if err != nil {
				return err
			}
			out, err := a.Process(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Wrote %s\nWrote %s (%d parameters)\n", out.TemplatePath, out.CatalogPath, out.Catalog.Len())
			return nil
		},
	}
	f := cmd.Flags()
	inputFlags(f)
	f.StringP("output-dir", "o", ".", "Directory to write processed output to.")
	f.Bool("parse-descriptions", false, "Use comments next to values as parameter descriptions.")
	f.StringP("project", "p", "", "Project the parameters belong to. Names the output files.")
	return cmd
}

func (c *command) regenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rewrite a template using the parameter names of an existing catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.require("data-file"); err != nil {
				return err
			}
			a, err := c.newApp()
			if err != nil {
				return err
			}
			out, err := a.Regenerate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Wrote %s\n", out.TemplatePath)
			return nil
		},
	}
	f := cmd.Flags()
	inputFlags(f)
	f.StringP("data-file", "d", "", "Config data file written by the process command.")
	return cmd
}

func (c *command) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported file formats.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(c.outW, 0, 4, 2, ' ', 0)
			for _, name := range format.Names() {
				f, _ := format.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\n", f.Name, strings.Join(f.Extensions, " "))
			}
			return w.Flush()
		},
	}
}

func (c *command) scanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan DIR...",
		Short: "List configuration files under directories with their format and project.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			found, err := app.Discover(c.fs, args, c.stringArray("exclude-dirs"), c.stringArray("file-types"))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.outW, 0, 4, 2, ' ', 0)
			for _, d := range found {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Path, d.Format, d.Project)
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringArrayP("file-types", "t", nil, "Only report these formats. May be repeated.")
	f.StringArray("exclude-dirs", nil, "Directory to skip. May be repeated.")
	return cmd
}

func (c *command) planCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the calls that would publish a catalog and template to a project.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.require("data-file", "template-file", "project"); err != nil {
				return err
			}
			dataFile, templateFile := c.v.GetString("data-file"), c.v.GetString("template-file")

			f, err := c.fs.Open(dataFile)
			if err != nil {
				return fmt.Errorf("failed to open config data: %w", err)
			}
			defer f.Close()
			cat, err := catalog.Decode(f)
			if err != nil {
				return fmt.Errorf("failed to decode config data %s: %w", dataFile, err)
			}
			body, err := afero.ReadFile(c.fs, templateFile)
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}

			logger := app.NewLogger(c.v.GetString("log-level"), c.v.GetString("log-format"), c.errW)
			ctx := ctxlog.WithLogger(cmd.Context(), logger)
			rec := &publish.Recorder{}
			if err := publish.Publish(ctx, rec, c.v.GetString("project"), filepath.Base(templateFile), string(body), cat); err != nil {
				return err
			}
			for _, op := range rec.Operations() {
				fmt.Fprintln(c.outW, op)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringP("data-file", "d", "", "Config data file written by the process command.")
	f.StringP("template-file", "m", "", "Template file written by the process command.")
	f.StringP("project", "p", "", "Target project, optionally as parent/child.")
	return cmd
}
