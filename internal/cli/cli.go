package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/specialistvlad/dynimport/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// envPrefix namespaces the environment variables that can stand in for any
// flag: --log-level is DYNIMPORT_LOG_LEVEL.
const envPrefix = "DYNIMPORT"

// command carries what every subcommand needs.
type command struct {
	fs   afero.Fs
	v    *viper.Viper
	outW io.Writer
	errW io.Writer

	// cmd is the subcommand being executed, set by bind.
	cmd *cobra.Command
}

// Run executes the command line in args. Results go to outW and logs to
// errW. Every returned error is an *ExitError.
func Run(ctx context.Context, args []string, fs afero.Fs, outW, errW io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := NewRootCommand(fs, outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand builds the command tree around fs.
func NewRootCommand(fs afero.Fs, outW, errW io.Writer) *cobra.Command {
	c := &command{fs: fs, v: viper.New(), outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "dynimport",
		Short: "Extract parameters and templates from configuration files.",
		Long: `dynimport reads one configuration file per environment, replaces every
literal value with a parameter reference and writes the resulting template
together with a catalog of the parameters and their per-environment values.

Supported formats: ` + strings.Join(formatNames(), ", "),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.bind,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a config file providing flag values.")
	pf.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		c.processCommand(),
		c.regenerateCommand(),
		c.formatsCommand(),
		c.scanCommand(),
		c.planCommand(),
	)
	return root
}

// bind wires the command's flags, the environment and an optional config
// file into viper, in increasing order of precedence: config file, env,
// flags.
func (c *command) bind(cmd *cobra.Command, _ []string) error {
	c.cmd = cmd
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := c.v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if path := c.v.GetString("config"); path != "" {
		c.v.SetFs(c.fs)
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	logFormat := strings.ToLower(c.v.GetString("log-format"))
	if logFormat != "text" && logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	switch strings.ToLower(c.v.GetString("log-level")) {
	case "debug", "info", "warn", "error":
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

// sources collects --default-values and --env-values into app sources.
func (c *command) sources() ([]app.Source, error) {
	var out []app.Source
	if path := c.v.GetString("default-values"); path != "" {
		out = append(out, app.Source{Environment: "default", Path: path})
	}
	for _, s := range c.stringArray("env-values") {
		src, err := app.ParseSource(s)
		if err != nil {
			return nil, usageError("%v", err)
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, usageError("%v", app.ErrNoInputs)
	}
	return out, nil
}

// appConfig builds the validated app configuration shared by process and
// regenerate.
func (c *command) appConfig() (*app.Config, error) {
	sources, err := c.sources()
	if err != nil {
		return nil, err
	}
	cfg, err := app.NewConfig(app.Config{
		FileType:          c.v.GetString("file-type"),
		Sources:           sources,
		Project:           c.v.GetString("project"),
		OutputDir:         c.v.GetString("output-dir"),
		DataFile:          c.v.GetString("data-file"),
		ParseDescriptions: c.v.GetBool("parse-descriptions"),
		SecretPatterns:    c.stringArray("secret-pattern"),
		JSONIndent:        c.v.GetInt("json-indent"),
		LogFormat:         strings.ToLower(c.v.GetString("log-format")),
		LogLevel:          strings.ToLower(c.v.GetString("log-level")),
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

func (c *command) newApp() (*app.App, error) {
	cfg, err := c.appConfig()
	if err != nil {
		return nil, err
	}
	return app.NewApp(c.errW, c.fs, cfg)
}

// stringArray reads a repeatable flag. Values given on the command line are
// taken verbatim, commas included. Env and config file values go through
// viper.
func (c *command) stringArray(key string) []string {
	if c.cmd != nil {
		if f := c.cmd.Flags().Lookup(key); f != nil && f.Changed {
			if vals, err := c.cmd.Flags().GetStringArray(key); err == nil {
				return vals
			}
		}
	}
	return c.v.GetStringSlice(key)
}

func (c *command) require(keys ...string) error {
	for _, key := range keys {
		if c.v.GetString(key) == "" {
			return usageError("required flag %q not set", key)
		}
	}
	return nil
}
