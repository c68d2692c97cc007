package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/app"
	"github.com/specialistvlad/soqlgrid/internal/render"
	"github.com/spf13/cobra"
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

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPaths []string
	envFiles    []string
	logLevel    string
	logFormat   string
	output      string
}

// Execute runs the command line in args. Results go to outW, logs and
// help to errW. Failures are always *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, opts ...app.Option) error {
	root := NewRootCommand(outW, errW, opts...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything not produced by a command is cobra rejecting the input.
	return usageError(err)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand(outW, errW io.Writer, opts ...app.Option) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "soqlgrid",
		Short: "Resolve compound SOQL queries against Salesforce orgs",
		Long: `soqlgrid runs SOQL queries defined in HCL connection files.

A query may carry a script whose values are spliced into its [placeholders].
Scripts can fetch the records of other queries of the same connection, and
Object.* selects every field of Object.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(errW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&flags.configPaths, "config", "c", []string{"soqlgrid.hcl"}, "Connection file or directory of .hcl files (repeatable).")
	pf.StringArrayVar(&flags.envFiles, "env-file", nil, "Dotenv file to load before reading connections (repeatable, default .env when present).")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVarP(&flags.output, "output", "o", string(render.Auto), "Result format. Options: "+formatList()+".")

	env := &commandEnv{flags: flags, outW: outW, errW: errW, opts: opts}
	root.AddCommand(
		env.runCommand(),
		env.watchCommand(),
		env.connectionsCommand(),
		env.queriesCommand(),
		env.depsCommand(),
		env.describeCommand(),
		env.objectsCommand(),
		env.jobsCommand(),
		env.checkCommand(),
		env.idsCommand(),
	)
	return root
}

func formatList() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = "'" + string(f) + "'"
	}
	return strings.Join(names, ", ")
}

// commandEnv carries what every subcommand needs to build an App.
type commandEnv struct {
	flags *globalFlags
	outW  io.Writer
	errW  io.Writer
	opts  []app.Option
}

// withApp builds an App from the global flags, runs fn and closes the
// App's sessions. Errors from fn exit with code 1.
func (e *commandEnv) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := app.NewConfig(app.Config{
		ConfigPaths: e.flags.configPaths,
		EnvFiles:    e.flags.envFiles,
		LogLevel:    strings.ToLower(e.flags.logLevel),
		LogFormat:   strings.ToLower(e.flags.logFormat),
		Output:      strings.ToLower(e.flags.output),
	})
	if err != nil {
		return usageError(err)
	}

	a, err := app.NewApp(e.outW, e.errW, cfg, e.opts...)
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}

	ctx := cmd.Context()
	runErr := fn(ctx, a)
	closeErr := a.Close(ctx)
	if err := errors.Join(runErr, closeErr); err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return nil
}

// exactArgs is cobra.ExactArgs reporting a usage error with the expected
// argument names.
func exactArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return usageError(fmt.Errorf("%s expects %d argument(s) (%s), got %d",
				cmd.Name(), len(names), strings.Join(names, " "), len(args)))
		}
		return nil
	}
}
