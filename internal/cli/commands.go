package cli

import (
	"context"
	"strings"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/app"
	"github.com/specialistvlad/soqlgrid/internal/script"
	"github.com/specialistvlad/soqlgrid/internal/watch"
	"github.com/spf13/cobra"
)

func (e *commandEnv) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run CONNECTION QUERY",
		Short: "Resolve a query and its dependencies and print the records",
		Long: `Resolve a query and its dependencies and print the records.

The query's script is a list of HCL attributes, one per [placeholder].
Functions available to scripts: ` + strings.Join(script.FunctionNames(), ", ") + ".",
		Args: exactArgs("CONNECTION", "QUERY"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.RunQuery(ctx, args[0], args[1])
			})
		},
	}
}

func (e *commandEnv) watchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch CONNECTION QUERY",
		Short: "Run a query again every time the connection files change",
		Args:  exactArgs("CONNECTION", "QUERY"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Watch(ctx, args[0], args[1], debounce)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before the query runs.")
	return cmd
}

func (e *commandEnv) connectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "List the configured connections",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Connections(ctx)
			})
		},
	}
}

func (e *commandEnv) queriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queries CONNECTION",
		Short: "List the queries of a connection",
		Args:  exactArgs("CONNECTION"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Queries(ctx, args[0])
			})
		},
	}
}

func (e *commandEnv) depsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps CONNECTION",
		Short: "Show which queries each script fetches and report cycles",
		Args:  exactArgs("CONNECTION"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Deps(ctx, args[0])
			})
		},
	}
}

func (e *commandEnv) describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe CONNECTION OBJECT",
		Short: "List the fields of an object",
		Args:  exactArgs("CONNECTION", "OBJECT"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Describe(ctx, args[0], args[1])
			})
		},
	}
}

func (e *commandEnv) objectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "objects CONNECTION",
		Short: "List the objects visible to a connection",
		Args:  exactArgs("CONNECTION"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Objects(ctx, args[0])
			})
		},
	}
}

func (e *commandEnv) jobsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs CONNECTION",
		Short: "List bulk ingest jobs",
		Args:  exactArgs("CONNECTION"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Jobs(ctx, args[0])
			})
		},
	}
}

func (e *commandEnv) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check CONNECTION",
		Short: "Test the credentials of a connection",
		Args:  exactArgs("CONNECTION"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Check(ctx, args[0])
			})
		},
	}
}

func (e *commandEnv) idsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Write generated ids into connection and query blocks that lack one",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.StampIDs(ctx)
			})
		},
	}
}
