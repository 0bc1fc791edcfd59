package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/outlet-dev/outlet/internal/app"
	"github.com/outlet-dev/outlet/internal/config"
	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/router"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errSilent marks failures the command has already reported.
var errSilent = stderrors.New("silent failure")

func main() {
	cmd, opts := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !stderrors.Is(err, errSilent) {
			tty := term.IsTerminal(int(os.Stderr.Fd()))
			_, noColor := os.LookupEnv("NO_COLOR")
			errorPrinter(opts.errorFormat, tty, noColor).Print(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	dir         string
	errorFormat string
}

// errorPrinter picks how failures are reported. "auto" means the full report
// on a terminal and one line per error otherwise; color needs a terminal and
// no NO_COLOR.
func errorPrinter(format string, tty, noColor bool) errors.Printer {
	mode, err := errors.ParseMode(format)
	if err != nil {
		mode = errors.ModeCompact
		if tty {
			mode = errors.ModeText
		}
	}
	return errors.Printer{Mode: mode, Color: tty && !noColor && mode == errors.ModeText}
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "outlet",
		Short: "Serve and inspect the outlet route table",
		Long: `outlet serves the forms and jobs application's routes.

Routes are declared as a tree of patterns. Layouts render an outlet that
their child routes fill, and guards protect whole subtrees. The CLI can
print the route table, resolve a path against it, run the server and
publish the route manifest to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.errorFormat == "auto" {
				return nil
			}
			if _, err := errors.ParseMode(opts.errorFormat); err != nil {
				return errors.New("E140").Wrap(err).
					WithDetail("Errors can be reported as auto, text, compact or json.").
					WithSuggestion("Pass --errors=compact when piping output into other tools")
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", "Project directory (default: nearest directory with outlet.json)")
	rootCmd.PersistentFlags().StringVar(&opts.errorFormat, "errors", "auto", "Error report format: auto, text, compact or json")

	rootCmd.AddCommand(
		initCmd(opts),
		serveCmd(opts),
		routesCmd(opts),
		resolveCmd(opts),
		publishCmd(opts),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd, opts
}

// loadConfig loads outlet.json from --dir or the working directory.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.dir != "" {
		return config.Load(opts.dir)
	}
	return config.LoadFromWorkingDir()
}

// buildRegistry builds the application's route table.
func buildRegistry(cfg *config.Config) (*router.Registry, error) {
	reg, err := app.NewRegistry(app.Options{LoginPath: cfg.Auth.LoginPath})
	if err != nil {
		return nil, errors.FromRouterError(err)
	}
	return reg, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
