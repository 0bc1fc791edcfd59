package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/view"
)

func resolveCmd(opts *rootOptions) *cobra.Command {
	var (
		user   string
		roles  []string
		render bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route table",
		Long: `Resolve a path and print the matched route, its parameters and the
guard decision. Exits with status 1 when nothing matches.

Examples:
  outlet resolve /jobs/42
  outlet resolve /jobs/42 --user=u1 --render
  outlet resolve /admin --user=u1 --role=admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			m, err := reg.Resolve(args[0])
			if err != nil {
				if stderrors.Is(err, router.ErrNotFound) {
					fmt.Fprintf(w, "not found: %s\n", args[0])
					return errSilent
				}
				return errors.FromRouterError(err)
			}

			fmt.Fprintf(w, "path:     %s\n", m.Path)
			fmt.Fprintf(w, "route:    %s\n", m.Node.URLPattern())
			fmt.Fprintf(w, "pattern:  %s\n", m.Node.FullPattern())
			if name := m.Node.Name(); name != "" {
				fmt.Fprintf(w, "name:     %s\n", name)
			}
			if m.Query != "" {
				fmt.Fprintf(w, "query:    %s\n", m.Query)
			}
			if len(m.Params) > 0 {
				fmt.Fprintln(w, "params:")
				names := make([]string, 0, len(m.Params))
				for k := range m.Params {
					names = append(names, k)
				}
				sort.Strings(names)
				for _, k := range names {
					fmt.Fprintf(w, "  %s = %s\n", k, m.Params[k])
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if user != "" {
				ctx = auth.WithUser(ctx, auth.Principal{ID: user, Roles: roles})
			}
			d, err := router.CheckGuards(ctx, m)
			switch {
			case err != nil:
				return fmt.Errorf("guard: %w", err)
			case d.Allow:
				fmt.Fprintln(w, "guards:   allow")
			case d.Redirect != "":
				fmt.Fprintf(w, "guards:   redirect %s\n", d.Redirect)
				return nil
			default:
				fmt.Fprintln(w, "guards:   forbidden")
				return nil
			}

			if !render {
				return nil
			}
			out, err := reg.Render(m)
			if err != nil {
				return errors.FromRouterError(err)
			}
			html, err := view.NewRenderer(view.RendererConfig{Doctype: true}).RenderToString(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, html)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Resolve as a signed-in user with this ID")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Roles of the signed-in user (repeatable)")
	cmd.Flags().BoolVarP(&render, "render", "r", false, "Print the rendered HTML")

	return cmd
}
