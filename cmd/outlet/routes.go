package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/manifest"
	"github.com/outlet-dev/outlet/pkg/router"
)

const formatTree = "tree"

func routesCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the route table.

Formats:
  table  one line per matchable route (default)
  tree   the declared tree, including layouts and pathless groups
  json   the route manifest as JSON
  yaml   the route manifest as YAML

Examples:
  outlet routes
  outlet routes --format=tree
  outlet routes --format=yaml > routes.yaml`,
		Args: cobra.NoArgs,
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
			switch format {
			case "", "table":
				return printTable(w, reg)
			case formatTree:
				return printTree(w, reg)
			}

			f, err := manifest.ParseFormat(format)
			if err != nil {
				return errors.New("E140").Wrap(err).
					WithSuggestion("Use one of: table, tree, json, yaml")
			}
			return manifest.Encode(w, manifest.FromRegistry(reg), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, tree, json or yaml")

	return cmd
}

func printTable(w io.Writer, reg *router.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tNAME\tPARAMS\tFLAGS")
	for _, n := range reg.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			n.URLPattern(),
			orDash(n.Name()),
			orDash(strings.Join(n.ParamNames(), ",")),
			orDash(strings.Join(flags(n), ",")),
		)
	}
	return tw.Flush()
}

func printTree(w io.Writer, reg *router.Registry) error {
	return reg.Walk(func(n *router.RouteNode) error {
		if n.IsRoot() {
			fmt.Fprintln(w, "/")
			return nil
		}

		depth := 0
		for p := n.Parent(); !p.IsRoot(); p = p.Parent() {
			depth++
		}

		label := n.Pattern().String()
		if label == "" {
			label = "(index)"
		}
		line := strings.Repeat("  ", depth+1) + label
		if name := n.Name(); name != "" {
			line += "  " + name
		}
		if f := flags(n); len(f) > 0 {
			line += "  [" + strings.Join(f, ",") + "]"
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}

func flags(n *router.RouteNode) []string {
	var out []string
	if n.Pattern().IsPathless() {
		out = append(out, "pathless")
	}
	if len(n.Guards()) > 0 {
		out = append(out, "guarded")
	} else if n.Protected() {
		out = append(out, "protected")
	}
	if n.CatchAll() {
		out = append(out, "catch-all")
	}
	if len(n.Children()) > 0 && n.HasRender() {
		out = append(out, "layout")
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
