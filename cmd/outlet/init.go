package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/outlet-dev/outlet/internal/config"
	"github.com/outlet-dev/outlet/internal/errors"
)

func initCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default outlet.json",
		Long: `Write outlet.json with default settings to the project directory.

Examples:
  outlet init
  outlet init -C ./deploy --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}

			if config.Exists(dir) && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists in %s", config.ConfigFileName, dir).
					WithSuggestion("Pass --force to overwrite it")
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing outlet.json")

	return cmd
}
