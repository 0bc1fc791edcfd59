package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/outlet-dev/outlet/internal/config"
	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/manifest"
)

// objectStore creates the S3 client used by publish.
var objectStore = newS3Client

func publishCmd(opts *rootOptions) *cobra.Command {
	var (
		bucket  string
		prefix  string
		timeout time.Duration
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the route manifest to S3",
		Long: `Upload the route manifest as JSON to s3://<bucket>/<prefix>/routes.json.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN. Bucket, prefix, region and endpoint default to the
"publish" section of outlet.json.

Examples:
  outlet publish --bucket=my-bucket
  outlet publish --bucket=my-bucket --prefix=staging
  outlet publish --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bucket") {
				cfg.Publish.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Publish.Prefix = prefix
			}
			if cfg.Publish.Bucket == "" && !dryRun {
				return errors.New("E141").
					WithSuggestion(fmt.Sprintf("Pass --bucket or set publish.bucket in %s", config.ConfigFileName))
			}

			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			m := manifest.FromRegistry(reg)

			w := cmd.OutOrStdout()
			if dryRun {
				return manifest.Encode(w, m, manifest.FormatJSON)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			publisher := manifest.NewS3Publisher(objectStore(cfg), cfg.Publish.Bucket, cfg.Publish.Prefix)
			key, err := publisher.Publish(ctx, m)
			if err != nil {
				return errors.New("E142").Wrap(err)
			}
			success(w, "Published %d routes to s3://%s/%s", len(m.Routes), cfg.Publish.Bucket, key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Destination bucket")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Key prefix inside the bucket")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Upload timeout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the manifest instead of uploading it")

	return cmd
}
