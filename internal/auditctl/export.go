package auditctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the activity log as JSON or CSV",
		Example: `  auditctl export --format csv --start 2025-01-01 --end 2025-01-31 --out january.csv
  auditctl export --action FAILED_LOGIN --failures > failed.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("invalid --format %q: use json or csv", format)
			}
			var q authsdk.ActivityLogQuery
			if err := filters.apply(&q); err != nil {
				return err
			}

			return a.run(cmd, func(ctx context.Context, s *authsdk.Session) error {
				var w io.Writer = a.stdout
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}

				if err := s.ExportActivityLogs(ctx, format, q, w); err != nil {
					return err
				}
				if out != "" && out != "-" {
					fmt.Fprintf(a.stderr, "wrote %s\n", out)
				}
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
