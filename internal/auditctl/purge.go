package auditctl

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/spf13/cobra"
)

func newPurgeCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete activity log entries older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return errors.New("--days must be at least 1")
			}
			return a.run(cmd, func(ctx context.Context, s *authsdk.Session) error {
				res, err := s.PurgeActivityLogs(ctx, days)
				if err != nil {
					return err
				}
				if a.asJSON {
					return a.printJSON(res)
				}
				fmt.Fprintln(a.stdout, res.Message)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "retention in days")
	return cmd
}
