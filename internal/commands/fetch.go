package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Aggregate once and print the snapshot as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(a.cfg.Server.RequestTimeoutSec)*time.Second)
		defer cancel()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(a.agg.Aggregate(ctx))
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
