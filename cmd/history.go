package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/salus-health/benefits-cli/internal/model"
)

var (
	historyPolicyID string
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		analyses, err := st.ListAnalyses(ctx, historyPolicyID, historyLimit)
		if err != nil {
			return err
		}
		if analyses == nil {
			analyses = []model.Analysis{}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analyses)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPolicyID, "policy-id", "", "filter by policy ID")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "max analyses to return (0 = default)")
	rootCmd.AddCommand(historyCmd)
}
