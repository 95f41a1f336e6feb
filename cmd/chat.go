package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/salus-health/benefits-cli/internal/cob"
	"github.com/salus-health/benefits-cli/internal/model"
)

var (
	chatPolicyID string
	chatRegion   string
	chatBillFile string
	chatMessage  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask the benefits assistant a single question",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initCOB(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var bill *model.BillRecord
		if chatBillFile != "" {
			data, err := os.ReadFile(chatBillFile)
			if err != nil {
				return eris.Wrap(err, "read bill file")
			}
			var b model.BillRecord
			if err := json.Unmarshal(data, &b); err != nil {
				return eris.Wrap(err, "parse bill file")
			}
			bill = &b
		}

		result := env.Pipeline.RunChat(ctx, cob.ChatRequest{
			PolicyID:    chatPolicyID,
			Region:      chatRegion,
			Bill:        bill,
			UserMessage: chatMessage,
		})

		fmt.Println(result.Response)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatPolicyID, "policy-id", "", "insurance policy ID")
	chatCmd.Flags().StringVar(&chatRegion, "region", "", "patient region")
	chatCmd.Flags().StringVar(&chatBillFile, "bill", "", "path to a bill JSON file for context")
	chatCmd.Flags().StringVar(&chatMessage, "message", "", "message to send (required)")
	_ = chatCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(chatCmd)
}
