package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/salus-health/benefits-cli/internal/billfile"
	"github.com/salus-health/benefits-cli/internal/model"
)

var (
	batchFile  string
	batchLimit int
	batchSave  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Coordinate a spreadsheet of bills",
	Long: `Reads bills from an XLSX or CSV export (columns: policy_id, region,
provider, date_of_service, total, services) and runs each through the
coordination pipeline concurrently. Results are printed as JSON lines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entries, err := billfile.Read(batchFile)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(entries) > batchLimit {
			entries = entries[:batchLimit]
		}
		if len(entries) == 0 {
			zap.L().Info("no bills found in file", zap.String("file", batchFile))
			return nil
		}

		env, err := initCOB(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return processBatch(ctx, env, entries, cfg.Batch.MaxConcurrentBills, batchSave)
	},
}

// batchOutcome pairs an input entry with its result for output.
type batchOutcome struct {
	PolicyID string                `json:"policy_id"`
	Region   string                `json:"region"`
	Provider string                `json:"provider"`
	Result   *model.AnalysisResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func processBatch(ctx context.Context, env *cobEnv, entries []billfile.Entry, concurrency int, save bool) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("bills", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	outcomes := make([]batchOutcome, len(entries))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			log := zap.L().With(
				zap.String("policy_id", entry.PolicyID),
				zap.String("provider", entry.Bill.Provider),
			)

			outcome := batchOutcome{
				PolicyID: entry.PolicyID,
				Region:   entry.Region,
				Provider: entry.Bill.Provider,
			}

			result, err := env.Pipeline.RunAnalysis(gctx, entry.PolicyID, entry.Region, entry.Bill)
			if err != nil {
				failed.Add(1)
				log.Error("coordination failed", zap.Error(err))
				outcome.Error = err.Error()
				outcomes[i] = outcome
				return nil // don't abort batch on individual failure
			}

			outcome.Result = result
			outcomes[i] = outcome
			succeeded.Add(1)

			if save {
				a := &model.Analysis{
					PolicyID: entry.PolicyID,
					Region:   entry.Region,
					Bill:     entry.Bill,
					Result:   *result,
				}
				if err := env.Store.SaveAnalysis(gctx, a); err != nil {
					log.Warn("failed to save analysis", zap.Error(err))
				}
			}

			log.Info("coordination complete",
				zap.Float64("bill_total", result.BillTotal),
				zap.Float64("final_cost", result.FinalCost),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)

	enc := json.NewEncoder(os.Stdout)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return eris.Wrap(err, "encode outcome")
		}
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "bills XLSX or CSV file (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of bills to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist each analysis to history")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
