package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/salus-health/benefits-cli/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data (plans, aid programs, formulary)",
	Long: `Loads the embedded Ontario-centric reference dataset into the database,
or a custom YAML file when --file is given. Seeding is idempotent; existing
rows are updated in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := loadSeedData()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		if err := st.SeedReference(ctx, data); err != nil {
			return eris.Wrap(err, "seed reference data")
		}

		zap.L().Info("seed complete",
			zap.Int("plans", len(data.Plans)),
			zap.Int("programs", len(data.Programs)),
			zap.Int("drugs", len(data.Drugs)),
		)
		return nil
	},
}

func loadSeedData() (*store.SeedData, error) {
	if seedFile == "" {
		return store.DefaultSeedData()
	}

	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, eris.Wrap(err, "read seed file")
	}
	var data store.SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, eris.Wrap(err, "parse seed file")
	}
	return &data, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "custom seed YAML file (default embedded dataset)")
	rootCmd.AddCommand(seedCmd)
}
