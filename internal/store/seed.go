package store

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/salus-health/benefits-cli/internal/model"
)

// SeedData is the reference dataset loaded by the seed command: private
// plans, regional aid programs, and the drug formulary.
type SeedData struct {
	Plans    []model.PlanRecord    `yaml:"plans"`
	Programs []model.ProgramRecord `yaml:"programs"`
	Drugs    []model.DrugRecord    `yaml:"drugs"`
}

//go:embed seeddata.yaml
var embeddedSeed []byte

// DefaultSeedData parses the embedded Ontario-centric reference dataset
// (ODB programs, common insurers, ODB formulary sample).
func DefaultSeedData() (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(embeddedSeed, &data); err != nil {
		return nil, eris.Wrap(err, "seed: unmarshal embedded data")
	}
	return &data, nil
}
