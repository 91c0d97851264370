package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// Seed file errors.
var (
	// ErrSeedFileNotFound is returned when the seed file does not exist.
	ErrSeedFileNotFound = errors.New("seed file not found")

	// ErrNoSeeds is returned when the seed file parses but contains no
	// seed entries.
	ErrNoSeeds = errors.New("seed file contains no seeds")
)

// SeedFile is the on-disk structure of the YAML seed list:
//
//	seeds:
//	  - url: https://bid3.afry.com/pages/user-manual/inputs.html
//	    category: user-manual
type SeedFile struct {
	Seeds []model.Seed `yaml:"seeds"`
}

// LoadSeeds reads and validates the seed list at path.
// Every seed must carry an absolute http(s) URL and a category label;
// the first invalid seed aborts loading.
func LoadSeeds(path string) ([]model.Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided seed path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeedFileNotFound, path)
		}
		return nil, err
	}

	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("malformed seed file %s: %w", path, err)
	}

	if len(sf.Seeds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSeeds, path)
	}

	for i, seed := range sf.Seeds {
		if err := seed.Validate(); err != nil {
			return nil, fmt.Errorf("seed %d in %s: %w", i+1, path, err)
		}
	}

	return sf.Seeds, nil
}
