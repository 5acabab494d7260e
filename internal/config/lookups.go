package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
)

// LookupFile is the on-disk form of the deployment lookup tables:
//
//	clusters:
//	  KARNATAKA: South
//	fulfillment_centers:
//	  - code: BLR7
//	    name: Bengaluru 7
//	    region: KARNATAKA
type LookupFile struct {
	Clusters           map[string]string            `yaml:"clusters"`
	FulfillmentCenters []planning.FulfillmentCenter `yaml:"fulfillment_centers"`
}

// ReadLookupFile parses a lookups YAML file.
func ReadLookupFile(path string) (*LookupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookups file %s: %w", path, err)
	}

	var lf LookupFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lookups file %s: %w", path, err)
	}
	for i, fc := range lf.FulfillmentCenters {
		if fc.Code == "" {
			return nil, fmt.Errorf("lookups file %s: fulfillment center #%d has no code", path, i+1)
		}
	}
	return &lf, nil
}

// Lookups builds the immutable lookup tables handed to a planner.
func (lf *LookupFile) Lookups() planning.Lookups {
	return planning.NewLookups(lf.Clusters, lf.FulfillmentCenters)
}
