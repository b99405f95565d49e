package hepframe

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy controls how strictly builder calls are validated. The permissive
// default performs no shape or metadata checks at the API boundary and
// defers misaligned attachments to the underlying array engine; strict
// settings fail fast instead.
type Policy struct {
	// ValidateShapes rejects AddWeight/AddColumn/AddFilter values whose
	// length does not match the table's row count.
	ValidateShapes bool `json:"validate_shapes" yaml:"validate_shapes"`

	// ValidateMeta rejects AddMeta values that are not numbers, strings,
	// or homogeneous lists thereof.
	ValidateMeta bool `json:"validate_meta" yaml:"validate_meta"`
}

// DefaultPolicy returns the permissive policy: every check deferred to the
// engine.
func DefaultPolicy() Policy {
	return Policy{}
}

// StrictPolicy returns a policy with every boundary check enabled.
func StrictPolicy() Policy {
	return Policy{ValidateShapes: true, ValidateMeta: true}
}

// LoadPolicyFromFile loads a policy from a YAML file.
func LoadPolicyFromFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("hepframe: read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("hepframe: parse policy file: %w", err)
	}
	return p, nil
}

// LoadPolicyFromEnv overlays policy settings from environment variables.
// Variables use the HEPFRAME_ prefix; "true" and "1" enable a check.
func LoadPolicyFromEnv(p Policy) Policy {
	if v := os.Getenv("HEPFRAME_VALIDATE_SHAPES"); v != "" {
		p.ValidateShapes = v == "true" || v == "1"
	}
	if v := os.Getenv("HEPFRAME_VALIDATE_META"); v != "" {
		p.ValidateMeta = v == "true" || v == "1"
	}
	if p.ValidateShapes || p.ValidateMeta {
		log.Printf("hepframe: strict validation enabled (shapes=%v meta=%v)",
			p.ValidateShapes, p.ValidateMeta)
	}
	return p
}
