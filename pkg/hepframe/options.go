package hepframe

import (
	"github.com/google/uuid"

	"github.com/hepdataframe/hepdataframe/pkg/types"
)

// Option configures an EventTable at construction time.
type Option func(*EventTable)

// WithMeta attaches metadata entries to the new table. Later options
// overwrite earlier entries of the same key.
func WithMeta(meta types.Meta) Option {
	return func(t *EventTable) {
		for k, v := range meta {
			t.meta[k] = v
		}
	}
}

// WithPolicy sets the validation policy for the new table and every table
// derived from it.
func WithPolicy(p Policy) Option {
	return func(t *EventTable) {
		t.policy = p
	}
}

// WithProvenance stamps meta["provenance_id"] with a freshly generated
// UUID, giving the table lineage a stable provenance tag.
func WithProvenance() Option {
	return func(t *EventTable) {
		t.meta[MetaProvenanceID] = uuid.New().String()
	}
}

// MetaProvenanceID is the metadata key written by WithProvenance.
const MetaProvenanceID = "provenance_id"
