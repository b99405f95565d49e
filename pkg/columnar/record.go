// Package columnar defines the field-bearing columnar array capability
// consumed by the hepdataframe library, together with a concrete adapter
// over the gota dataframe engine.
//
// The library never checks for a concrete engine type by name; anything
// implementing Record (named fields of uniform length, row subsetting,
// column attachment) can back a table's rows.
package columnar

// Index selects rows from a Record. Accepted kinds:
//
//   - int           a single position, normalized to a one-element selection
//   - []int         positions; order and duplicates are preserved as given
//   - []bool        a mask of the record's full length
//   - Span          a half-open [Start, End) slice
//   - series.Series an engine-native Int or Bool series
//
// Any other value is rejected with an error.
type Index interface{}

// Span is a half-open row range [Start, End).
type Span struct {
	Start int
	End   int
}

// Record is the field-bearing columnar array capability: a record-like
// array where every named field is a column of uniform length.
type Record interface {
	// Names returns the field names, one per column.
	Names() []string

	// Nrow returns the row count shared by every field.
	Nrow() int

	// Subset returns a new Record holding the rows selected by index.
	// The receiver is not modified.
	Subset(index Index) (Record, error)

	// WithColumn returns a new Record with the named column attached,
	// replacing any existing column of the same name. The receiver is
	// not modified.
	WithColumn(name string, values any) (Record, error)
}
