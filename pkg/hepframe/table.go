package hepframe

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"

	"github.com/hepdataframe/hepdataframe/internal/observability"
	"github.com/hepdataframe/hepdataframe/pkg/columnar"
	"github.com/hepdataframe/hepdataframe/pkg/types"
)

const (
	// WeightField is the nominal weight field, initialized to 1.0 per row.
	WeightField = "weight"

	// NoFilterField is the pass-all filter field, initialized to true per row.
	NoFilterField = "no_filter"

	// FilterPrefix is the prefix enforced on filter field names. AddFilter
	// rewrites any name not already carrying it to "filter_" + name.
	FilterPrefix = "filter"

	// DefaultPreviewRows is the conventional row count for Head and Tail.
	DefaultPreviewRows = 5
)

// EventTable owns one aligned row set: a field-bearing columnar record of
// event data, a weights record, a filters record, and a metadata mapping.
// The three records always share one row count and are re-indexed together
// on every subsetting operation.
//
// Tables are immutable at row granularity; only whole-column attachment is
// allowed, through the fluent Add* builders. Builder failures latch into a
// sticky error reported by Err, in the engine's own style.
type EventTable struct {
	rows    columnar.Record
	weights *columnar.Frame
	filters *columnar.Frame
	meta    types.Meta
	policy  Policy
	stats   *observability.OpStats
	err     error
}

// New constructs an EventTable from a field-bearing columnar record.
// The record must expose at least one field; weights gain the nominal
// "weight" field (all ones) and filters gain the pass-all "no_filter"
// field (all true), both aligned to the record's row count.
func New(rows columnar.Record, opts ...Option) (*EventTable, error) {
	if rows == nil {
		return nil, newValidationError(CodeNotColumnar,
			"rows must be a field-bearing columnar record")
	}
	if len(rows.Names()) == 0 {
		return nil, newValidationError(CodeNoFields, "record has no fields")
	}

	n := rows.Nrow()

	ones := make([]float64, n)
	floats.AddConst(1, ones)
	weights, err := columnar.NewFrame(series.New(ones, series.Float, WeightField))
	if err != nil {
		return nil, WrapError(ErrCategoryInternal, CodeUnexpected,
			"initialize weights", err)
	}

	pass := make([]bool, n)
	for i := range pass {
		pass[i] = true
	}
	filters, err := columnar.NewFrame(series.New(pass, series.Bool, NoFilterField))
	if err != nil {
		return nil, WrapError(ErrCategoryInternal, CodeUnexpected,
			"initialize filters", err)
	}

	t := &EventTable{
		rows:    rows,
		weights: weights,
		filters: filters,
		meta:    types.Meta{},
		policy:  DefaultPolicy(),
		stats:   observability.NewOpStats(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Len returns the row count. The rows record is authoritative.
func (t *EventTable) Len() int {
	return t.rows.Nrow()
}

// Rows returns the event data record.
func (t *EventTable) Rows() columnar.Record {
	return t.rows
}

// Weights returns the weights record.
func (t *EventTable) Weights() *columnar.Frame {
	return t.weights
}

// Filters returns the filters record.
func (t *EventTable) Filters() *columnar.Frame {
	return t.filters
}

// Meta returns a copy of the metadata mapping.
func (t *EventTable) Meta() types.Meta {
	return t.meta.Clone()
}

// Err returns the sticky error latched by a failed builder call, or nil.
func (t *EventTable) Err() error {
	return t.err
}

// AddWeight attaches a per-event weight field, overwriting any existing
// field of the same name, and returns the table for chaining. Under the
// default policy the values' shape is not checked here; a misaligned
// attachment is the engine's to reject.
func (t *EventTable) AddWeight(name string, values any) *EventTable {
	if t.err != nil {
		return t
	}
	if err := t.checkShape(name, values); err != nil {
		t.err = err
		return t
	}
	w, err := t.weights.Attach(name, values)
	if err != nil {
		t.err = err
		return t
	}
	t.weights = w
	return t
}

// AddColumn attaches a column to the event data record, overwriting any
// existing column of the same name, and returns the table for chaining.
func (t *EventTable) AddColumn(name string, values any) *EventTable {
	if t.err != nil {
		return t
	}
	if err := t.checkShape(name, values); err != nil {
		t.err = err
		return t
	}
	rows, err := t.rows.WithColumn(name, values)
	if err != nil {
		t.err = err
		return t
	}
	t.rows = rows
	return t
}

// AddFilter attaches a boolean filter field and returns the table for
// chaining. A name that does not already start with "filter" is stored
// as "filter_" + name; callers must anticipate the rewritten name on
// later lookups.
func (t *EventTable) AddFilter(name string, values any) *EventTable {
	if t.err != nil {
		return t
	}
	if !strings.HasPrefix(name, FilterPrefix) {
		name = FilterPrefix + "_" + name
	}
	if err := t.checkShape(name, values); err != nil {
		t.err = err
		return t
	}
	f, err := t.filters.Attach(name, values)
	if err != nil {
		t.err = err
		return t
	}
	t.filters = f
	return t
}

// AddMeta sets a metadata entry and returns the table for chaining. Keys
// and values are not validated under the default policy.
func (t *EventTable) AddMeta(name string, value any) *EventTable {
	if t.err != nil {
		return t
	}
	if t.policy.ValidateMeta && !types.IsMetaValue(value) {
		t.err = newValidationError(CodeInvalidMeta,
			fmt.Sprintf("meta %q: value must be a number, string, or homogeneous list", name))
		return t
	}
	t.meta[name] = value
	return t
}

// Select returns a new EventTable whose rows, weights and filters are each
// subset by the same index expression. All three records are subset before
// the derived table is assembled, so a failure never exposes a partially
// updated table. Metadata and policy carry over.
func (t *EventTable) Select(index columnar.Index) (*EventTable, error) {
	start := time.Now()
	if t.err != nil {
		return nil, t.err
	}

	rows, err := t.rows.Subset(index)
	if err != nil {
		return nil, newIndexError("subset rows", err)
	}
	weights, err := t.weights.SubsetFrame(index)
	if err != nil {
		return nil, newIndexError("subset weights", err)
	}
	filters, err := t.filters.SubsetFrame(index)
	if err != nil {
		return nil, newIndexError("subset filters", err)
	}

	t.stats.Record("select", time.Since(start))
	return &EventTable{
		rows:    rows,
		weights: weights,
		filters: filters,
		meta:    t.meta.Clone(),
		policy:  t.policy,
		stats:   t.stats,
	}, nil
}

// Head returns the first n rows, clamped to the table length.
// n must be positive.
func (t *EventTable) Head(n int) (*EventTable, error) {
	if n <= 0 {
		return nil, newValidationError(CodeInvalidArgument,
			fmt.Sprintf("head requires n > 0, got %d", n))
	}
	end := n
	if end > t.Len() {
		end = t.Len()
	}
	return t.Select(columnar.Span{Start: 0, End: end})
}

// Tail returns the last n rows, clamped to the table length.
// n must be positive.
func (t *EventTable) Tail(n int) (*EventTable, error) {
	if n <= 0 {
		return nil, newValidationError(CodeInvalidArgument,
			fmt.Sprintf("tail requires n > 0, got %d", n))
	}
	if n > t.Len() {
		n = t.Len()
	}
	return t.Select(columnar.Span{Start: t.Len() - n, End: t.Len()})
}

// Set always fails: event tables are immutable at row granularity. Only
// whole-column attachment through the Add* builders is allowed.
func (t *EventTable) Set(index columnar.Index, value any) error {
	return newMutationError(CodeRowAssignment,
		"event tables are immutable at row granularity")
}

// Clone returns a structural copy of the table: a fresh table built from
// the same rows record and metadata, with every weight and filter field
// re-attached. The copy shares no mutable container with the source.
func (t *EventTable) Clone() (*EventTable, error) {
	if t.err != nil {
		return nil, t.err
	}

	cp, err := New(t.rows, WithMeta(t.meta), WithPolicy(t.policy))
	if err != nil {
		return nil, err
	}
	// Raw attachment: field names carry over verbatim, including the
	// nominal weight and pass-all filter.
	for _, name := range t.weights.Names() {
		col, err := t.weights.Col(name)
		if err != nil {
			return nil, WrapError(ErrCategoryInternal, CodeUnexpected, "copy weights", err)
		}
		w, err := cp.weights.Attach(name, col)
		if err != nil {
			return nil, WrapError(ErrCategoryInternal, CodeUnexpected, "copy weights", err)
		}
		cp.weights = w
	}
	for _, name := range t.filters.Names() {
		col, err := t.filters.Col(name)
		if err != nil {
			return nil, WrapError(ErrCategoryInternal, CodeUnexpected, "copy filters", err)
		}
		f, err := cp.filters.Attach(name, col)
		if err != nil {
			return nil, WrapError(ErrCategoryInternal, CodeUnexpected, "copy filters", err)
		}
		cp.filters = f
	}
	return cp, nil
}

// OpMetrics is a snapshot entry of the table lineage's operation stats.
type OpMetrics struct {
	Op    string
	Count int64
	Total time.Duration
}

// OpMetrics returns operation statistics for this table and every table
// derived from it, sorted by count (descending).
func (t *EventTable) OpMetrics() []OpMetrics {
	snap := t.stats.Snapshot()
	out := make([]OpMetrics, len(snap))
	for i, rec := range snap {
		out[i] = OpMetrics{Op: rec.Op, Count: rec.Count, Total: rec.Total}
	}
	return out
}

// String returns a multi-line diagnostic summary: metadata, row count,
// column names, nominal weights, and filter fields with their values.
func (t *EventTable) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EventTable: %d rows\n", t.Len())

	if len(t.meta) > 0 {
		keys := make([]string, 0, len(t.meta))
		for k := range t.meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("meta:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %v\n", k, t.meta[k])
		}
	}

	fmt.Fprintf(&sb, "columns: %s\n", strings.Join(t.rows.Names(), ", "))

	sb.WriteString("weights:\n")
	for _, name := range t.weights.Names() {
		col, err := t.weights.Col(name)
		if err != nil {
			continue
		}
		vals := col.Float()
		fmt.Fprintf(&sb, "  %s: %s (sum %g)\n", name, previewFloats(vals), floats.Sum(vals))
	}

	sb.WriteString("filters:\n")
	for _, name := range t.filters.Names() {
		col, err := t.filters.Col(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %s\n", name, previewStrings(col.Records()))
	}

	return sb.String()
}

// checkShape enforces the shape policy on builder values. Values of kinds
// the adapter does not size are left to the engine.
func (t *EventTable) checkShape(name string, values any) error {
	if !t.policy.ValidateShapes {
		return nil
	}
	n, ok := valueLen(values)
	if !ok {
		return nil
	}
	if n != t.Len() {
		return newValidationError(CodeShapeMismatch,
			fmt.Sprintf("field %q has %d values, table has %d rows", name, n, t.Len()))
	}
	return nil
}

// valueLen reports the row count of a column value, when determinable.
func valueLen(values any) (int, bool) {
	switch v := values.(type) {
	case []float64:
		return len(v), true
	case []int:
		return len(v), true
	case []bool:
		return len(v), true
	case []string:
		return len(v), true
	case series.Series:
		return v.Len(), true
	default:
		return 0, false
	}
}

const previewLimit = 8

func previewFloats(vals []float64) string {
	if len(vals) <= previewLimit {
		return fmt.Sprintf("%v", vals)
	}
	return fmt.Sprintf("%v...", vals[:previewLimit])
}

func previewStrings(vals []string) string {
	if len(vals) <= previewLimit {
		return fmt.Sprintf("%v", vals)
	}
	return fmt.Sprintf("%v...", vals[:previewLimit])
}
