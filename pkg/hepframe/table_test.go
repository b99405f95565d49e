package hepframe

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"

	"github.com/hepdataframe/hepdataframe/pkg/columnar"
	"github.com/hepdataframe/hepdataframe/pkg/types"
)

// testTable builds a three-row table with a float column x and a string
// column y holding serialized jagged lists.
func testTable(t *testing.T, opts ...Option) *EventTable {
	t.Helper()
	f, err := columnar.NewFrame(
		series.New([]float64{1, 2, 3}, series.Float, "x"),
		series.New([]string{"[1,2,3,4,5]", "[1]", "[]"}, series.String, "y"),
	)
	if err != nil {
		t.Fatalf("failed to build frame: %v", err)
	}
	tbl, err := New(f, opts...)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return tbl
}

// emptyRecord satisfies the columnar capability with a zero field set.
type emptyRecord struct{}

func (emptyRecord) Names() []string { return nil }
func (emptyRecord) Nrow() int       { return 0 }
func (emptyRecord) Subset(columnar.Index) (columnar.Record, error) {
	return emptyRecord{}, nil
}
func (emptyRecord) WithColumn(string, any) (columnar.Record, error) {
	return emptyRecord{}, nil
}

func weightValues(t *testing.T, tbl *EventTable, name string) []float64 {
	t.Helper()
	col, err := tbl.Weights().Col(name)
	if err != nil {
		t.Fatalf("missing weight field %q: %v", name, err)
	}
	return col.Float()
}

func rowValues(t *testing.T, tbl *EventTable, name string) []float64 {
	t.Helper()
	frame, ok := tbl.Rows().(*columnar.Frame)
	if !ok {
		t.Fatalf("rows record is not a Frame")
	}
	col, err := frame.Col(name)
	if err != nil {
		t.Fatalf("missing column %q: %v", name, err)
	}
	return col.Float()
}

func TestNew_Defaults(t *testing.T) {
	tbl := testTable(t)

	if tbl.Len() != 3 {
		t.Errorf("got %d rows, want 3", tbl.Len())
	}

	names := tbl.Weights().Names()
	if len(names) != 1 || names[0] != WeightField {
		t.Errorf("got weight fields %v, want [weight]", names)
	}
	for i, w := range weightValues(t, tbl, WeightField) {
		if w != 1.0 {
			t.Errorf("weight[%d] = %v, want 1.0", i, w)
		}
	}

	names = tbl.Filters().Names()
	if len(names) != 1 || names[0] != NoFilterField {
		t.Errorf("got filter fields %v, want [no_filter]", names)
	}
	col, err := tbl.Filters().Col(NoFilterField)
	if err != nil {
		t.Fatalf("missing no_filter: %v", err)
	}
	for i, v := range col.Records() {
		if v != "true" {
			t.Errorf("no_filter[%d] = %q, want true", i, v)
		}
	}
}

func TestNew_NilRows(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, NewError(ErrCategoryValidation, CodeNotColumnar, "")) {
		t.Errorf("got %v, want VALIDATION:NOT_COLUMNAR", err)
	}
}

func TestNew_NoFields(t *testing.T) {
	_, err := New(emptyRecord{})
	if !errors.Is(err, NewError(ErrCategoryValidation, CodeNoFields, "")) {
		t.Errorf("got %v, want VALIDATION:NO_FIELDS", err)
	}
}

func TestNew_Options(t *testing.T) {
	tbl := testTable(t,
		WithMeta(types.Meta{"dataset": "dy_mc", "year": 2018}),
		WithProvenance(),
	)

	meta := tbl.Meta()
	if meta["dataset"] != "dy_mc" || meta["year"] != 2018 {
		t.Errorf("meta not carried: %v", meta)
	}
	id, ok := meta[MetaProvenanceID].(string)
	if !ok || id == "" {
		t.Error("WithProvenance should stamp a non-empty provenance_id")
	}
}

func TestBuilders_Chain(t *testing.T) {
	tbl := testTable(t)

	got := tbl.
		AddWeight("w_pileup", []float64{3, 3, 3}).
		AddColumn("z", []int{7, 8, 9}).
		AddMeta("lumi", 59.7)

	if got != tbl {
		t.Error("builders must return the receiver for chaining")
	}
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}

	wnames := tbl.Weights().Names()
	if len(wnames) != 2 {
		t.Errorf("got weight fields %v, want weight and w_pileup", wnames)
	}
	found := false
	for _, n := range tbl.Rows().Names() {
		if n == "z" {
			found = true
		}
	}
	if !found {
		t.Errorf("column z not attached: %v", tbl.Rows().Names())
	}
	if tbl.Meta()["lumi"] != 59.7 {
		t.Error("meta entry not attached")
	}
}

func TestAddWeight_Overwrite(t *testing.T) {
	tbl := testTable(t).AddWeight(WeightField, []float64{2, 2, 2})
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}
	for i, w := range weightValues(t, tbl, WeightField) {
		if w != 2.0 {
			t.Errorf("weight[%d] = %v, want 2.0", i, w)
		}
	}
	if len(tbl.Weights().Names()) != 1 {
		t.Error("overwriting should not add a field")
	}
}

func TestAddFilter_Prefix(t *testing.T) {
	tbl := testTable(t)
	mask := []bool{true, false, true}

	tbl.AddFilter("x_cut", mask)
	if _, err := tbl.Filters().Col("filter_x_cut"); err != nil {
		t.Errorf("unprefixed name should be stored as filter_x_cut: %v", tbl.Filters().Names())
	}

	tbl.AddFilter("filter_x_cut", mask)
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}
	if len(tbl.Filters().Names()) != 2 {
		t.Errorf("prefixed name must be stored unchanged, got fields %v", tbl.Filters().Names())
	}
}

func TestSelect_BoolMask(t *testing.T) {
	tbl := testTable(t).
		AddWeight("w", []float64{3, 4, 5}).
		AddFilter("tight", []bool{false, true, true})
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}

	sub, err := tbl.Select([]bool{true, false, true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.Len() != 2 {
		t.Errorf("got %d rows, want 2", sub.Len())
	}
	if x := rowValues(t, sub, "x"); x[0] != 1 || x[1] != 3 {
		t.Errorf("got x %v, want [1 3]", x)
	}
	if w := weightValues(t, sub, "w"); w[0] != 3 || w[1] != 5 {
		t.Errorf("got w %v, want [3 5]", w)
	}
	// Every weight and filter field survives the subset.
	if len(sub.Weights().Names()) != 2 {
		t.Errorf("weight fields lost: %v", sub.Weights().Names())
	}
	if len(sub.Filters().Names()) != 2 {
		t.Errorf("filter fields lost: %v", sub.Filters().Names())
	}
	// Containers stay aligned.
	if sub.Weights().Nrow() != sub.Len() || sub.Filters().Nrow() != sub.Len() {
		t.Error("weights/filters misaligned after subset")
	}
}

func TestSelect_SingleInt(t *testing.T) {
	tbl := testTable(t)
	sub, err := tbl.Select(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Len() != 1 {
		t.Errorf("got %d rows, want 1", sub.Len())
	}
	if x := rowValues(t, sub, "x"); x[0] != 2 {
		t.Errorf("got x %v, want [2]", x)
	}
}

func TestSelect_CopiesMeta(t *testing.T) {
	tbl := testTable(t, WithMeta(types.Meta{"dataset": "dy_mc"}))
	sub, err := tbl.Select([]int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Meta()["dataset"] != "dy_mc" {
		t.Error("meta should carry over to derived tables")
	}
	sub.AddMeta("dataset", "tt_mc")
	if tbl.Meta()["dataset"] != "dy_mc" {
		t.Error("derived table meta must not alias the source")
	}
}

func TestSelect_BadMask(t *testing.T) {
	tbl := testTable(t)
	_, err := tbl.Select([]bool{true})
	if GetCategory(err) != ErrCategoryIndex {
		t.Errorf("got %v, want INDEX category", err)
	}
}

func TestSelect_OutOfRange(t *testing.T) {
	tbl := testTable(t)

	for _, idx := range []columnar.Index{99, []int{0, 3}, columnar.Span{Start: 0, End: 4}} {
		_, err := tbl.Select(idx)
		if GetCategory(err) != ErrCategoryIndex {
			t.Errorf("Select(%v): got %v, want INDEX category", idx, err)
		}
		if !errors.Is(err, columnar.ErrIndexOutOfRange) {
			t.Errorf("Select(%v): got %v, want ErrIndexOutOfRange in chain", idx, err)
		}
	}
}

func TestHeadTail(t *testing.T) {
	tbl := testTable(t)

	head, err := tbl.Head(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x := rowValues(t, head, "x"); len(x) != 2 || x[0] != 1 || x[1] != 2 {
		t.Errorf("got head x %v, want [1 2]", x)
	}

	tail, err := tbl.Tail(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x := rowValues(t, tail, "x"); len(x) != 2 || x[0] != 2 || x[1] != 3 {
		t.Errorf("got tail x %v, want [2 3]", x)
	}

	// n beyond the table length clamps to all rows.
	all, err := tbl.Head(99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Len() != 3 {
		t.Errorf("got %d rows, want 3", all.Len())
	}
	all, err = tbl.Tail(DefaultPreviewRows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.Len() != 3 {
		t.Errorf("got %d rows, want 3", all.Len())
	}
}

func TestHeadTail_InvalidArgument(t *testing.T) {
	tbl := testTable(t)
	want := NewError(ErrCategoryValidation, CodeInvalidArgument, "")

	for _, n := range []int{0, -1, -99} {
		if _, err := tbl.Head(n); !errors.Is(err, want) {
			t.Errorf("Head(%d): got %v, want VALIDATION:INVALID_ARGUMENT", n, err)
		}
		if _, err := tbl.Tail(n); !errors.Is(err, want) {
			t.Errorf("Tail(%d): got %v, want VALIDATION:INVALID_ARGUMENT", n, err)
		}
	}
}

func TestSet_AlwaysFails(t *testing.T) {
	tbl := testTable(t)
	want := NewError(ErrCategoryMutation, CodeRowAssignment, "")

	for _, idx := range []columnar.Index{0, []int{1}, []bool{true, true, true}} {
		if err := tbl.Set(idx, []float64{9, 9, 9}); !errors.Is(err, want) {
			t.Errorf("Set(%v): got %v, want MUTATION:ROW_ASSIGNMENT", idx, err)
		}
	}
}

func TestStrictPolicy_ShapeMismatchLatches(t *testing.T) {
	tbl := testTable(t, WithPolicy(StrictPolicy()))

	tbl.AddWeight("w", []float64{1})
	err := tbl.Err()
	if !errors.Is(err, NewError(ErrCategoryValidation, CodeShapeMismatch, "")) {
		t.Fatalf("got %v, want VALIDATION:SHAPE_MISMATCH", err)
	}

	// Later builder calls are no-ops once the error has latched.
	tbl.AddWeight("w2", []float64{1, 2, 3})
	if len(tbl.Weights().Names()) != 1 {
		t.Error("builders must not run after a latched error")
	}
	// Subsetting reports the latched error.
	if _, serr := tbl.Select([]int{0}); !errors.Is(serr, err) {
		t.Errorf("Select after latched error: got %v, want %v", serr, err)
	}
}

func TestDefaultPolicy_DefersToEngine(t *testing.T) {
	tbl := testTable(t)

	tbl.AddWeight("w", []float64{1})
	err := tbl.Err()
	if err == nil {
		t.Fatal("misaligned attachment should surface the engine failure")
	}
	if GetCode(err) == CodeShapeMismatch {
		t.Error("default policy must not run the boundary shape check")
	}
}

func TestStrictPolicy_MetaValidation(t *testing.T) {
	tbl := testTable(t, WithPolicy(StrictPolicy()))
	tbl.AddMeta("bad", map[string]int{"k": 1})
	if !errors.Is(tbl.Err(), NewError(ErrCategoryValidation, CodeInvalidMeta, "")) {
		t.Errorf("got %v, want VALIDATION:INVALID_META", tbl.Err())
	}
}

func TestClone(t *testing.T) {
	tbl := testTable(t, WithMeta(types.Meta{"dataset": "dy_mc"})).
		AddWeight(WeightField, []float64{2, 2, 2}).
		AddWeight("w", []float64{3, 4, 5}).
		AddFilter("tight", []bool{true, false, true})
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}

	cp, err := tbl.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cp.Len() != tbl.Len() {
		t.Errorf("got %d rows, want %d", cp.Len(), tbl.Len())
	}
	if cp.Meta()["dataset"] != "dy_mc" {
		t.Error("meta should carry over")
	}
	// Every weight and filter field carries over under its exact name.
	if w := weightValues(t, cp, WeightField); w[0] != 2 {
		t.Errorf("overwritten nominal weight lost: %v", w)
	}
	if w := weightValues(t, cp, "w"); w[2] != 5 {
		t.Errorf("weight field w lost: %v", w)
	}
	fnames := cp.Filters().Names()
	if len(fnames) != 2 {
		t.Errorf("got filter fields %v, want no_filter and filter_tight", fnames)
	}
	for _, n := range fnames {
		if n != NoFilterField && n != "filter_tight" {
			t.Errorf("unexpected filter field %q", n)
		}
	}

	// The copy does not alias the source's containers.
	cp.AddWeight("extra", []float64{1, 1, 1})
	if len(tbl.Weights().Names()) != 2 {
		t.Error("mutating the copy must not touch the source")
	}
}

func TestString(t *testing.T) {
	tbl := testTable(t, WithMeta(types.Meta{"dataset": "dy_mc"})).
		AddFilter("tight", []bool{true, false, true})
	if err := tbl.Err(); err != nil {
		t.Fatalf("unexpected sticky error: %v", err)
	}

	s := tbl.String()
	for _, want := range []string{"3 rows", "dataset: dy_mc", "x, y", WeightField, NoFilterField, "filter_tight"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestOpMetrics(t *testing.T) {
	tbl := testTable(t)

	if _, err := tbl.Select([]int{0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub, err := tbl.Select([]int{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Derived tables record into the same lineage collector.
	if _, err := sub.Select(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var selects int64
	for _, m := range tbl.OpMetrics() {
		if m.Op == "select" {
			selects = m.Count
		}
	}
	if selects != 3 {
		t.Errorf("got %d select records, want 3", selects)
	}
}
