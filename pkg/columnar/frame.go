package columnar

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Sentinel errors for the gota adapter.
var (
	// ErrUnsupportedIndex is returned when an Index value is of a kind the
	// engine cannot interpret.
	ErrUnsupportedIndex = errors.New("unsupported index kind")

	// ErrUnsupportedColumn is returned when a column value cannot be
	// coerced to an engine series.
	ErrUnsupportedColumn = errors.New("unsupported column value kind")

	// ErrIndexOutOfRange is returned when an integer selection names a
	// position outside the frame's row range.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Frame is a Record backed by a gota DataFrame. It is the default engine
// adapter: every Subset and WithColumn call delegates to the engine and
// surfaces the engine's own failure as a wrapped error.
type Frame struct {
	df dataframe.DataFrame
}

// NewFrame builds a Frame from engine series, one per column.
func NewFrame(cols ...series.Series) (*Frame, error) {
	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, fmt.Errorf("columnar: build frame: %w", df.Err)
	}
	return &Frame{df: df}, nil
}

// FromDataFrame wraps an existing engine dataframe.
func FromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("columnar: wrap dataframe: %w", df.Err)
	}
	return &Frame{df: df}, nil
}

// DataFrame returns the underlying engine dataframe.
func (f *Frame) DataFrame() dataframe.DataFrame {
	return f.df
}

// Names returns the column names.
func (f *Frame) Names() []string {
	return f.df.Names()
}

// Nrow returns the row count.
func (f *Frame) Nrow() int {
	return f.df.Nrow()
}

// Col returns the named column as an engine series.
func (f *Frame) Col(name string) (series.Series, error) {
	for _, n := range f.df.Names() {
		if n == name {
			return f.df.Col(name), nil
		}
	}
	return series.Series{}, fmt.Errorf("columnar: no column %q", name)
}

// Subset returns a new Frame holding the selected rows. The index is
// normalized (see Index) and integer positions are bounds-checked before
// delegation; the engine indexes integer selections without a range check,
// so an unchecked out-of-range position would panic instead of erroring.
// Mask misalignment stays the engine's to reject.
func (f *Frame) Subset(index Index) (Record, error) {
	sub, err := f.SubsetFrame(index)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SubsetFrame is Subset with a concrete result type.
func (f *Frame) SubsetFrame(index Index) (*Frame, error) {
	idx, err := normalizeIndex(index, f.df.Nrow())
	if err != nil {
		return nil, err
	}
	sub := f.df.Subset(idx)
	if sub.Err != nil {
		return nil, fmt.Errorf("columnar: subset: %w", sub.Err)
	}
	return &Frame{df: sub}, nil
}

// WithColumn returns a new Frame with the named column attached or
// replaced. No shape check is performed here; a misaligned column is the
// engine's to reject.
func (f *Frame) WithColumn(name string, values any) (Record, error) {
	mut, err := f.Attach(name, values)
	if err != nil {
		return nil, err
	}
	return mut, nil
}

// Attach is WithColumn with a concrete result type.
func (f *Frame) Attach(name string, values any) (*Frame, error) {
	s, err := toSeries(name, values)
	if err != nil {
		return nil, err
	}
	mut := f.df.Mutate(s)
	if mut.Err != nil {
		return nil, fmt.Errorf("columnar: attach column %q: %w", name, mut.Err)
	}
	return &Frame{df: mut}, nil
}

// normalizeIndex converts an Index into a form the engine accepts.
// Integer positions are checked against nrow here because the engine does
// not check them itself.
func normalizeIndex(index Index, nrow int) (series.Indexes, error) {
	switch v := index.(type) {
	case int:
		return checkPositions([]int{v}, nrow)
	case []int:
		return checkPositions(v, nrow)
	case []bool:
		return v, nil
	case Span:
		if v.End < v.Start {
			return nil, fmt.Errorf("columnar: invalid span [%d, %d)", v.Start, v.End)
		}
		if v.Start < 0 || v.End > nrow {
			return nil, fmt.Errorf("columnar: %w: span [%d, %d) not in [0, %d)",
				ErrIndexOutOfRange, v.Start, v.End, nrow)
		}
		idx := make([]int, 0, v.End-v.Start)
		for i := v.Start; i < v.End; i++ {
			idx = append(idx, i)
		}
		return idx, nil
	case series.Series:
		if v.Type() == series.Int {
			ints, err := v.Int()
			if err != nil {
				return nil, fmt.Errorf("columnar: index series: %w", err)
			}
			return checkPositions(ints, nrow)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedIndex, index)
	}
}

// checkPositions rejects positions outside [0, nrow).
func checkPositions(idx []int, nrow int) ([]int, error) {
	for _, p := range idx {
		if p < 0 || p >= nrow {
			return nil, fmt.Errorf("columnar: %w: %d not in [0, %d)",
				ErrIndexOutOfRange, p, nrow)
		}
	}
	return idx, nil
}

// toSeries coerces a column value into an engine series named name.
func toSeries(name string, values any) (series.Series, error) {
	switch v := values.(type) {
	case series.Series:
		if v.Err != nil {
			return series.Series{}, fmt.Errorf("columnar: series %q: %w", name, v.Err)
		}
		v.Name = name
		return v, nil
	case []float64:
		return series.New(v, series.Float, name), nil
	case []int:
		return series.New(v, series.Int, name), nil
	case []bool:
		return series.New(v, series.Bool, name), nil
	case []string:
		return series.New(v, series.String, name), nil
	default:
		return series.Series{}, fmt.Errorf("%w: %T", ErrUnsupportedColumn, values)
	}
}
