package hepframe

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hepdataframe/hepdataframe/pkg/columnar"
)

// GroupBy partitions the table by named boolean selectors. Every selector
// independently subsets the table, so groups may overlap or leave rows
// uncovered when the selectors do; disjointness is the caller's business.
func (t *EventTable) GroupBy(selectors map[string]columnar.Index) (*GroupedTables, error) {
	start := time.Now()
	if t.err != nil {
		return nil, t.err
	}

	groups := make(map[string]*EventTable, len(selectors))
	for name, sel := range selectors {
		sub, err := t.Select(sel)
		if err != nil {
			return nil, newIndexError(fmt.Sprintf("group %q", name), err)
		}
		groups[name] = sub
	}

	t.stats.Record("groupby", time.Since(start))
	return NewGroupedTables(groups), nil
}

// GroupedTables maps group labels to row-subset EventTables. The
// collection is immutable once constructed.
type GroupedTables struct {
	groups map[string]*EventTable
}

// NewGroupedTables wraps a label-to-table mapping. The mapping is copied;
// the values are not inspected.
func NewGroupedTables(groups map[string]*EventTable) *GroupedTables {
	cp := make(map[string]*EventTable, len(groups))
	for label, t := range groups {
		cp[label] = t
	}
	return &GroupedTables{groups: cp}
}

// Len returns the number of groups.
func (g *GroupedTables) Len() int {
	return len(g.groups)
}

// Labels returns the group labels, sorted.
func (g *GroupedTables) Labels() []string {
	labels := make([]string, 0, len(g.groups))
	for label := range g.groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Group returns the table stored under label.
func (g *GroupedTables) Group(label string) (*EventTable, error) {
	t, ok := g.groups[label]
	if !ok {
		return nil, newLookupError(fmt.Sprintf("no group %q", label))
	}
	return t, nil
}

// Set always fails: grouped collections are immutable once constructed.
func (g *GroupedTables) Set(label string, t *EventTable) error {
	return newMutationError(CodeGroupAssignment,
		"grouped tables are immutable once constructed")
}

// String returns a one-line-per-group diagnostic summary.
func (g *GroupedTables) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "GroupedTables: %d groups\n", g.Len())
	for _, label := range g.Labels() {
		fmt.Fprintf(&sb, "  %s: %d rows\n", label, g.groups[label].Len())
	}
	return sb.String()
}
