// Package sections flattens results into the ordered, titled lists the
// human-readable renderers print.
package sections

import (
	"sort"

	"github.com/arthur-debert/stowaway/pkg/style"
	"github.com/arthur-debert/stowaway/pkg/types"
)

// Entry is one line of a section. Detail is optional.
type Entry struct {
	Path   string
	Detail string
}

// Section is a non-empty group of report entries
type Section struct {
	Category style.Category
	Entries  []Entry
}

// FromReport returns the report's non-empty sections in display order
func FromReport(r types.Report) []Section {
	lists := map[style.Category][]Entry{
		style.CategoryAdded:    plain(r.Added),
		style.CategoryChanged:  plain(r.Changed),
		style.CategoryDeleted:  plain(r.Deleted),
		style.CategoryIgnored:  plain(r.Ignored),
		style.CategoryRealized: paths(r.Realized),
		style.CategoryBackedUp: detailed(r.BackedUp),
		style.CategoryRestored: detailed(r.Restored),
		style.CategoryErrors:   detailed(r.Errors),
	}

	var out []Section
	for _, c := range style.Categories() {
		if entries := lists[c]; len(entries) > 0 {
			out = append(out, Section{Category: c, Entries: entries})
		}
	}
	return out
}

// FromDrift groups drift by state
func FromDrift(drift []types.Drift) []Section {
	byState := map[types.DriftState][]Entry{}
	for _, d := range drift {
		byState[d.State] = append(byState[d.State], Entry{Path: d.Path})
	}

	order := []struct {
		state    types.DriftState
		category style.Category
	}{
		{types.DriftModified, style.CategoryChanged},
		{types.DriftMissing, style.CategoryDeleted},
		{types.DriftAdded, style.CategoryAdded},
		{types.DriftIgnored, style.CategoryIgnored},
	}

	var out []Section
	for _, o := range order {
		entries := byState[o.state]
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		out = append(out, Section{Category: o.category, Entries: entries})
	}
	return out
}

// DriftTitle names a drift section, which differs from the deploy wording
func DriftTitle(c style.Category) string {
	switch c {
	case style.CategoryChanged:
		return "Modified"
	case style.CategoryDeleted:
		return "Missing"
	case style.CategoryAdded:
		return "Untracked"
	default:
		return style.Title(c)
	}
}

func plain(list []string) []Entry {
	out := make([]Entry, 0, len(list))
	for _, p := range list {
		out = append(out, Entry{Path: p})
	}
	return out
}

// realized content is too long to print, only paths are listed
func paths(list []types.PathValue) []Entry {
	out := make([]Entry, 0, len(list))
	for _, pv := range list {
		out = append(out, Entry{Path: pv.Path})
	}
	return out
}

func detailed(list []types.PathValue) []Entry {
	out := make([]Entry, 0, len(list))
	for _, pv := range list {
		out = append(out, Entry{Path: pv.Path, Detail: pv.Value})
	}
	return out
}
