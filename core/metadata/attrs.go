// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package metadata holds the record types exchanged with the workspace
// platform. Records are deliberately schemaless: the platform attaches
// provider-specific attributes (join dates, counters, urls) that must
// survive an export/import round trip untouched, so everything is kept
// as raw attributes with typed accessors over the fields this tool
// actually interprets.
package metadata

import (
	"sort"
)

// Attrs is a raw platform record. Unknown fields pass through verbatim.
type Attrs map[string]interface{}

// Copy returns a shallow copy of the record.
func (a Attrs) Copy() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Username returns the record's identity key, or the empty string when
// the field is absent or not a string.
func (a Attrs) Username() string {
	name, _ := a["username"].(string)
	return name
}

// Names returns the username of every record, in record order.
func Names(records []Attrs) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Username())
	}
	return names
}

// SortedNames returns the username of every record in lexical order.
func SortedNames(records []Attrs) []string {
	names := Names(records)
	sort.Strings(names)
	return names
}
