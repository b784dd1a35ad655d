// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package diff reconciles two collections of platform records after a
// migration. Records are matched by an identity field; matched pairs
// are compared field by field with a caller-supplied exclusion list for
// volatile, destination-assigned attributes.
package diff

import (
	"reflect"
	"sort"

	"github.com/juju/collections/set"

	"github.com/cml-tools/teammigrate/core/metadata"
)

// FieldDiff names one field that differs between the two sides for a
// shared identity.
type FieldDiff struct {
	Name  string
	Field string
}

// Result reports the divergence between two record collections.
type Result struct {
	// Missing holds identities present on exactly one side, sorted.
	Missing []string
	// FieldDiffs holds the differing fields of shared identities,
	// sorted by identity then field.
	FieldDiffs []FieldDiff
}

// Clean reports whether no divergence was found.
func (r Result) Clean() bool {
	return len(r.Missing) == 0 && len(r.FieldDiffs) == 0
}

// Compare reconciles two record collections. skip names fields ignored
// during field comparison; the identity field itself is always ignored.
// Output ordering is deterministic regardless of input order.
func Compare(left, right []metadata.Attrs, leftNames, rightNames []string, skip []string, idField string) Result {
	leftSet := set.NewStrings(leftNames...)
	rightSet := set.NewStrings(rightNames...)

	onlyLeft := leftSet.Difference(rightSet)
	onlyRight := rightSet.Difference(leftSet)
	missing := onlyLeft.Union(onlyRight).SortedValues()

	skipSet := set.NewStrings(skip...)
	skipSet.Add(idField)

	leftIndex := indexByField(left, idField)
	rightIndex := indexByField(right, idField)

	var diffs []FieldDiff
	for _, name := range leftSet.Intersection(rightSet).SortedValues() {
		l, ok := leftIndex[name]
		if !ok {
			continue
		}
		r, ok := rightIndex[name]
		if !ok {
			continue
		}
		for _, field := range fieldUnion(l, r) {
			if skipSet.Contains(field) {
				continue
			}
			if !reflect.DeepEqual(l[field], r[field]) {
				diffs = append(diffs, FieldDiff{Name: name, Field: field})
			}
		}
	}
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Name != diffs[j].Name {
			return diffs[i].Name < diffs[j].Name
		}
		return diffs[i].Field < diffs[j].Field
	})
	return Result{Missing: missing, FieldDiffs: diffs}
}

func indexByField(records []metadata.Attrs, idField string) map[string]metadata.Attrs {
	index := make(map[string]metadata.Attrs, len(records))
	for _, r := range records {
		if name, ok := r[idField].(string); ok {
			index[name] = r
		}
	}
	return index
}

func fieldUnion(l, r metadata.Attrs) []string {
	fields := set.NewStrings()
	for k := range l {
		fields.Add(k)
	}
	for k := range r {
		fields.Add(k)
	}
	return fields.SortedValues()
}
