// Package report renders comparison failures for humans and results for
// machines.
package report

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tidwall/sjson"
)

// TextDiff marks deletions as [-x-] and insertions as {+x+} going from
// expected to actual. Equal strings produce the string unchanged.
func TextDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + diff.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + diff.Text + "+}")
		default:
			b.WriteString(diff.Text)
		}
	}
	return b.String()
}

// UnifiedDiff compares two line lists. The bool is true when they are equal,
// in which case only the file headers are returned.
func UnifiedDiff(expectedName string, expected []string, actualName string, actual []string) (string, bool) {
	a := joinLines(expected)
	b := joinLines(actual)
	edits := myers.ComputeEdits(span.URIFromPath(expectedName), a, b)
	diff := fmt.Sprint(gotextdiff.ToUnified(expectedName, actualName, a, edits))
	isEmptyDiff := len(edits) == 0 || len(diff) == 0
	if isEmptyDiff {
		diff = "--- " + expectedName + "\n+++ " + actualName + "\n"
	}
	return diff, isEmptyDiff
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Doc builds a JSON document by path, e.g. "entries.0.label".
type Doc struct {
	raw string
	err error
}

func NewDoc() *Doc { return &Doc{raw: "{}"} }

// Set stores v at path. The first error sticks and is returned by JSON.
func (d *Doc) Set(path string, v any) *Doc {
	if d.err != nil {
		return d
	}
	raw, err := sjson.Set(d.raw, path, v)
	if err != nil {
		d.err = fmt.Errorf("setting %s: %w", path, err)
		return d
	}
	d.raw = raw
	return d
}

// Append adds v to the array at path.
func (d *Doc) Append(path string, v any) *Doc {
	return d.Set(path+".-1", v)
}

func (d *Doc) JSON() (string, error) {
	return d.raw, d.err
}
