// Package report renders diff results as bounded-width text and orchestrates
// file and directory comparison runs. The figure of merit for a comparison is
// the number of formatted diff lines, not a semantic difference count.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wholecell/internal/diff"
	"wholecell/internal/snapshot"
)

// DefaultWidth is the wrap width for formatted diff reports.
const DefaultWidth = 160

const indentStep = "  "

// FormatDiffs pretty-prints a diff result. Substructures whose inline
// rendering fits within the width stay on one line; anything wider breaks
// one entry per line with nested indentation. Map keys print in sorted
// order so reports are deterministic.
func FormatDiffs(diffs any, width int) string {
	var sb strings.Builder
	writeNode(&sb, diffs, 0, width)
	return sb.String()
}

func writeNode(sb *strings.Builder, v any, depth int, width int) {
	pad := strings.Repeat(indentStep, depth)
	if line := inline(v); len(pad)+len(line) <= width {
		sb.WriteString(line)
		return
	}

	switch val := v.(type) {
	case map[string]any:
		sb.WriteString("{\n")
		inner := strings.Repeat(indentStep, depth+1)
		for _, k := range diff.SortedKeys(val) {
			sb.WriteString(inner)
			sb.WriteString(fmt.Sprintf("%q: ", k))
			writeNode(sb, val[k], depth+1, width)
			sb.WriteString(",\n")
		}
		sb.WriteString(pad)
		sb.WriteString("}")
	case []any:
		sb.WriteString("[\n")
		inner := strings.Repeat(indentStep, depth+1)
		for _, item := range val {
			sb.WriteString(inner)
			writeNode(sb, item, depth+1, width)
			sb.WriteString(",\n")
		}
		sb.WriteString(pad)
		sb.WriteString("]")
	default:
		sb.WriteString(inline(v))
	}
}

func inline(v any) string {
	switch val := v.(type) {
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, k := range diff.SortedKeys(val) {
			parts = append(parts, fmt.Sprintf("%q: %s", k, inline(val[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = inline(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return diff.Repr(v)
	}
}

// PrintDiffs writes the formatted diff lines (when printLines) and the line
// count summary (when printCount), then returns the line count. An empty
// diff counts zero lines and prints nothing but the optional summary.
func PrintDiffs(w io.Writer, diffs any, printLines, printCount bool) int {
	lineCount := 0
	if !diff.Empty(diffs) {
		text := FormatDiffs(diffs, DefaultWidth)
		if printLines {
			fmt.Fprintln(w, text)
		}
		lineCount = len(strings.Split(strings.TrimSpace(text), "\n"))
	}
	if printCount {
		fmt.Fprintf(w, "==> lines of differences: %d\n", lineCount)
	}
	return lineCount
}

// CompareFiles diffs two snapshot files and returns the diff line count.
func CompareFiles(w io.Writer, path1, path2 string, printLines bool) (int, error) {
	tree1, err := snapshot.Load(path1)
	if err != nil {
		return 0, err
	}
	tree2, err := snapshot.Load(path2)
	if err != nil {
		return 0, err
	}
	diffs := diff.Trees(tree1, tree2)
	return PrintDiffs(w, diffs, printLines, true), nil
}

// Entry names one snapshot file in a directory listing.
type Entry struct {
	Name string
	Path string
}

// ListSnapshots returns the snapshot files in a directory ordered by
// modification time then by name, so the listing follows the order the
// files were produced in.
func ListSnapshots(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type keyed struct {
		mtime int64
		Entry
	}
	var entries []keyed
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), snapshot.FileSuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, keyed{
			mtime: info.ModTime().UnixNano(),
			Entry: Entry{Name: de.Name(), Path: filepath.Join(dir, de.Name())},
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].mtime != entries[j].mtime {
			return entries[i].mtime < entries[j].mtime
		}
		return entries[i].Name < entries[j].Name
	})

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Entry
	}
	return out, nil
}

// CompareDirs diffs the same-named snapshot files in two directories and
// returns the total difference count: diff lines for files present in both,
// plus one per file present in only one directory.
func CompareDirs(w io.Writer, dir1, dir2 string, printLines bool) (int, error) {
	fmt.Fprintf(w, "Comparing snapshot files in %q vs. %q.\n", dir1, dir2)

	entries1, err := ListSnapshots(dir1)
	if err != nil {
		return 0, err
	}
	entries2, err := ListSnapshots(dir2)
	if err != nil {
		return 0, err
	}
	paths2 := make(map[string]string, len(entries2))
	for _, e := range entries2 {
		paths2[e.Name] = e.Path
	}

	count := 0
	for _, e := range entries1 {
		banner := 75 - len(e.Name)
		if banner < 0 {
			banner = 0
		}
		fmt.Fprintf(w, "\n*** %s %s\n", e.Name, strings.Repeat("*", banner))
		if path2, ok := paths2[e.Name]; ok {
			n, err := CompareFiles(w, e.Path, path2, printLines)
			if err != nil {
				return 0, err
			}
			count += n
		} else {
			fmt.Fprintf(w, "%s is in %s but not %s\n", e.Name, dir1, dir2)
			count++
		}
		delete(paths2, e.Name)
	}

	if len(paths2) > 0 {
		onlyInDir2 := make([]string, 0, len(paths2))
		for name := range paths2 {
			onlyInDir2 = append(onlyInDir2, name)
		}
		sort.Strings(onlyInDir2)
		fmt.Fprintf(w, "\n*** Snapshot files in %s but not %s:\n%v\n", dir2, dir1, onlyInDir2)
		count += len(onlyInDir2)
	}

	fmt.Fprintf(w,
		"\n====> Total differences: %d lines for %d snapshot files in %s against %d snapshot files in %s.\n",
		count, len(entries1), dir1, len(entries2), dir2)
	return count, nil
}
