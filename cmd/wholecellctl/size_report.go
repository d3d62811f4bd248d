package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"wholecell/internal/sizeprof"
)

// printSizeReport renders a size profile, largest entries first.
func printSizeReport(w io.Writer, path string, r sizeprof.Report) {
	fmt.Fprintf(w, "%s: %.2f MB (%s)\n", path, r.MB, approxBytes(r.MB))
	printBreakdown(w, r.Breakdown, 1)
}

func printBreakdown(w io.Writer, breakdown any, depth int) {
	pad := strings.Repeat("  ", depth)
	switch b := breakdown.(type) {
	case map[string]sizeprof.Report:
		type entry struct {
			name string
			rep  sizeprof.Report
		}
		entries := make([]entry, 0, len(b))
		for name, rep := range b {
			entries = append(entries, entry{name, rep})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].rep.MB != entries[j].rep.MB {
				return entries[i].rep.MB > entries[j].rep.MB
			}
			return entries[i].name < entries[j].name
		})
		for _, e := range entries {
			fmt.Fprintf(w, "%s%s: %.2f MB\n", pad, e.name, e.rep.MB)
			printBreakdown(w, e.rep.Breakdown, depth+1)
		}
	case []sizeprof.Report:
		for _, rep := range b {
			fmt.Fprintf(w, "%s- %.2f MB\n", pad, rep.MB)
			printBreakdown(w, rep.Breakdown, depth+1)
		}
	}
}

func approxBytes(mb float64) string {
	if mb < 0 {
		mb = 0
	}
	return humanize.IBytes(uint64(mb * (1 << 20)))
}
