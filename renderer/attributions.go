package renderer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/abe"
)

// AttributionsMarkdown renders the attribution table, largest holders first.
func AttributionsMarkdown(attrs abe.Attributions, places int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Attributions\n\n")
	fmt.Fprintln(&b, "| Holder | Share |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, id := range byShare(attrs) {
		fmt.Fprintf(&b, "| %s | %s |\n", id, abe.FormatPercent(attrs[id], places))
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", abe.FormatPercent(attrs.Sum(), places))
	return b.String()
}

// byShare returns the holders by decreasing share, then by identity.
func byShare(attrs abe.Attributions) []string {
	holders := attrs.Holders()
	// Holders are sorted by identity, a stable sort keeps it for equal shares.
	slices.SortStableFunc(holders, func(a, b string) int { return attrs[b].Cmp(attrs[a]) })
	return holders
}
