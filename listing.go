package askiq

import (
	"fmt"
	"io"

	"github.com/dhamidi/askiq/index"
)

// WriteIndex prints date groups as a numbered listing. Numbers are list
// positions plus one; the entry at bound, if any, is marked with an asterisk.
func WriteIndex(w io.Writer, groups []index.DateGroup, bound int) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No conversations found.")
		return
	}
	for _, group := range groups {
		fmt.Fprintf(w, "%s\n", group.Label)
		for _, entry := range group.Entries {
			marker := " "
			if entry.Index == bound {
				marker = "*"
			}
			line := fmt.Sprintf(" %s%3d. %s", marker, entry.Index+1, entry.Title())
			if ts := entry.Conversation.Timestamp; ts != "" {
				line += "  (" + ts + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
}
