// Package index builds the date-grouped, searchable view of the conversation
// list shown in listings. It never mutates the list it is given.
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/dhamidi/askiq/history"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"

	// LongDateLayout is used for days older than yesterday.
	LongDateLayout = "January 2, 2006"
)

// Entry is a conversation together with its position in the canonical list.
type Entry struct {
	Conversation *history.Conversation
	Index        int
}

// Title is the title shown for the entry.
func (e Entry) Title() string {
	return e.Conversation.DisplayTitle(e.Index)
}

// DateGroup holds the entries saved on one calendar day.
type DateGroup struct {
	DateKey string
	Label   string
	Entries []Entry
}

// View filters list by a case-insensitive title search and groups the
// matches by day, most recent day first. Entries keep their index into list
// and, within a day, the order they have in list.
func View(list []*history.Conversation, searchTerm string, now time.Time) []DateGroup {
	term := strings.ToLower(searchTerm)

	groups := []DateGroup{}
	byKey := map[string]int{}
	for i, conv := range list {
		if conv == nil || !strings.Contains(strings.ToLower(conv.Title), term) {
			continue
		}
		pos, ok := byKey[conv.DateKey]
		if !ok {
			pos = len(groups)
			byKey[conv.DateKey] = pos
			groups = append(groups, DateGroup{DateKey: conv.DateKey, Label: Label(conv.DateKey, now)})
		}
		groups[pos].Entries = append(groups[pos].Entries, Entry{Conversation: conv, Index: i})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].DateKey > groups[j].DateKey
	})
	return groups
}

// Label names a day relative to now: "Today", "Yesterday" or the long date.
// Keys that do not parse are returned unchanged.
func Label(dateKey string, now time.Time) string {
	switch dateKey {
	case history.DateKey(now):
		return LabelToday
	case history.DateKey(now.AddDate(0, 0, -1)):
		return LabelYesterday
	}
	day, err := time.ParseInLocation(history.DateKeyLayout, dateKey, now.Location())
	if err != nil {
		return dateKey
	}
	return day.Format(LongDateLayout)
}

// Count returns the number of entries across groups.
func Count(groups []DateGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Entries)
	}
	return n
}
