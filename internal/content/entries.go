package content

import (
	"errors"
	"strings"
)

// ErrLastEntry is returned when removing an entry would leave a feature or
// benefit list empty.
var ErrLastEntry = errors.New("content: at least one entry is required")

// ErrEntryIndex is returned for a removal outside the list bounds.
var ErrEntryIndex = errors.New("content: entry index out of range")

// AppendEntry returns a copy of list with value added at the end.
func AppendEntry(list []string, value string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, value)
}

// RemoveEntry returns a copy of list without the entry at index. Lists are
// never reduced below one entry; in that case the original list is returned
// together with ErrLastEntry.
func RemoveEntry(list []string, index int) ([]string, error) {
	if len(list) <= 1 {
		return list, ErrLastEntry
	}
	if index < 0 || index >= len(list) {
		return list, ErrEntryIndex
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// CleanEntries trims each value and drops the blank ones.
func CleanEntries(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
