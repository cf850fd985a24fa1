package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultProjectKey prefixes issue keys when no project is selected
const DefaultProjectKey = "PROJ"

// ParseIssueKey splits "ENG-101" into ("ENG", 101).
// The split happens at the last hyphen so the prefix is compared whole.
func ParseIssueKey(key string) (string, int, bool) {
	idx := strings.LastIndex(key, "-")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:idx], n, true
}

// FormatIssueKey builds a key from a project prefix and number
func FormatIssueKey(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}
