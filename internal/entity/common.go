package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// attribution optionally prefixes a restored body with a line naming
// the original author and timestamp. Restored items are authored by
// the token's user; this is the only way to keep provenance visible.
func attribution(enabled bool, author string, createdAt time.Time, body string) string {
	if !enabled || author == "" {
		return body
	}
	line := fmt.Sprintf("> *Originally authored by @%s on %s*",
		author, createdAt.UTC().Format("2006-01-02 15:04 UTC"))
	if body == "" {
		return line
	}
	return line + "\n\n" + body
}

// parentNumberFromURL extracts the trailing issue number from an API
// issue URL such as ".../repos/o/r/issues/42".
func parentNumberFromURL(url string) int {
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return 0
	}
	n, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
