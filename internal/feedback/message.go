package feedback

import (
	"regexp"
	"strings"
)

// Some feedback models leak their chain-of-thought wrapped in
// <think>...</think> delimiters. Strip it before storage or display.
var thinkRe = regexp.MustCompile(`(?is)<think>.*?</think>`)

// CleanMessage removes any <think>...</think> segments from the feedback
// message and trims surrounding whitespace.
func CleanMessage(message string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(message, ""))
}
