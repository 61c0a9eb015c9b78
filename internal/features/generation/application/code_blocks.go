package application

import (
	"regexp"
	"strings"
)

const fence = "```"

var infoString = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+#._-]*$`)

// ExtractCodeBlocks returns the contents of all triple-backtick fenced blocks
// in text, trimmed and without their info string. Text with no fence is
// returned whole, trimmed, as the only block.
func ExtractCodeBlocks(text string) []string {
	if !strings.Contains(text, fence) {
		return []string{strings.TrimSpace(text)}
	}

	parts := strings.Split(text, fence)
	blocks := make([]string, 0, len(parts)/2)
	for i := 1; i < len(parts); i += 2 {
		blocks = append(blocks, stripInfoString(parts[i]))
	}
	return blocks
}

// stripInfoString drops the language tag written on the opening fence line,
// such as "python", and trims what remains. A bare opening fence has no tag.
func stripInfoString(block string) string {
	first, rest, found := strings.Cut(block, "\n")
	if !found {
		return strings.TrimSpace(block)
	}
	if tag := strings.TrimSpace(first); tag != "" && infoString.MatchString(tag) {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(block)
}
