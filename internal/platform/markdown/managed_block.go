package markdown

import "strings"

// ReplaceManagedBlock swaps the text between the markers for generated,
// appending a new block when the body has none. Text outside the markers is
// left alone.
func ReplaceManagedBlock(body, begin, end, generated string) string {
	block := begin + "\n" + generated + "\n" + end
	if i := strings.Index(body, begin); i >= 0 {
		if j := strings.Index(body[i:], end); j >= 0 {
			return body[:i] + block + body[i+j+len(end):]
		}
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}
