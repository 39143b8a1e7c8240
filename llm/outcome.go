package llm

import "strings"

// NoResponseToken is the marker backends are instructed to emit when the
// persona chooses not to join the conversation.
const NoResponseToken = "[NO_RESPONSE]"

// IsNoResponse reports whether generated text amounts to a refusal to
// reply: empty, blank, the bare token, or the token surrounded only by
// whitespace.
func IsNoResponse(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}
	if t == NoResponseToken {
		return true
	}
	if strings.Contains(t, NoResponseToken) {
		rest := strings.Replace(t, NoResponseToken, "", 1)
		return strings.TrimSpace(rest) == ""
	}
	return false
}
