package llm

import (
	"os"
	"strings"
)

// pickKeyForAgent resolves an API key with per-agent override semantics:
// <PREFIX>_API_KEY_<AGENTID> wins over the shared <PREFIX>_API_KEY. This
// lets each persona talk through its own account.
func pickKeyForAgent(agentID string, prefixes ...string) string {
	upper := strings.ToUpper(agentID)
	for _, prefix := range prefixes {
		if key := os.Getenv(prefix + "_API_KEY_" + upper); key != "" {
			return key
		}
	}
	for _, prefix := range prefixes {
		if key := os.Getenv(prefix + "_API_KEY"); key != "" {
			return key
		}
	}
	return ""
}
