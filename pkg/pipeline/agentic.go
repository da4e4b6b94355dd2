package pipeline

import "strings"

// agenticClientMarkers identifies coding assistants known to embed an XML
// tool-call protocol in message text that the haiku-tier model tends to
// fail on (spec §4.1 stage 5).
var agenticClientMarkers = []string{"cline", "aider", "continue", "copilot"}

func isAgenticClient(clientID string) bool {
	lower := strings.ToLower(clientID)
	for _, marker := range agenticClientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
