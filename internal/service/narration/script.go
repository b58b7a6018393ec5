package narration

import "strings"

// ClosingSentence must terminate every script handed to the user. The
// prompts mandate it, and sanitized output is checked and repaired here
// rather than trusting the model.
const ClosingSentence = "To hear this again, touch the center of the screen; for a follow-up question, touch the bottom-right button; to return to the start screen, touch the bottom-left button."

// FallbackDisclaimer is required in every script that is not grounded in
// the official registry.
const FallbackDisclaimer = "This information is not from the official drug database, so please be sure to consult a pharmacist or doctor."

// ApologyScript is the degraded response when generation itself fails.
const ApologyScript = "I am sorry, I was not able to prepare the medication information just now. Please try again in a moment. " + ClosingSentence

// sanitizeScript strips markup characters that read poorly when spoken.
func sanitizeScript(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "#", "")
	return strings.TrimSpace(s)
}

// ensureClosing appends the mandated closing sentence when the model
// omitted it. Returns the script and whether a repair was needed.
func ensureClosing(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if strings.HasSuffix(trimmed, ClosingSentence) {
		return trimmed, false
	}
	if trimmed == "" {
		return ClosingSentence, true
	}
	return trimmed + " " + ClosingSentence, true
}
