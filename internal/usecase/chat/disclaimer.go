package chat

import "strings"

// DisclaimerPolicy guarantees every outgoing answer carries the legal
// disclaimer for its language.
type DisclaimerPolicy struct{}

// Apply prepends the disclaimer unless the answer already contains it.
// Containment is plain substring matching, so a model that produced the
// disclaimer itself is left alone.
func (DisclaimerPolicy) Apply(answer string, pack languagePack) string {
	if strings.Contains(answer, pack.disclaimer) {
		return answer
	}
	if answer == "" {
		return pack.disclaimer
	}
	return pack.disclaimer + "\n\n" + answer
}
