package agent

import (
	"regexp"
)

// ObservationPrefix marks tool results sent back to the model.
const ObservationPrefix = "Observation: "

// nameClass is the character class of an action name: Unicode letters,
// digits and underscore. Go's \w is ASCII only and would let a directive such
// as "Action: 天気: Tokyo" slip through as a final answer.
const nameClass = `[\p{L}\p{N}_]`

// actionRe matches one directive line. The argument runs to end of line
// verbatim.
var actionRe = regexp.MustCompile(`(?m)^Action: (` + nameClass + `+): (.*)$`)

// ActionDirective is a tool request parsed from model output.
type ActionDirective struct {
	Name     string `json:"name"`
	Argument string `json:"argument"`
}

// ParseAction returns the first directive in text. ok is false when text
// contains none, which the loop treats as a final answer.
//
// Any line that happens to match is an action, even inside prose. The match
// is a strict contract; malformed lines are never repaired.
func ParseAction(text string) (ActionDirective, bool) {
	m := actionRe.FindStringSubmatch(text)
	if m == nil {
		return ActionDirective{}, false
	}
	return ActionDirective{Name: m[1], Argument: m[2]}, true
}

// ParseActions returns every directive in text in order. The loop only
// honours the first one.
func ParseActions(text string) []ActionDirective {
	matches := actionRe.FindAllStringSubmatch(text, -1)
	out := make([]ActionDirective, 0, len(matches))
	for _, m := range matches {
		out = append(out, ActionDirective{Name: m[1], Argument: m[2]})
	}
	return out
}

// FormatObservation renders tool output as the next user message.
func FormatObservation(text string) string {
	return ObservationPrefix + text
}
