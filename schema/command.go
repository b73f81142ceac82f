package schema

import "strings"

// AICommand is a canonical background-job command tag.
type AICommand string

const (
	// CommandPublicSummary summarizes recent room conversation.
	CommandPublicSummary AICommand = "PUBLIC_SUMMARY"
	// CommandGroupQuestionGenerator generates discussion questions.
	CommandGroupQuestionGenerator AICommand = "GROUP_QUESTION_GENERATOR"
	// CommandGroupKeypoints extracts key points from the discussion.
	CommandGroupKeypoints AICommand = "GROUP_KEYPOINTS"
	// CommandSessionStart opens a reading session.
	CommandSessionStart AICommand = "SESSION_START"
	// CommandSessionEnd ends a reading session.
	CommandSessionEnd AICommand = "SESSION_END"
	// CommandSessionClosing produces closing remarks for a session.
	CommandSessionClosing AICommand = "SESSION_CLOSING"
)

// commandAliases maps lower-cased chat shortcuts to canonical commands.
// The table is fixed; alias matching is exact-token and case-insensitive.
var commandAliases = map[string]AICommand{
	"summary":   CommandPublicSummary,
	"pubsum":    CommandPublicSummary,
	"question":  CommandGroupQuestionGenerator,
	"questions": CommandGroupQuestionGenerator,
	"q":         CommandGroupQuestionGenerator,
	"keypoint":  CommandGroupKeypoints,
	"keypoints": CommandGroupKeypoints,
	"start":     CommandSessionStart,
	"begin":     CommandSessionStart,
	"end":       CommandSessionEnd,
	"finish":    CommandSessionEnd,
	"closing":   CommandSessionClosing,
}

// ResolvedCommand is the outcome of mapping raw chat text to a job request.
type ResolvedCommand struct {
	Command AICommand
	Note    string
	// Aliased reports whether the first token matched the alias table, as
	// opposed to the whole-text summary fallback.
	Aliased bool
}

// ResolveCommand maps raw message text to a canonical command plus free-text
// note. The first whitespace-separated token is matched case-insensitively
// against the alias table; the remainder becomes the note. Text with no
// recognized alias resolves to PUBLIC_SUMMARY with the entire trimmed text
// as the note. Every input resolves to some command; this never fails.
func ResolveCommand(raw string) ResolvedCommand {
	trimmed := strings.TrimSpace(raw)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ResolvedCommand{Command: CommandPublicSummary}
	}
	if cmd, ok := commandAliases[strings.ToLower(fields[0])]; ok {
		return ResolvedCommand{
			Command: cmd,
			Note:    strings.TrimSpace(strings.Join(fields[1:], " ")),
			Aliased: true,
		}
	}
	return ResolvedCommand{Command: CommandPublicSummary, Note: trimmed}
}

// KnownAlias reports whether the first token of raw matches the alias table.
func KnownAlias(raw string) bool {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return false
	}
	_, ok := commandAliases[strings.ToLower(fields[0])]
	return ok
}
