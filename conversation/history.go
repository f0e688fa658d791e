package conversation

import (
	"strings"

	"github.com/poiesic/docchat/core"
)

// SourceDocumentsMarker separates the answer text from the JSON source list.
const SourceDocumentsMarker = "##SOURCE_DOCUMENTS##"

// DefaultHistoryWindow is the number of exchanges kept for condensation.
const DefaultHistoryWindow = 10

// HistoryWindow bounds the history passed to the condenser.
type HistoryWindow struct {
	pairs int
}

// NewHistoryWindow keeps the last pairs exchanges, i.e. 2*pairs messages.
// A negative value is treated as zero.
func NewHistoryWindow(pairs int) HistoryWindow {
	return HistoryWindow{pairs: max(pairs, 0)}
}

// Pairs returns the number of exchanges kept.
func (h HistoryWindow) Pairs() int {
	return h.pairs
}

// Apply strips source blocks from assistant messages and returns at most
// the last 2*pairs messages of history, in order. history is not modified.
func (h HistoryWindow) Apply(history []core.Message) []core.Message {
	limit := 2 * h.pairs
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]core.Message, len(history))
	for i, msg := range history {
		if msg.Role == core.RoleAssistant {
			msg.Content = StripSources(msg.Content)
		}
		out[i] = msg
	}
	return out
}

// StripSources drops the marker and everything after it.
func StripSources(content string) string {
	answer, _, _ := strings.Cut(content, SourceDocumentsMarker)
	return answer
}

// FormatHistory renders messages as role-tagged lines.
func FormatHistory(history []core.Message) string {
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch msg.Role {
		case core.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("Human: ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
