package conversation

import (
	"fmt"
	"testing"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
)

func turns(n int) []core.Message {
	msgs := make([]core.Message, n)
	for i := range msgs {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		msgs[i] = core.Message{Role: role, Content: fmt.Sprintf("m%d", i)}
	}
	return msgs
}

func TestHistoryWindow_Bound(t *testing.T) {
	tests := []struct {
		pairs   int
		history int
		want    int
	}{
		{pairs: 10, history: 0, want: 0},
		{pairs: 10, history: 5, want: 5},
		{pairs: 10, history: 20, want: 20},
		{pairs: 10, history: 35, want: 20},
		{pairs: 2, history: 7, want: 4},
		{pairs: 0, history: 3, want: 0},
		{pairs: -1, history: 3, want: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("pairs=%d/history=%d", tt.pairs, tt.history), func(t *testing.T) {
			history := turns(tt.history)
			got := NewHistoryWindow(tt.pairs).Apply(history)
			assert.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, history[len(history)-1].Content, got[len(got)-1].Content,
					"window keeps the most recent messages")
			}
		})
	}
}

func TestHistoryWindow_StripsSourcesFromAssistant(t *testing.T) {
	history := []core.Message{
		{Role: core.RoleUser, Content: "Q ##SOURCE_DOCUMENTS## stays"},
		{Role: core.RoleAssistant, Content: "Answer.##SOURCE_DOCUMENTS##[{\"pageContent\":\"x\"}]"},
	}
	got := NewHistoryWindow(10).Apply(history)

	assert.Equal(t, "Q ##SOURCE_DOCUMENTS## stays", got[0].Content, "user turns are untouched")
	assert.Equal(t, "Answer.", got[1].Content)
	assert.Equal(t, "Answer.##SOURCE_DOCUMENTS##[{\"pageContent\":\"x\"}]", history[1].Content,
		"input must not be modified")
}

func TestStripSources(t *testing.T) {
	assert.Equal(t, "plain", StripSources("plain"))
	assert.Equal(t, "", StripSources("##SOURCE_DOCUMENTS##[]"))
	assert.Equal(t, "a", StripSources("a##SOURCE_DOCUMENTS##b##SOURCE_DOCUMENTS##c"))
}

func TestFormatHistory(t *testing.T) {
	got := FormatHistory([]core.Message{
		{Role: core.RoleUser, Content: "What is Go?"},
		{Role: core.RoleAssistant, Content: "A language."},
	})
	assert.Equal(t, "Human: What is Go?\nAssistant: A language.", got)
	assert.Equal(t, "", FormatHistory(nil))
}
