package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
)

// EventKind identifies the payload of an Event.
type EventKind int

const (
	// EventToken carries a fragment of the answer.
	EventToken EventKind = iota
	// EventSources carries the source documents once the answer is complete.
	EventSources
	// EventError reports that generation stopped early.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventSources:
		return "sources"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one item of an answer stream.
type Event struct {
	Kind    EventKind
	Token   string
	Sources []core.SourceDocument
	Err     error
}

// Streamer generates answers from retrieved context.
type Streamer struct {
	model  ai.ChatModel
	buffer int
	logger *slog.Logger
}

// StreamerOption configures a Streamer.
type StreamerOption func(*Streamer) error

// WithBuffer sets the event channel capacity.
// Default is 0 (unbuffered).
func WithBuffer(n int) StreamerOption {
	return func(s *Streamer) error {
		s.buffer = max(n, 0)
		return nil
	}
}

// WithStreamerLogger sets a custom logger.
// Default is slog.Default().
func WithStreamerLogger(logger *slog.Logger) StreamerOption {
	return func(s *Streamer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStreamer creates a Streamer that calls model.
func NewStreamer(model ai.ChatModel, opts ...StreamerOption) (*Streamer, error) {
	if model == nil {
		return nil, ErrChatModelRequired
	}
	s := &Streamer{
		model:  model,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "streamer")
	return s, nil
}

// Stream answers question from sources. The returned channel yields the
// answer tokens, then exactly one EventSources, then closes.
//
// If the model fails, a single EventError wrapping core.ErrGeneration
// replaces the sources event; tokens already sent stand. If ctx is
// cancelled the channel closes without either.
func (s *Streamer) Stream(ctx context.Context, question string, sources []core.SourceDocument) <-chan Event {
	events := make(chan Event, s.buffer)

	go func() {
		defer close(events)

		send := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		prompt, err := QAPrompt.Format(map[string]any{
			"context":  joinContext(sources),
			"question": question,
		})
		if err != nil {
			send(Event{Kind: EventError, Err: fmt.Errorf("%w: render prompt: %w", core.ErrGeneration, err)})
			return
		}

		tokens := 0
		err = s.model.Stream(ctx, prompt, func(_ context.Context, token string) error {
			if !send(Event{Kind: EventToken, Token: token}) {
				return ctx.Err()
			}
			tokens++
			return nil
		})

		if ctx.Err() != nil {
			s.logger.Debug("answer stream cancelled", "tokens", tokens)
			return
		}
		if err != nil {
			s.logger.Warn("answer stream failed", "tokens", tokens, "error", err)
			send(Event{Kind: EventError, Err: fmt.Errorf("%w: %w", core.ErrGeneration, err)})
			return
		}

		s.logger.Debug("answer stream complete", "tokens", tokens, "sources", len(sources))
		send(Event{Kind: EventSources, Sources: sources})
	}()

	return events
}

// joinContext concatenates the retrieved texts separated by blank lines.
func joinContext(sources []core.SourceDocument) string {
	texts := make([]string, len(sources))
	for i, doc := range sources {
		texts[i] = doc.PageContent
	}
	return strings.Join(texts, "\n\n")
}
