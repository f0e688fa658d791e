package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
)

// Condenser turns a follow-up question into a standalone question.
type Condenser struct {
	model  ai.ChatModel
	window HistoryWindow
	logger *slog.Logger
}

// CondenserOption configures a Condenser.
type CondenserOption func(*Condenser) error

// WithHistoryWindow sets how many exchanges are kept.
// Default is DefaultHistoryWindow.
func WithHistoryWindow(pairs int) CondenserOption {
	return func(c *Condenser) error {
		c.window = NewHistoryWindow(pairs)
		return nil
	}
}

// WithCondenserLogger sets a custom logger.
// Default is slog.Default().
func WithCondenserLogger(logger *slog.Logger) CondenserOption {
	return func(c *Condenser) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCondenser creates a Condenser that calls model.
func NewCondenser(model ai.ChatModel, opts ...CondenserOption) (*Condenser, error) {
	if model == nil {
		return nil, ErrChatModelRequired
	}
	c := &Condenser{
		model:  model,
		window: NewHistoryWindow(DefaultHistoryWindow),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "condenser")
	return c, nil
}

// Condense returns the standalone form of the last turn.
//
// With a single turn the question is returned unchanged and the model is
// not called. Otherwise the model rewrites the question against the
// windowed history; any failure wraps core.ErrCondensation and the raw
// question is never used instead.
func (c *Condenser) Condense(ctx context.Context, turns []core.Message) (string, error) {
	if len(turns) == 0 {
		return "", core.ErrEmptyConversation
	}
	question := turns[len(turns)-1].Content
	history := turns[:len(turns)-1]
	if len(history) == 0 {
		return question, nil
	}

	prompt, err := CondensePrompt.Format(map[string]any{
		"chat_history": FormatHistory(c.window.Apply(history)),
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("%w: render prompt: %w", core.ErrCondensation, err)
	}

	standalone, err := c.model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrCondensation, err)
	}
	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return "", fmt.Errorf("%w: %w", core.ErrCondensation, errors.New("model returned an empty question"))
	}

	c.logger.Debug("condensed question", "question", question, "standalone", standalone)
	return standalone, nil
}
