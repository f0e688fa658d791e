package conversation

import (
	"context"
	"log/slog"

	"github.com/poiesic/docchat/core"
)

// Service answers chat requests against the index.
type Service struct {
	condenser *Condenser
	retriever *Retriever
	streamer  *Streamer
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a Service from its three stages.
func NewService(condenser *Condenser, retriever *Retriever, streamer *Streamer, opts ...Option) (*Service, error) {
	if condenser == nil {
		return nil, ErrCondenserRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if streamer == nil {
		return nil, ErrStreamerRequired
	}
	s := &Service{
		condenser: condenser,
		retriever: retriever,
		streamer:  streamer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "conversation")
	return s, nil
}

// Ask validates turns, condenses and retrieves synchronously, then starts
// the answer stream. Validation, condensation and retrieval errors are
// returned directly; generation errors arrive on the channel.
func (s *Service) Ask(ctx context.Context, turns []core.Message) (<-chan Event, error) {
	return s.AskWithMonitor(ctx, turns, nil)
}

// AskWithMonitor is Ask with hooks called after each synchronous step.
func (s *Service) AskWithMonitor(ctx context.Context, turns []core.Message, monitor Monitor) (<-chan Event, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := core.ValidateConversation(turns); err != nil {
		return nil, err
	}
	monitor.Start(turns)

	standalone, err := s.condenser.Condense(ctx, turns)
	if err != nil {
		s.logger.Error("condensation failed", "error", err)
		return nil, err
	}
	monitor.AfterCondense(standalone)

	sources, err := s.retriever.Retrieve(ctx, standalone)
	if err != nil {
		s.logger.Error("retrieval failed", "error", err)
		return nil, err
	}
	monitor.AfterRetrieval(sources)

	s.logger.Debug("answering", "turns", len(turns), "sources", len(sources))
	return s.streamer.Stream(ctx, standalone, sources), nil
}
