package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/gwportal/gwportal-cli/internal/forms"
)

// Service wraps Client with the per-operation fallback policy:
//
//	list apis / list history   any failure     -> sample set
//	create / update            transport error -> assume success
//	check context              transport error -> assume available
//	fetch api                  never substituted
//
// With Fallbacks off every failure is returned as is.
type Service struct {
	Client    Client
	Fallbacks bool
	Logger    *zap.Logger
}

func NewService(c Client, fallbacks bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Logger == nil {
		c.Logger = logger
	}
	return &Service{Client: c, Fallbacks: fallbacks, Logger: logger}
}

func policy[T any](enabled bool, p FallbackPolicy[T]) FallbackPolicy[T] {
	if !enabled {
		return nil
	}
	return p
}

func report[T any](log *zap.Logger, op string, r Result[T]) Result[T] {
	switch {
	case r.Substituted:
		log.Warn("backend unavailable, using fallback", zap.String("op", op), zap.Error(r.Cause))
	case r.Err != nil:
		log.Error("request failed", zap.String("op", op), zap.Error(r.Err))
	}
	return r
}

func (s *Service) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) ListAPIs(ctx context.Context) Result[[]APIRecord] {
	v, err := s.Client.ListAPIs(ctx)
	return report(s.log(), "list apis", Resolve(v, err, policy(s.Fallbacks, OnAnyFailure(SampleAPIs))))
}

func (s *Service) ListHistory(ctx context.Context) Result[[]HistoryRecord] {
	v, err := s.Client.ListHistory(ctx)
	return report(s.log(), "list history", Resolve(v, err, policy(s.Fallbacks, OnAnyFailure(SampleHistory))))
}

func (s *Service) FetchAPI(ctx context.Context, id ID) Result[APIDetail] {
	v, err := s.Client.FetchAPI(ctx, id)
	return report(s.log(), "fetch api", Resolve(v, err, NoFallback[APIDetail]()))
}

func (s *Service) CreateAPI(ctx context.Context, p forms.Payload) Result[Confirmation] {
	v, err := s.Client.CreateAPI(ctx, p)
	return report(s.log(), "create api", Resolve(v, err, policy(s.Fallbacks, OnTransportFailure(assumedDeployment))))
}

func (s *Service) UpdateAPI(ctx context.Context, id ID, p forms.Payload) Result[Confirmation] {
	v, err := s.Client.UpdateAPI(ctx, id, p)
	r := Resolve(v, err, policy(s.Fallbacks, OnTransportFailure(assumedDeployment)))
	if r.Substituted {
		r.Value.ID = id
	}
	return report(s.log(), "update api", r)
}

func (s *Service) CheckContext(ctx context.Context, apiContext string) Result[ContextAvailability] {
	v, err := s.Client.CheckContext(ctx, apiContext)
	return report(s.log(), "check context", Resolve(v, err, policy(s.Fallbacks, OnUnreadableReply(assumedAvailable(apiContext)))))
}
