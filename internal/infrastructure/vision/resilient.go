// Package vision wraps external vision detectors with the service's
// resilience policy. The detectors themselves are collaborators supplied at
// wiring time; this package never implements any model.
package vision

import (
	"context"
	"errors"
	"image"

	"github.com/suniel12/insightpic/internal/core/domain"
	"github.com/suniel12/insightpic/internal/core/ports"
	"github.com/suniel12/insightpic/internal/infrastructure/resilience"
)

// ResilientProvider decorates a VisionProvider with per-operation retry,
// rate limiting and circuit breaking. Failures come back wrapped as
// domain.ErrProviderUnavailable so the orchestrator can degrade them.
type ResilientProvider struct {
	inner    ports.VisionProvider
	executor *resilience.Executor
}

func NewResilientProvider(inner ports.VisionProvider, executor *resilience.Executor) *ResilientProvider {
	return &ResilientProvider{inner: inner, executor: executor}
}

func (p *ResilientProvider) DetectFaces(ctx context.Context, img image.Image) ([]domain.FaceObservation, error) {
	var out []domain.FaceObservation
	err := p.executor.Execute(ctx, "vision.detect_faces", func(ctx context.Context) error {
		var callErr error
		out, callErr = p.inner.DetectFaces(ctx, img)
		return callErr
	}, classifyProviderError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "detect faces", err)
	}
	return out, nil
}

func (p *ResilientProvider) ClassifyObjects(ctx context.Context, img image.Image) ([]domain.ObjectObservation, error) {
	var out []domain.ObjectObservation
	err := p.executor.Execute(ctx, "vision.classify_objects", func(ctx context.Context) error {
		var callErr error
		out, callErr = p.inner.ClassifyObjects(ctx, img)
		return callErr
	}, classifyProviderError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "classify objects", err)
	}
	return out, nil
}

func (p *ResilientProvider) AssessAesthetics(ctx context.Context, img image.Image) (*domain.AestheticObservation, error) {
	var out *domain.AestheticObservation
	err := p.executor.Execute(ctx, "vision.assess_aesthetics", func(ctx context.Context) error {
		var callErr error
		out, callErr = p.inner.AssessAesthetics(ctx, img)
		return callErr
	}, classifyProviderError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "assess aesthetics", err)
	}
	return out, nil
}

func (p *ResilientProvider) ComputeSaliency(ctx context.Context, img image.Image) (*domain.SaliencyObservation, error) {
	var out *domain.SaliencyObservation
	err := p.executor.Execute(ctx, "vision.compute_saliency", func(ctx context.Context) error {
		var callErr error
		out, callErr = p.inner.ComputeSaliency(ctx, img)
		return callErr
	}, classifyProviderError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrProviderUnavailable, "compute saliency", err)
	}
	return out, nil
}

func classifyProviderError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

// Unavailable is the provider used when no detector backend is wired. Every
// call reports domain.ErrProviderUnavailable, which the orchestrator turns
// into empty observations.
type Unavailable struct{}

func (Unavailable) DetectFaces(context.Context, image.Image) ([]domain.FaceObservation, error) {
	return nil, domain.ErrProviderUnavailable
}

func (Unavailable) ClassifyObjects(context.Context, image.Image) ([]domain.ObjectObservation, error) {
	return nil, domain.ErrProviderUnavailable
}

func (Unavailable) AssessAesthetics(context.Context, image.Image) (*domain.AestheticObservation, error) {
	return nil, domain.ErrProviderUnavailable
}

func (Unavailable) ComputeSaliency(context.Context, image.Image) (*domain.SaliencyObservation, error) {
	return nil, domain.ErrProviderUnavailable
}
