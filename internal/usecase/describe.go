package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"listing-writer/internal/domain"
	"listing-writer/internal/generation"
	"listing-writer/internal/integrations/openrouter"
)

type DescriptionGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (generation.Result, error)
}

type HistoryStore interface {
	SaveProduct(ctx context.Context, rec domain.ProductRecord) error
	ListProducts(ctx context.Context) ([]domain.ProductRecord, error)
}

type DescriptionService struct {
	generator DescriptionGenerator
	store     HistoryStore
	model     string
	timeout   time.Duration
}

type CreateInput struct {
	ProductName    string
	ProductDetails string
	Keywords       string
}

// NewDescriptionService wires the generator to the history. model is recorded
// on every stored description. A positive timeout bounds each generation.
func NewDescriptionService(g DescriptionGenerator, s HistoryStore, model string, timeout time.Duration) (*DescriptionService, error) {
	if g == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	return &DescriptionService{
		generator: g,
		store:     s,
		model:     model,
		timeout:   timeout,
	}, nil
}

// Create validates the input, generates a description and stores it.
func (s *DescriptionService) Create(ctx context.Context, in CreateInput) (domain.ProductRecord, error) {
	req, err := domain.NewGenerationRequest(in.ProductName, in.ProductDetails, in.Keywords)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return domain.ProductRecord{}, &Error{Code: ErrorInvalidInput, Reason: "validation_failed", Detail: vErr.Error(), Err: err}
		}
		return domain.ProductRecord{}, newError(ErrorInvalidInput, "validation_failed", err)
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := s.generator.Generate(genCtx, req)
	if err != nil {
		return domain.ProductRecord{}, generationError(err)
	}
	slog.Info("description generated",
		"product", req.ProductName,
		"continuations", res.Continuations,
		"bytes", len(res.Text),
		"elapsed", time.Since(started),
	)

	rec := domain.ProductRecord{
		ID:             newUUID(),
		ProductName:    req.ProductName,
		ProductDetails: req.ProductDetails,
		Keywords:       req.Keywords,
		Description:    res.Text,
		Model:          s.model,
		CreatedAt:      now().UTC(),
	}
	if err := s.store.SaveProduct(ctx, rec); err != nil {
		return domain.ProductRecord{}, newError(ErrorInternal, "history_write_error", err)
	}
	return rec, nil
}

// List returns the stored descriptions, newest first.
func (s *DescriptionService) List(ctx context.Context) ([]domain.ProductRecord, error) {
	recs, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, &Error{Code: ErrorInternal, Reason: "history_read_error", Detail: "Failed to read stored descriptions", Err: err}
	}
	if recs == nil {
		recs = []domain.ProductRecord{}
	}
	return recs, nil
}

// generationError maps a completion failure onto a service error and logs it.
func generationError(err error) *Error {
	kind, ok := openrouter.KindOf(err)
	if !ok {
		slog.Error("description generation failed", "err", err)
		return newError(ErrorInternal, "generation_error", err)
	}

	switch kind {
	case openrouter.KindConfiguration:
		slog.Error("description generation is not configured", "err", err)
		return newError(ErrorNotConfigured, "openrouter_not_configured", err)
	case openrouter.KindEmptyResponse:
		var eErr *openrouter.EmptyResponseError
		raw := ""
		if errors.As(err, &eErr) {
			raw = string(eErr.Raw)
		}
		slog.Error("openrouter returned an empty description", "err", err, "raw", raw)
		return newError(ErrorEmptyResponse, "openrouter_empty_response", err)
	case openrouter.KindTransport:
		status, _ := upstreamStatusCode(err)
		slog.Error("openrouter request failed", "err", err, "status", status)
		return newError(ErrorUpstream, "openrouter_error", err)
	default:
		return newError(ErrorInternal, "generation_error", err)
	}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}

var now = time.Now
