package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"listing-writer/internal/domain"
	"listing-writer/internal/usecase"
)

type stubUseCase struct {
	rec     domain.ProductRecord
	recs    []domain.ProductRecord
	err     error
	in      usecase.CreateInput
	created bool
	listed  bool
}

func (s *stubUseCase) Create(_ context.Context, in usecase.CreateInput) (domain.ProductRecord, error) {
	s.in = in
	s.created = true
	return s.rec, s.err
}

func (s *stubUseCase) List(_ context.Context) ([]domain.ProductRecord, error) {
	s.listed = true
	return s.recs, s.err
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func sampleRecord() domain.ProductRecord {
	return domain.ProductRecord{
		ID:             "rec-1",
		ProductName:    "Canvas Tote",
		ProductDetails: "Hand-stitched canvas, 14x16in",
		Keywords:       "tote bag, personalized gift",
		Description:    "**Carry it all.**",
		Model:          "model-x",
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func mustNewHandler(t *testing.T, uc DescriptionUseCase) *Handler {
	t.Helper()
	h, err := NewHandler(uc)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_Create_HappyPath(t *testing.T) {
	uc := &stubUseCase{rec: sampleRecord()}
	h := mustNewHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/descriptions",
		`{"productName":"Canvas Tote","productDetails":"Hand-stitched canvas, 14x16in","keywords":"tote bag, personalized gift"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.CreateInput{
		ProductName:    "Canvas Tote",
		ProductDetails: "Hand-stitched canvas, 14x16in",
		Keywords:       "tote bag, personalized gift",
	}, uc.in)

	out := parseBody[domain.ProductRecord](t, resp.Body)
	require.Equal(t, sampleRecord(), out)
	require.Contains(t, resp.Body, `"createdAt":"2026-03-01T12:00:00Z"`)
	require.Contains(t, resp.Body, `"productDetails"`)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_Create_InvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	h := mustNewHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/descriptions", `not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, uc.created)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, "Invalid request body", out.Message)
}

func TestHandle_Create_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Detail: "Name is required, Provide at least one keyword"},
			status:  http.StatusBadRequest,
			message: "Name is required, Provide at least one keyword",
		},
		{
			name:    "not configured",
			err:     &usecase.Error{Code: usecase.ErrorNotConfigured, Reason: "openrouter_not_configured", Err: errors.New("openrouter: OPENROUTER_API_KEY is not configured")},
			status:  http.StatusInternalServerError,
			message: "openrouter: OPENROUTER_API_KEY is not configured",
		},
		{
			name:    "upstream",
			err:     &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openrouter_error", Err: errors.New("openrouter: unexpected status 502")},
			status:  http.StatusInternalServerError,
			message: "openrouter: unexpected status 502",
		},
		{
			name:    "empty response",
			err:     &usecase.Error{Code: usecase.ErrorEmptyResponse, Reason: "openrouter_empty_response", Err: errors.New("openrouter: returned an empty description")},
			status:  http.StatusInternalServerError,
			message: "openrouter: returned an empty description",
		},
		{
			name:    "unexpected",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: "Internal error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := mustNewHandler(t, &stubUseCase{err: tc.err})

			resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/descriptions", `{"productName":"x"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.message, out.Message)
		})
	}
}

func TestHandle_List(t *testing.T) {
	uc := &stubUseCase{recs: []domain.ProductRecord{sampleRecord()}}
	h := mustNewHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/descriptions/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, uc.listed)

	out := parseBody[[]domain.ProductRecord](t, resp.Body)
	require.Equal(t, []domain.ProductRecord{sampleRecord()}, out)
}

func TestHandle_List_Error(t *testing.T) {
	uc := &stubUseCase{err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "history_read_error", Detail: "Failed to read stored descriptions"}}
	h := mustNewHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/descriptions", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Failed to read stored descriptions", parseBody[errorResponse](t, resp.Body).Message)
}

func TestHandle_Health(t *testing.T) {
	h := mustNewHandler(t, &stubUseCase{})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/health", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ok":true}`, resp.Body)
}

func TestHandle_UnknownRouteAndMethod(t *testing.T) {
	h := mustNewHandler(t, &stubUseCase{})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/nope", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodDelete, "/api/descriptions", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodPost, "/health", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := mustNewHandler(t, &stubUseCase{})

	event := makeEvent(http.MethodGet, "/health", "")
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}
