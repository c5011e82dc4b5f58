package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"listing-writer/internal/domain"
	"listing-writer/internal/usecase"
)

const (
	descriptionsPath  = "/api/descriptions"
	healthPath        = "/health"
	correlationHeader = "X-Correlation-Id"
)

type DescriptionUseCase interface {
	Create(ctx context.Context, in usecase.CreateInput) (domain.ProductRecord, error)
	List(ctx context.Context) ([]domain.ProductRecord, error)
}

type Handler struct {
	uc DescriptionUseCase
}

type createRequest struct {
	ProductName    string `json:"productName"`
	ProductDetails string `json:"productDetails"`
	Keywords       string `json:"keywords"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

func NewHandler(uc DescriptionUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

// Handle serves one API Gateway proxy request. Failures are always reported
// in the response; the returned error is reserved for the Lambda runtime.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	var resp events.APIGatewayProxyResponse
	switch strings.TrimRight(req.Path, "/") {
	case descriptionsPath:
		switch req.HTTPMethod {
		case http.MethodGet:
			resp = h.list(ctx)
		case http.MethodPost:
			resp = h.create(ctx, req.Body, correlationID)
		default:
			resp = jsonResponse(http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
		}
	case healthPath:
		if req.HTTPMethod != http.MethodGet {
			resp = jsonResponse(http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
			break
		}
		resp = jsonResponse(http.StatusOK, healthResponse{OK: true})
	default:
		resp = jsonResponse(http.StatusNotFound, errorResponse{Message: "Not found"})
	}

	resp.Headers[correlationHeader] = correlationID
	return resp, nil
}

func (h *Handler) list(ctx context.Context) events.APIGatewayProxyResponse {
	recs, err := h.uc.List(ctx)
	if err != nil {
		slog.Error("list descriptions failed", "err", err)
		return errorToResponse(err)
	}
	return jsonResponse(http.StatusOK, recs)
}

func (h *Handler) create(ctx context.Context, body, correlationID string) events.APIGatewayProxyResponse {
	var in createRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	}

	rec, err := h.uc.Create(ctx, usecase.CreateInput{
		ProductName:    in.ProductName,
		ProductDetails: in.ProductDetails,
		Keywords:       in.Keywords,
	})
	if err != nil {
		slog.Error("create description failed", "err", err, "correlation_id", correlationID)
		return errorToResponse(err)
	}
	return jsonResponse(http.StatusOK, rec)
}

func errorToResponse(err error) events.APIGatewayProxyResponse {
	var uErr *usecase.Error
	if !errors.As(err, &uErr) {
		return jsonResponse(http.StatusInternalServerError, errorResponse{Message: "Internal error"})
	}
	status := http.StatusInternalServerError
	if uErr.Code == usecase.ErrorInvalidInput {
		status = http.StatusBadRequest
	}
	return jsonResponse(status, errorResponse{Message: uErr.Message()})
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"message":"Internal error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// headerValue looks a header up case-insensitively; API Gateway does not
// normalize header names.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
