package handler

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
)

const maxRequestBody = 1 << 20

// NewRouter exposes the handler over plain HTTP for local development. Every
// request is translated into the API Gateway shape and served by Handle, so
// both entry points share one code path.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	serve := func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k := range c.Request.Header {
			headers[k] = c.Request.Header.Get(k)
		}

		resp, err := h.Handle(c.Request.Context(), events.APIGatewayProxyRequest{
			HTTPMethod: c.Request.Method,
			Path:       c.Request.URL.Path,
			Headers:    headers,
			Body:       string(body),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal error"})
			return
		}
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
	}

	r.GET(descriptionsPath, serve)
	r.POST(descriptionsPath, serve)
	r.GET(healthPath, serve)
	r.NoRoute(serve)
	return r
}
