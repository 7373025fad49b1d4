package errxlambda

import (
	"context"
	"errors"
	"net/http"

	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/logx"
	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
)

// HandlerFunc is an API Gateway proxy handler
type HandlerFunc func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// ErrorMiddleware turns errors returned by handler into JSON error responses
func ErrorMiddleware(handler HandlerFunc) HandlerFunc {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		response, err := handler(ctx, event)
		if err == nil {
			return response, nil
		}

		logx.Warn("errxlambda: %s %s: %v", event.HTTPMethod, event.Path, err)
		return ToResponse(err), nil
	}
}

// ToResponse converts err into an API Gateway response. Errors that are not
// *errx.Error become INTERNAL_ERROR with status 500.
func ToResponse(err error) events.APIGatewayProxyResponse {
	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		xerr = &errx.Error{
			Code:       "INTERNAL_ERROR",
			Type:       errx.TypeInternal,
			Message:    err.Error(),
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return ToLambdaResponse(xerr)
}

// ToLambdaResponse renders e as {"error": {...}}
func ToLambdaResponse(e *errx.Error) events.APIGatewayProxyResponse {
	body, err := json.Marshal(map[string]any{"error": e})
	if err != nil {
		logx.Error("errxlambda: failed to marshal error response: %v", err)
		body = []byte(`{"error":{"code":"INTERNAL_ERROR","type":"INTERNAL","message":"An unexpected error occurred"}}`)
	}

	return JSONResponse(e.Status(), body)
}

// JSONResponse wraps an encoded JSON body
func JSONResponse(status int, body []byte) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
