package bindxlambda

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/Conversia-AI/craftable-dto/bindx"
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx/errxlambda"
	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
)

// Request converts an API Gateway proxy event into a bindx.Request. Base64
// bodies are decoded; multi-value query parameters take precedence over the
// single-value map; path parameters win in AllParameters.
func Request(event events.APIGatewayProxyRequest) (*bindx.HTTPRequest, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, bindx.ErrorRegistry.NewWithCause(bindx.ErrParseError, err).WithDetail("reason", "invalid base64 body")
		}
		body = decoded
	}

	query := url.Values{}
	for k, v := range event.QueryStringParameters {
		query.Set(k, v)
	}
	for k, vs := range event.MultiValueQueryStringParameters {
		query[k] = vs
	}

	req, err := bindx.NewRawRequest(event.HTTPMethod, header(event, "Content-Type"), query, body)
	if err != nil {
		return nil, err
	}
	if len(event.PathParameters) > 0 {
		req = req.WithPathParams(event.PathParameters)
	}
	return req, nil
}

// header looks name up case-insensitively, API Gateway keeps client casing
func header(event events.APIGatewayProxyRequest, name string) string {
	for k, v := range event.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vs := range event.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// HandlerFunc receives the resolved DTO, or nil for a nullable argument without declaration
type HandlerFunc func(ctx context.Context, event events.APIGatewayProxyRequest, dto dtox.DTO) (events.APIGatewayProxyResponse, error)

// Handler resolves arg from every event before calling fn. Errors, from
// resolution or from fn, become errx JSON responses.
//
//	lambda.Start(bindxlambda.Handler(resolver, bindx.Argument{
//		Factory: dtox.FactoryOf[CreateOrderDTO](),
//	}, createOrder))
func Handler(resolver *bindx.Resolver, arg bindx.Argument, fn HandlerFunc) errxlambda.HandlerFunc {
	return errxlambda.ErrorMiddleware(func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req, err := Request(event)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}

		dtos, err := resolver.Resolve(req, arg)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}

		var dto dtox.DTO
		if len(dtos) > 0 {
			dto = dtos[0]
		}
		return fn(ctx, event, dto)
	})
}

// JSON renders dto as a JSON response
func JSON(status int, dto dtox.DTO) (events.APIGatewayProxyResponse, error) {
	return Mapping(status, dto.ToMapping())
}

// Mapping renders any JSON-encodable value, typically a mapping or page mapping
func Mapping(status int, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, bindx.ErrorRegistry.NewWithCause(bindx.ErrEncodeFailed, err)
	}
	return errxlambda.JSONResponse(status, body), nil
}
