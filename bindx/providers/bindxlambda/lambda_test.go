package bindxlambda_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/Conversia-AI/craftable-dto/bindx"
	"github.com/Conversia-AI/craftable-dto/bindx/providers/bindxlambda"
	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderDTO struct {
	CustomerID string   `dto:"customerId,required"`
	Items      []string `dto:"items"`
	Express    bool     `dto:"express"`
}

func (o *orderDTO) ToMapping() dtox.Mapping { return dtox.Dump(o, dtox.KeyStyleDefault) }

func (o *orderDTO) FromMapping(data dtox.Mapping, ignoreMissing bool, style dtox.KeyStyle) error {
	return dtox.Hydrate(o, data, ignoreMissing, style)
}

func TestRequest(t *testing.T) {
	req, err := bindxlambda.Request(events.APIGatewayProxyRequest{
		HTTPMethod:                      http.MethodPost,
		Headers:                         map[string]string{"content-type": "application/json"},
		Body:                            base64.StdEncoding.EncodeToString([]byte(`{"customerId":"c-1"}`)),
		IsBase64Encoded:                 true,
		QueryStringParameters:           map[string]string{"items": "last", "page": "2"},
		MultiValueQueryStringParameters: map[string][]string{"items": {"a", "b"}},
		PathParameters:                  map[string]string{"page": "route"},
	})
	require.NoError(t, err)

	assert.Equal(t, bindx.FormatJSON, req.ContentFormat())
	assert.Equal(t, []byte(`{"customerId":"c-1"}`), req.RawBody())
	assert.Equal(t, dtox.Mapping{"items": []any{"a", "b"}, "page": "2"}, req.QueryParameters())
	assert.Equal(t, dtox.Mapping{"items": []any{"a", "b"}, "page": "route"}, req.AllParameters())
}

func TestRequest_BadBase64(t *testing.T) {
	_, err := bindxlambda.Request(events.APIGatewayProxyRequest{Body: "***", IsBase64Encoded: true})
	assert.True(t, bindx.IsParseError(err))
}

func handler() func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resolver := bindx.NewResolver(bindx.Options{})
	return bindxlambda.Handler(resolver, bindx.Argument{
		Name:    "order",
		Factory: dtox.FactoryOf[orderDTO](),
	}, func(ctx context.Context, event events.APIGatewayProxyRequest, dto dtox.DTO) (events.APIGatewayProxyResponse, error) {
		return bindxlambda.JSON(http.StatusCreated, dto)
	})
}

func TestHandler(t *testing.T) {
	resp, err := handler()(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"customerId":"c-9","items":["x"],"express":true}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"customerId":"c-9","items":["x"],"express":true}`, resp.Body)
}

func TestHandler_AutoFallsBackToQuery(t *testing.T) {
	resp, err := handler()(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodDelete,
		QueryStringParameters: map[string]string{"customerId": "c-2"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"customerId":"c-2","items":null,"express":false}`, resp.Body)
}

func TestHandler_ErrorsBecomeResponses(t *testing.T) {
	resp, err := handler()(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"customerId":`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, string(bindx.ErrParseError))

	resp, err = handler()(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, string(dtox.ErrMissingField))
}
