package webhook

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts the endpoint to API Gateway proxy events:
//
//	lambda.Start(endpoint.LambdaHandler())
func (e *Endpoint) LambdaHandler() func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		switch req.HTTPMethod {
		case http.MethodGet:
			q := req.QueryStringParameters
			challenge, err := e.Challenge(q["hub.mode"], q["hub.verify_token"], q["hub.challenge"])
			if err != nil {
				return lambdaResponse(http.StatusForbidden, err.Error()), nil
			}
			return lambdaResponse(http.StatusOK, challenge), nil

		case http.MethodPost:
			body := []byte(req.Body)
			if req.IsBase64Encoded {
				decoded, err := base64.StdEncoding.DecodeString(req.Body)
				if err != nil {
					return lambdaResponse(http.StatusBadRequest, errx.Validation("body", "invalid base64 body").Error()), nil
				}
				body = decoded
			}
			if int64(len(body)) > e.cfg.MaxBodyBytes {
				return lambdaResponse(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge)), nil
			}
			status := e.Receive(ctx, body, lambdaHeader(req, SignatureHeader))
			return lambdaResponse(status, http.StatusText(status)), nil

		default:
			return lambdaResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)), nil
		}
	}
}

// lambdaHeader looks a header up case-insensitively; API Gateway keeps the client's casing
func lambdaHeader(req events.APIGatewayProxyRequest, name string) string {
	if v, ok := req.Headers[name]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(name)
	for k, v := range req.Headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return v
		}
	}
	return ""
}

func lambdaResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       body,
	}
}
