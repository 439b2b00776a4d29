// Package testutil provides shared testing utilities and helpers.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
)

// SilentLogger returns a logger that discards everything.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// V2EventBuilder provides a fluent interface for building API Gateway HTTP
// API events.
type V2EventBuilder struct {
	ev events.APIGatewayV2HTTPRequest
}

// NewV2EventBuilder creates a builder for a GET / event with sensible defaults.
func NewV2EventBuilder() *V2EventBuilder {
	return &V2EventBuilder{
		ev: events.APIGatewayV2HTTPRequest{
			Version:  "2.0",
			RouteKey: "$default",
			RawPath:  "/",
			Headers:  map[string]string{},
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				RequestID: "v2-request",
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
					Method:   "GET",
					Path:     "/",
					SourceIP: "203.0.113.10",
				},
			},
		},
	}
}

// WithMethod sets the HTTP method.
func (b *V2EventBuilder) WithMethod(method string) *V2EventBuilder {
	b.ev.RequestContext.HTTP.Method = method
	return b
}

// WithPath sets the raw path and the request context path.
func (b *V2EventBuilder) WithPath(path string) *V2EventBuilder {
	b.ev.RawPath = path
	b.ev.RequestContext.HTTP.Path = path
	return b
}

// WithQuery sets the raw query string.
func (b *V2EventBuilder) WithQuery(raw string) *V2EventBuilder {
	b.ev.RawQueryString = raw
	return b
}

// WithHeader adds a header.
func (b *V2EventBuilder) WithHeader(name, value string) *V2EventBuilder {
	b.ev.Headers[name] = value
	return b
}

// WithBody sets a text body.
func (b *V2EventBuilder) WithBody(body string) *V2EventBuilder {
	b.ev.Body = body
	b.ev.IsBase64Encoded = false
	return b
}

// WithSourceIP sets the platform-reported client address.
func (b *V2EventBuilder) WithSourceIP(ip string) *V2EventBuilder {
	b.ev.RequestContext.HTTP.SourceIP = ip
	return b
}

// WithRequestID sets the request context id.
func (b *V2EventBuilder) WithRequestID(id string) *V2EventBuilder {
	b.ev.RequestContext.RequestID = id
	return b
}

// Build returns the event.
func (b *V2EventBuilder) Build() events.APIGatewayV2HTTPRequest {
	return b.ev
}

// JSON returns the event as a Lambda payload.
func (b *V2EventBuilder) JSON() []byte {
	out, err := json.Marshal(b.ev)
	if err != nil {
		panic(err)
	}
	return out
}

// V1Event returns an API Gateway REST proxy event payload.
func V1Event(method, path, body string) []byte {
	out, err := json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "v1-request",
			Identity:  events.APIGatewayRequestIdentity{SourceIP: "198.51.100.7"},
		},
	})
	if err != nil {
		panic(err)
	}
	return out
}

// ALBEvent returns an ALB target group event payload.
func ALBEvent(method, path, body string) []byte {
	out, err := json.Marshal(events.ALBTargetGroupRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"x-forwarded-for": "192.0.2.44", "x-amzn-trace-id": "Root=1-alb"},
		Body:       body,
		RequestContext: events.ALBTargetGroupRequestContext{
			ELB: events.ELBContext{TargetGroupArn: "arn:aws:elasticloadbalancing:eu-west-1:123:targetgroup/tg/abc"},
		},
	})
	if err != nil {
		panic(err)
	}
	return out
}
