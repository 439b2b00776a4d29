package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
	"github.com/runvoy/runadapt/internal/envelope"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Function hosts the handler on AWS Lambda behind API Gateway (REST or HTTP
// API) or an Application Load Balancer. The event kind is detected once per
// invocation and the response is shaped for the same integration.
type Function struct {
	core
}

var _ lambda.Handler = (*Function)(nil)

// NewFunction creates the function-runtime adapter.
func NewFunction(cfg Config) (*Function, error) {
	c, err := newCore(cfg, constants.RuntimeFunction)
	if err != nil {
		return nil, err
	}
	return &Function{core: c}, nil
}

// Invoke implements lambda.Handler. Malformed events are answered with a 400
// envelope in the API Gateway v1 shape instead of an invocation error.
func (f *Function) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	ev, err := envelope.Decode(payload)
	if err != nil {
		return json.Marshal(envelope.FormatAPIGatewayV1(f.reject(err)))
	}

	resp := f.handle(ctx, ev.Parse)

	out, err := json.Marshal(ev.Format(resp))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", ev.Kind, err)
	}
	return out, nil
}

// HandleAPIGatewayV1 serves a decoded API Gateway REST proxy event.
func (f *Function) HandleAPIGatewayV1(
	ctx context.Context, ev events.APIGatewayProxyRequest,
) (events.APIGatewayProxyResponse, error) {
	resp := f.handle(ctx, func() (canonical.Request, error) { return envelope.ParseAPIGatewayV1(ev) })
	return envelope.FormatAPIGatewayV1(resp), nil
}

// HandleAPIGatewayV2 serves a decoded API Gateway HTTP API event.
func (f *Function) HandleAPIGatewayV2(
	ctx context.Context, ev events.APIGatewayV2HTTPRequest,
) (events.APIGatewayV2HTTPResponse, error) {
	resp := f.handle(ctx, func() (canonical.Request, error) { return envelope.ParseAPIGatewayV2(ev) })
	return envelope.FormatAPIGatewayV2(resp), nil
}

// HandleALB serves a decoded ALB target group event. Multi-value headers are
// answered in kind.
func (f *Function) HandleALB(
	ctx context.Context, ev events.ALBTargetGroupRequest,
) (events.ALBTargetGroupResponse, error) {
	resp := f.handle(ctx, func() (canonical.Request, error) { return envelope.ParseALB(ev) })
	return envelope.FormatALB(resp, len(ev.MultiValueHeaders) > 0), nil
}

// SupportsPersistentConnections is true: warm Lambda containers are reused.
func (f *Function) SupportsPersistentConnections() bool {
	return true
}

func (f *Function) handle(ctx context.Context, parse func() (canonical.Request, error)) canonical.Response {
	req, err := parse()
	if err != nil {
		return f.reject(err)
	}

	req.RequestID = functionRequestID(ctx, req)
	return f.invoke(ctx, req)
}

// functionRequestID prefers the Lambda request id, then the id carried by the
// event, then the x-request-id header. invoke generates one when all are empty.
func functionRequestID(ctx context.Context, req canonical.Request) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if req.RequestID != "" {
		return req.RequestID
	}
	return req.Header.Get(constants.HeaderRequestID)
}
