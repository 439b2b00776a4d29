package envelope

import (
	"encoding/json"

	"github.com/runvoy/runadapt/internal/canonical"
	apperrors "github.com/runvoy/runadapt/internal/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

// Kind identifies the native shape of an inbound event.
type Kind int

// Supported event kinds.
const (
	KindUnknown Kind = iota
	KindAPIGatewayV1
	KindAPIGatewayV2
	KindALB
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindAPIGatewayV1:
		return "apigateway-v1"
	case KindAPIGatewayV2:
		return "apigateway-v2"
	case KindALB:
		return "alb"
	case KindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// Classify determines the event kind of a function-runtime payload from its
// structure: a requestContext.http object means API Gateway v2, a
// requestContext.elb object means ALB, anything else is API Gateway v1.
func Classify(payload []byte) (Kind, error) {
	if !gjson.ValidBytes(payload) {
		return KindUnknown, apperrors.ErrBadEvent("event payload is not valid JSON", nil)
	}

	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return KindUnknown, apperrors.ErrBadEvent("event payload is not a JSON object", nil)
	}

	switch {
	case root.Get("requestContext.http").IsObject():
		return KindAPIGatewayV2, nil
	case root.Get("requestContext.elb").IsObject():
		return KindALB, nil
	default:
		return KindAPIGatewayV1, nil
	}
}

// Event is a decoded function-runtime event. Exactly one of the pointers
// matching Kind is set.
type Event struct {
	Kind Kind
	V1   *events.APIGatewayProxyRequest
	V2   *events.APIGatewayV2HTTPRequest
	ALB  *events.ALBTargetGroupRequest
}

// Decode classifies payload and unmarshals it into the matching event type.
func Decode(payload []byte) (Event, error) {
	kind, err := Classify(payload)
	if err != nil {
		return Event{}, err
	}

	ev := Event{Kind: kind}
	switch kind {
	case KindAPIGatewayV2:
		ev.V2 = &events.APIGatewayV2HTTPRequest{}
		err = json.Unmarshal(payload, ev.V2)
	case KindALB:
		ev.ALB = &events.ALBTargetGroupRequest{}
		err = json.Unmarshal(payload, ev.ALB)
	default:
		ev.V1 = &events.APIGatewayProxyRequest{}
		err = json.Unmarshal(payload, ev.V1)
	}
	if err != nil {
		return Event{}, apperrors.ErrBadEvent("failed to decode "+kind.String()+" event", err)
	}

	return ev, nil
}

// Parse converts the event into a canonical request.
func (e Event) Parse() (canonical.Request, error) {
	switch e.Kind {
	case KindAPIGatewayV1:
		return ParseAPIGatewayV1(*e.V1)
	case KindAPIGatewayV2:
		return ParseAPIGatewayV2(*e.V2)
	case KindALB:
		return ParseALB(*e.ALB)
	default:
		return canonical.Request{}, apperrors.ErrBadEvent("unsupported event kind "+e.Kind.String(), nil)
	}
}

// Format renders resp in the envelope matching the event kind. Events that
// were never decoded fall back to the API Gateway v1 envelope, which is also
// what ALB and Function URL integrations accept.
func (e Event) Format(resp canonical.Response) any {
	switch e.Kind {
	case KindAPIGatewayV2:
		return FormatAPIGatewayV2(resp)
	case KindALB:
		return FormatALB(resp, e.ALB != nil && len(e.ALB.MultiValueHeaders) > 0)
	default:
		return FormatAPIGatewayV1(resp)
	}
}
