package envelope

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"
	apperrors "github.com/runvoy/runadapt/internal/errors"

	"github.com/aws/aws-lambda-go/events"
)

// ParseAPIGatewayV1 converts an API Gateway REST proxy event.
func ParseAPIGatewayV1(ev events.APIGatewayProxyRequest) (canonical.Request, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return canonical.Request{}, err
	}

	header := canonical.NormalizeHeaders(ev.Headers)
	if len(ev.MultiValueHeaders) > 0 {
		header = canonical.NormalizeMultiHeaders(ev.MultiValueHeaders)
	}

	query := singleValues(ev.QueryStringParameters, false)
	if len(ev.MultiValueQueryStringParameters) > 0 {
		query = multiValues(ev.MultiValueQueryStringParameters, false)
	}

	raw := ev.Headers
	if len(raw) == 0 {
		raw = firstValues(ev.MultiValueHeaders)
	}

	return canonical.Request{
		Method:     strings.ToUpper(ev.HTTPMethod),
		Path:       pathOrRoot(ev.Path),
		Header:     header,
		Query:      query,
		Body:       body,
		RemoteAddr: canonical.ExtractClientAddressRaw(raw, ev.RequestContext.Identity.SourceIP),
		RequestID:  ev.RequestContext.RequestID,
		Runtime:    constants.RuntimeFunction,
	}, nil
}

// ParseAPIGatewayV2 converts an API Gateway HTTP API (payload 2.0) event.
func ParseAPIGatewayV2(ev events.APIGatewayV2HTTPRequest) (canonical.Request, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return canonical.Request{}, err
	}

	header := canonical.NormalizeHeaders(ev.Headers)
	// Payload 2.0 moves cookies out of the headers.
	if len(ev.Cookies) > 0 && !header.Has(constants.HeaderCookie) {
		header.Set(constants.HeaderCookie, strings.Join(ev.Cookies, "; "))
	}

	query := singleValues(ev.QueryStringParameters, false)
	if len(query) == 0 && ev.RawQueryString != "" {
		if parsed, parseErr := url.ParseQuery(ev.RawQueryString); parseErr == nil {
			query = canonical.Values(parsed)
		}
	}

	path := ev.RawPath
	if path == "" {
		path = ev.RequestContext.HTTP.Path
	}

	return canonical.Request{
		Method:     strings.ToUpper(ev.RequestContext.HTTP.Method),
		Path:       pathOrRoot(path),
		Header:     header,
		Query:      query,
		Body:       body,
		RemoteAddr: canonical.ExtractClientAddress(header, ev.RequestContext.HTTP.SourceIP),
		RequestID:  ev.RequestContext.RequestID,
		Runtime:    constants.RuntimeFunction,
	}, nil
}

// ParseALB converts an Application Load Balancer target group event.
// ALB forwards query strings still URL-encoded, so values are unescaped here.
func ParseALB(ev events.ALBTargetGroupRequest) (canonical.Request, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return canonical.Request{}, err
	}

	header := canonical.NormalizeHeaders(ev.Headers)
	if len(ev.MultiValueHeaders) > 0 {
		header = canonical.NormalizeMultiHeaders(ev.MultiValueHeaders)
	}

	query := singleValues(ev.QueryStringParameters, true)
	if len(ev.MultiValueQueryStringParameters) > 0 {
		query = multiValues(ev.MultiValueQueryStringParameters, true)
	}

	return canonical.Request{
		Method:     strings.ToUpper(ev.HTTPMethod),
		Path:       pathOrRoot(ev.Path),
		Header:     header,
		Query:      query,
		Body:       body,
		RemoteAddr: canonical.ExtractClientAddress(header, ""),
		RequestID:  header.Get("x-amzn-trace-id"),
		Runtime:    constants.RuntimeFunction,
	}, nil
}

// decodeBody turns an event body into bytes. Empty bodies are reported as
// nil whether or not they were declared base64.
func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if body == "" {
		return nil, nil
	}
	if !isBase64 {
		return []byte(body), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, apperrors.ErrBadEvent("event body is not valid base64", err)
	}
	if len(decoded) == 0 {
		return nil, nil
	}
	return decoded, nil
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func singleValues(m map[string]string, unescape bool) canonical.Values {
	if len(m) == 0 {
		return canonical.Values{}
	}
	out := make(canonical.Values, len(m))
	for k, v := range m {
		out[maybeUnescape(k, unescape)] = []string{maybeUnescape(v, unescape)}
	}
	return out
}

func multiValues(m map[string][]string, unescape bool) canonical.Values {
	out := make(canonical.Values, len(m))
	for k, vs := range m {
		key := maybeUnescape(k, unescape)
		for _, v := range vs {
			out[key] = append(out[key], maybeUnescape(v, unescape))
		}
	}
	return out
}

func maybeUnescape(s string, unescape bool) string {
	if !unescape {
		return s
	}
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

func firstValues(m map[string][]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, vs := range m {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
