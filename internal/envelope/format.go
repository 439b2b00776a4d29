package envelope

import (
	"encoding/base64"
	"strconv"

	"github.com/runvoy/runadapt/internal/canonical"
	"github.com/runvoy/runadapt/internal/constants"

	"github.com/aws/aws-lambda-go/events"
)

// FormatAPIGatewayV1 renders the REST proxy response envelope. Headers with a
// single value go to headers, the rest to multiValueHeaders.
func FormatAPIGatewayV1(resp canonical.Response) events.APIGatewayProxyResponse {
	single, multi := splitHeaders(resp.Header)

	return events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		Headers:           single,
		MultiValueHeaders: multi,
		Body:              functionBody(resp),
		IsBase64Encoded:   resp.IsBase64Encoded,
	}
}

// FormatAPIGatewayV2 renders the HTTP API response envelope. Set-Cookie
// values move to cookies and other repeated headers are comma-joined.
func FormatAPIGatewayV2(resp canonical.Response) events.APIGatewayV2HTTPResponse {
	header := resp.Header.Clone()
	cookies := header.Values(constants.HeaderSetCookie)
	header.Del(constants.HeaderSetCookie)

	return events.APIGatewayV2HTTPResponse{
		StatusCode:      resp.StatusCode,
		Headers:         header.Map(),
		Body:            functionBody(resp),
		IsBase64Encoded: resp.IsBase64Encoded,
		Cookies:         cookies,
	}
}

// FormatALB renders the load balancer response envelope. When the target
// group has multi-value headers enabled the balancer only reads
// multiValueHeaders, so every header goes there.
func FormatALB(resp canonical.Response, multiValue bool) events.ALBTargetGroupResponse {
	out := events.ALBTargetGroupResponse{
		StatusCode:        resp.StatusCode,
		StatusDescription: strconv.Itoa(resp.StatusCode) + " " + resp.Reason(),
		Body:              functionBody(resp),
		IsBase64Encoded:   resp.IsBase64Encoded,
	}

	if multiValue {
		out.MultiValueHeaders = resp.Header.MultiMap()
	} else {
		out.Headers, out.MultiValueHeaders = splitHeaders(resp.Header)
	}

	return out
}

// functionBody coerces the body to the string the function transport accepts.
func functionBody(resp canonical.Response) string {
	if resp.IsBase64Encoded {
		return base64.StdEncoding.EncodeToString(resp.Body)
	}
	return string(resp.Body)
}

func splitHeaders(h canonical.Header) (map[string]string, map[string][]string) {
	single := make(map[string]string, h.Len())
	var multi map[string][]string

	for _, k := range h.Keys() {
		vs := h.Values(k)
		if len(vs) == 1 {
			single[k] = vs[0]
			continue
		}
		if multi == nil {
			multi = make(map[string][]string)
		}
		multi[k] = vs
	}

	return single, multi
}
