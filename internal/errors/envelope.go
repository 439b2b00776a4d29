package errors

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON body clients receive for every adapter-generated error.
type Envelope struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
}

// NewEnvelope builds the envelope for err. The detail message is only included
// when exposeMessage is set; stack traces are never included.
func NewEnvelope(err error, exposeMessage bool) Envelope {
	status := GetStatusCode(err)
	env := Envelope{
		Error:      http.StatusText(status),
		StatusCode: status,
	}
	if env.Error == "" {
		env.Error = "Error"
	}
	if exposeMessage {
		env.Message = GetErrorDetails(err)
	}
	return env
}

// Render returns the status code and the encoded envelope body for err.
func Render(err error, exposeMessage bool) (int, []byte) {
	env := NewEnvelope(err, exposeMessage)
	body, marshalErr := json.Marshal(env)
	if marshalErr != nil {
		// Envelope only holds strings and an int.
		body = []byte(`{"error":"Internal Server Error","statusCode":500}`)
	}
	return env.StatusCode, body
}
