// Package envelope converts platform-native request events into the canonical
// model and canonical responses back into the native envelopes each platform
// expects.
//
// Function-runtime payloads are classified once by structural probing
// (Classify) and decoded into a tagged Event. Everything downstream switches
// on Event.Kind instead of probing the payload again.
//
// Supported shapes:
//   - API Gateway REST (v1) proxy events
//   - API Gateway HTTP API (v2) events
//   - Application Load Balancer target group events
//   - standard *http.Request / *http.Response pairs for edge runtimes
package envelope
