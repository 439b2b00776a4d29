package constants

// RequestIDLogField is the field name used for request ID in log entries
const RequestIDLogField = "requestID"

// RuntimeLogField is the field name used for the adapter runtime in log entries
const RuntimeLogField = "runtime"
