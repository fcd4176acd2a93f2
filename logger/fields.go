package logger

// Common field names kept consistent across log events.
const (
	FieldComponent = "component"
	FieldFlowID    = "flow_id"
	FieldNode      = "node"
	FieldLayer     = "layer"
	FieldCheck     = "check"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldFindings  = "findings"
	FieldOperation = "operation"
)

// Fields builds a field map from alternating key/value pairs.
// Odd trailing keys are dropped.
func Fields(kvs ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		fields[key] = kvs[i+1]
	}
	return fields
}

// ErrorFields builds a field map carrying an error message.
func ErrorFields(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}{FieldError: err.Error()}
}

// DurationFields builds a field map carrying an elapsed duration in milliseconds.
func DurationFields(ms int64) map[string]interface{} {
	return map[string]interface{}{FieldDuration: ms}
}
