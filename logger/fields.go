package logger

import "time"

// Field keys shared by every package.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	FieldRunID    = "run_id"
	FieldFilename = "filename"
	FieldLanguage = "language"
	FieldStep     = "step"
)

// Fields builds a field map from alternating keys and values. A trailing
// key without a value and non-string keys are dropped.
//
//	log.Info("done", logger.Fields("step", "transcribe", "blocks", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// RunFields identifies one pipeline run.
func RunFields(id, filename, language string) map[string]interface{} {
	return Fields(FieldRunID, id, FieldFilename, filename, FieldLanguage, language)
}

func ErrorFields(op string, err error) map[string]interface{} {
	return MergeWithError(Fields(FieldOperation, op), err)
}

func DurationFields(op string, d time.Duration) map[string]interface{} {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}

// MergeWithError sets the error field on fields, allocating when nil. A
// nil err leaves fields unchanged.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	return fields
}
