package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/util"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates failures from chained checks that struct tags
// cannot express. The zero value is ready to use.
type Validator struct {
	failed []FieldError
}

func New() *Validator { return &Validator{} }

// Check records message for field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.failed = append(v.failed, FieldError{Field: field, Message: message})
	}
	return v
}

func (v *Validator) Errors() []FieldError { return v.failed }
func (v *Validator) HasErrors() bool      { return len(v.failed) > 0 }

// Required rejects blank strings.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Extension accepts a filename whose extension matches one of allowed,
// ignoring case and a leading dot on either side. An empty filename is
// left to Required.
func (v *Validator) Extension(field, filename string, allowed []string) *Validator {
	if filename == "" {
		return v
	}
	ext := strings.TrimPrefix(util.Ext(filename), ".")
	for _, a := range allowed {
		if ext != "" && strings.EqualFold(ext, strings.TrimPrefix(a, ".")) {
			return v
		}
	}
	return v.Check(false, field, "must have one of the extensions: "+strings.Join(allowed, ", "))
}

// Validate folds the failures into one INVALID_INPUT error, or nil.
func (v *Validator) Validate() *errors.AppError {
	if len(v.failed) == 0 {
		return nil
	}
	parts := make([]string, len(v.failed))
	for i, f := range v.failed {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", v.failed)
}

// Err is Validate as a plain error, nil when clean.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ValidateUUID parses a non-nil UUID path or query value.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.MissingField(field)
	}
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.InvalidFormat(field, "UUID")
	}
	return id, nil
}
