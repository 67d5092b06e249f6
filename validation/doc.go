// Package validation checks request and configuration input and reports
// failures as an INVALID_INPUT AppError with per-field details.
//
// Struct tags go through go-playground/validator:
//
//	type translateForm struct {
//	    Language string `form:"language" validate:"required,max=64"`
//	}
//	err := validation.Validate(form)
//
// Validator chains checks that tags cannot express:
//
//	err := validation.New().
//	    Required("language", lang).
//	    Extension("file", name, []string{"mp4", "mov"}).
//	    Validate()
package validation
