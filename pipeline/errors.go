package pipeline

import (
	"errors"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/media"
)

// ErrMissingInput is wrapped by the AppError returned when the file or the
// language is absent.
var ErrMissingInput = errors.New("pipeline: file and language are required")

var errNoTranscript = errors.New("pipeline: transcriber returned no response")

// Step names, used for spans, metrics, logs and Result.Durations.
const (
	StepSave       = "save"
	StepExtract    = "extract"
	StepTranscribe = "transcribe"
	StepTranslate  = "translate"
	StepStore      = "store"
)

func missingInput(field string) *apperrors.AppError {
	return apperrors.MissingField(field).WithCause(ErrMissingInput)
}

// classify maps a step failure onto the application error taxonomy.
func classify(step string, err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch step {
	case StepSave:
		return apperrors.UploadFailed(err)
	case StepExtract:
		var xe *media.ExtractError
		if errors.As(err, &xe) {
			return apperrors.ExtractionFailed(xe.Kind.String(), xe.ExitCode, xe).WithDiagnostics(xe.Diagnostics)
		}
		return apperrors.ExtractionFailed(media.KindLocalFailure.String(), -1, err).WithDiagnostics(err.Error())
	case StepTranscribe:
		return remote(apperrors.TranscriptionFailed(err), err)
	case StepTranslate:
		return remote(apperrors.TranslationFailed(err), err)
	case StepStore:
		return apperrors.StorageError("upload", err)
	default:
		return apperrors.Internal(err)
	}
}

// remote takes the retryable flag from the HTTP classification when there
// is one. Errors that never reached the transport, such as a cancelled
// context, are not retryable.
func remote(appErr *apperrors.AppError, err error) *apperrors.AppError {
	var httpErr *httpclient.Error
	if errors.As(err, &httpErr) {
		appErr.WithRetryable(httpErr.Retryable)
		if httpErr.StatusCode != 0 {
			appErr.WithDetail("upstream_status", httpErr.StatusCode)
		}
		return appErr.WithDiagnostics(httpErr.Message)
	}
	return appErr.WithRetryable(false).WithDiagnostics(err.Error())
}
