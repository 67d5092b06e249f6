package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/media"
	"github.com/kbukum/subtitler/observability"
	"github.com/kbukum/subtitler/provider"
	"github.com/kbukum/subtitler/resilience"
	"github.com/kbukum/subtitler/storage"
	"github.com/kbukum/subtitler/subtitle"
	"github.com/kbukum/subtitler/transcription"
)

// Deps are the collaborators of a Service. History, Metrics and Logger are
// optional.
type Deps struct {
	Extractor   Extractor
	Transcriber Transcriber
	Translator  Translator
	Storage     storage.Storage
	History     Recorder
	Metrics     *observability.Metrics
	Logger      *logger.Logger

	// WorkDir is the parent of the per-run workspaces; os.TempDir() when
	// empty.
	WorkDir string
	// MaxConcurrent bounds simultaneous runs. Zero means unbounded.
	MaxConcurrent int
	// QueueWait is how long a run waits for a free slot.
	QueueWait time.Duration
}

// Service runs translations.
type Service struct {
	deps     Deps
	log      *logger.Logger
	store    provider.RequestResponse[storage.PutRequest, storage.PutResponse]
	bulkhead *resilience.Bulkhead

	mu        sync.RWMutex
	observers []Observer
}

// New checks deps and builds a Service.
func New(deps Deps) (*Service, error) {
	var missing []string
	if deps.Extractor == nil {
		missing = append(missing, "extractor")
	}
	if deps.Transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if deps.Translator == nil {
		missing = append(missing, "translator")
	}
	if deps.Storage == nil {
		missing = append(missing, "storage")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("pipeline: missing dependencies: %s", strings.Join(missing, ", "))
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	log := deps.Logger.WithComponent("pipeline")
	store := provider.Chain(
		provider.WithLogging[storage.PutRequest, storage.PutResponse](log),
		provider.WithTracing[storage.PutRequest, storage.PutResponse]("pipeline"),
		provider.WithMetrics[storage.PutRequest, storage.PutResponse](deps.Metrics),
	)(storage.NewWriter("result-store", deps.Storage))

	s := &Service{deps: deps, log: log, store: store}
	if deps.MaxConcurrent > 0 {
		s.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "pipeline",
			MaxConcurrent: deps.MaxConcurrent,
			MaxWait:       deps.QueueWait,
			OnReject: func(name string, err error) {
				log.Warn("run rejected", map[string]interface{}{"bulkhead": name, "error": err.Error()})
			},
		})
	}
	return s, nil
}

// OnTransition registers fn to observe every state change.
func (s *Service) OnTransition(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Run executes one translation. A missing file or a blank language fails
// before any work is done.
func (s *Service) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Body == nil || strings.TrimSpace(in.Filename) == "" {
		return nil, missingInput("file")
	}
	if strings.TrimSpace(in.Language) == "" {
		return nil, missingInput("language")
	}
	if s.bulkhead == nil {
		return s.run(ctx, in)
	}
	res, err := resilience.ExecuteWithResult(ctx, s.bulkhead, func() (*Result, error) {
		return s.run(ctx, in)
	})
	if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
		return nil, apperrors.ServiceUnavailable("translation pipeline").WithCause(err)
	}
	return res, err
}

// run carries the state of one invocation.
type run struct {
	svc       *Service
	id        string
	in        Input
	state     State
	log       *logger.Logger
	durations map[string]time.Duration
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.log.Debug("state changed", map[string]interface{}{"from": from.String(), "to": to.String()})

	r.svc.mu.RLock()
	observers := r.svc.observers
	r.svc.mu.RUnlock()
	t := Transition{RunID: r.id, Filename: r.in.Filename, Language: r.in.Language, From: from, To: to, At: time.Now()}
	for _, fn := range observers {
		fn(t)
	}
}

func (s *Service) run(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	r := &run{
		svc:       s,
		id:        uuid.NewString(),
		in:        in,
		state:     StateIdle,
		durations: make(map[string]time.Duration),
	}
	r.log = s.log.WithContext(ctx).WithFields(logger.RunFields(r.id, in.Filename, in.Language))

	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrResultID, r.id)
	observability.SetSpanAttribute(ctx, observability.AttrLanguage, in.Language)

	entry := history.Entry{ID: r.id, Filename: in.Filename, Language: in.Language, CreatedAt: start}
	defer func() {
		entry.Duration = time.Since(start)
		if err != nil {
			appErr := apperrors.FromError(err)
			err = appErr
			entry.Status = history.StatusFailed
			entry.ErrorCode = string(appErr.Code)
			entry.ErrorMessage = appErr.Message
			observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(appErr.Code))
			observability.SetSpanError(ctx, appErr)
			r.transition(StateError)
		}
		if m := s.deps.Metrics; m != nil {
			status := observability.StatusOK
			if err != nil {
				status = observability.StatusError
			}
			m.RecordRun(ctx, status, entry.ErrorCode, entry.Duration)
		}
		s.record(ctx, r, entry)
	}()

	ws, err := media.NewWorkspace(s.deps.WorkDir)
	if err != nil {
		return nil, classify(StepSave, err)
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			r.log.Warn("workspace cleanup failed", logger.ErrorFields("cleanup", cerr))
		}
	}()

	var videoPath string
	if err := r.step(ctx, StepSave, func(ctx context.Context) (stepErr error) {
		videoPath, stepErr = ws.SaveUpload(ctx, in.Filename, in.Body)
		return stepErr
	}); err != nil {
		return nil, err
	}
	r.transition(StateFileSaved)

	var extraction *media.Extraction
	if err := r.step(ctx, StepExtract, func(ctx context.Context) (stepErr error) {
		extraction, stepErr = s.deps.Extractor.Extract(ctx, videoPath)
		return stepErr
	}); err != nil {
		return nil, err
	}
	r.transition(StateAudioExtracted)

	var transcript string
	if err := r.step(ctx, StepTranscribe, func(ctx context.Context) error {
		resp, stepErr := s.deps.Transcriber.Transcribe(ctx, transcription.TranscriptionRequest{
			AudioPath: extraction.AudioPath,
			Format:    transcription.FormatSRT,
		})
		if stepErr != nil {
			return stepErr
		}
		if resp == nil {
			return errNoTranscript
		}
		transcript = resp.Text
		return nil
	}); err != nil {
		return nil, err
	}
	r.transition(StateTranscribed)

	var translated string
	if err := r.step(ctx, StepTranslate, func(ctx context.Context) (stepErr error) {
		translated, stepErr = s.deps.Translator.Translate(ctx, transcript, in.Language)
		return stepErr
	}); err != nil {
		return nil, err
	}
	r.transition(StateTranslated)

	cmp := subtitle.Compare(transcript, translated)
	entry.SourceBlocks = cmp.SourceBlocks
	entry.TranslatedBlocks = cmp.TranslatedBlocks
	if !cmp.Matches() {
		r.log.Warn("translation structure differs from transcript", map[string]interface{}{
			"source_blocks":        cmp.SourceBlocks,
			"translated_blocks":    cmp.TranslatedBlocks,
			"timestamp_mismatches": len(cmp.TimestampMismatches),
		})
	}

	path := ResultPath(r.id)
	if err := r.step(ctx, StepStore, func(ctx context.Context) error {
		_, stepErr := s.store.Execute(ctx, storage.PutRequest{Path: path, Data: []byte(translated)})
		return stepErr
	}); err != nil {
		return nil, err
	}
	entry.Status = history.StatusTranslated
	entry.StoragePath = path
	r.transition(StateDisplayed)

	r.log.Info("translation completed", logger.DurationFields("run", time.Since(start)))
	return &Result{
		ID:          r.id,
		Filename:    in.Filename,
		Language:    in.Language,
		Transcript:  transcript,
		Translation: translated,
		Comparison:  cmp,
		StoragePath: path,
		Durations:   r.durations,
	}, nil
}

// step runs fn inside a span named pipeline.<name>, records its duration,
// and converts a failure into an AppError.
func (r *run) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "pipeline."+name)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStep, name)

	r.log.Debug("step started", logger.Fields(logger.FieldStep, name))
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	r.durations[name] = elapsed

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
	}
	if m := r.svc.deps.Metrics; m != nil {
		m.RecordOperation(ctx, "pipeline", name, status, elapsed)
		if err != nil {
			m.RecordError(ctx, "pipeline", name)
		}
	}

	if err != nil {
		appErr := classify(name, err)
		observability.SetSpanError(ctx, appErr)
		fields := logger.MergeWithError(logger.DurationFields(name, elapsed), err)
		fields["code"] = string(appErr.Code)
		if appErr.Diagnostics != "" {
			fields["diagnostics"] = appErr.Diagnostics
		}
		r.log.Error("step failed", fields)
		return appErr
	}
	r.log.Info("step finished", logger.DurationFields(name, elapsed))
	return nil
}

// record writes the history entry. A history failure is logged and never
// changes the outcome of the run.
func (s *Service) record(ctx context.Context, r *run, e history.Entry) {
	if s.deps.History == nil {
		return
	}
	if err := s.deps.History.Record(context.WithoutCancel(ctx), e); err != nil {
		r.log.Warn("history record failed", logger.ErrorFields("record", err))
	}
}
