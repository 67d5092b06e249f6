// Package app wires the subtitler components into a bootstrap.App.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/subtitler/bootstrap"
	"github.com/kbukum/subtitler/component"
	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/httpclient"
	"github.com/kbukum/subtitler/llm"
	"github.com/kbukum/subtitler/llm/openai"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/media"
	"github.com/kbukum/subtitler/observability"
	"github.com/kbukum/subtitler/pipeline"
	"github.com/kbukum/subtitler/provider"
	"github.com/kbukum/subtitler/server"
	"github.com/kbukum/subtitler/sse"
	"github.com/kbukum/subtitler/storage"
	"github.com/kbukum/subtitler/transcription/whisper"
	"github.com/kbukum/subtitler/translation"
	"github.com/kbukum/subtitler/web"

	// Result store backends.
	_ "github.com/kbukum/subtitler/storage/local"
	_ "github.com/kbukum/subtitler/storage/minio"
)

const (
	ffmpegProbeTimeout = 5 * time.Second
	eventsPath         = "/api/v1/events"
)

// Stack holds the components and services built by Wire. Pipeline and
// Metrics are set once the configure phase has run.
type Stack struct {
	Extractor *media.Extractor
	Storage   *storage.Component
	History   *history.Component

	mu       sync.RWMutex
	pipeline *pipeline.Service
	metrics  *observability.Metrics
	server   *server.Server
}

// Pipeline returns the translation service, or nil before configure.
func (s *Stack) Pipeline() *pipeline.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline
}

// Metrics returns the instruments, nil when telemetry is disabled.
func (s *Stack) Metrics() *observability.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Server returns the HTTP server registered by Serve.
func (s *Stack) Server() *server.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server
}

// Wire registers the infrastructure components and builds the pipeline
// when they have started.
func Wire(a *bootstrap.App[*Config]) (*Stack, error) {
	cfg := a.Cfg
	log := a.Logger

	stack := &Stack{
		Extractor: media.NewExtractor(cfg.Media, log),
		Storage:   storage.NewComponent(cfg.Storage, log),
		History:   history.NewComponent(cfg.History, log),
	}

	for _, c := range []component.Component{
		telemetryComponent(cfg, stack, log),
		ffmpegComponent(cfg.Media, stack.Extractor, log),
		stack.Storage,
		stack.History,
	} {
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	a.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		svc, err := buildPipeline(a.Cfg, stack, a.Logger)
		if err != nil {
			return err
		}
		stack.mu.Lock()
		stack.pipeline = svc
		stack.mu.Unlock()
		return nil
	})
	return stack, nil
}

// Serve adds the HTTP server and the run event stream on top of a wired
// stack. The stream is registered after the server so it stops first and
// open streams do not hold up the server shutdown.
func Serve(a *bootstrap.App[*Config], stack *Stack) {
	a.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		events := sse.NewComponent(eventsPath, a.Logger)
		stack.Pipeline().OnTransition(publishTransitions(events.Hub(), a.Logger))

		srv, err := buildServer(a.Name, a.Cfg, stack, events.Hub(), a.Components.HealthAll, a.Logger)
		if err != nil {
			return err
		}
		stack.mu.Lock()
		stack.server = srv
		stack.mu.Unlock()
		if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
		return a.RegisterComponent(events)
	})
}

func buildServer(name string, cfg *Config, stack *Stack, events *sse.Hub, checker func(context.Context) []component.Health, log *logger.Logger) (*server.Server, error) {
	srv := server.New(&cfg.Server, log)
	srv.ApplyDefaults(name, checker, stack.Metrics())

	handlers, err := web.NewHandlers(web.Deps{
		Runner:            stack.Pipeline(),
		Results:           stack.Storage.Storage(),
		History:           stack.History.Store(),
		AllowedExtensions: cfg.Media.AllowedExtensions,
		RateLimit:         cfg.Server.RateLimit,
		PresignExpiry:     cfg.Storage.PresignExpiry,
		Events:            events,
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}
	web.Register(srv.GinEngine(), handlers)
	return srv, nil
}

// publishTransitions forwards every pipeline state change to the stream.
func publishTransitions(p sse.Publisher, log *logger.Logger) pipeline.Observer {
	return func(t pipeline.Transition) {
		data, err := json.Marshal(t)
		if err != nil {
			log.Warn("encode transition", logger.ErrorFields("publish_transition", err))
			return
		}
		p.Publish(web.RunTopic(t.RunID), sse.EventTransition, data)
	}
}

func buildPipeline(cfg *Config, stack *Stack, log *logger.Logger) (*pipeline.Service, error) {
	metrics := stack.Metrics()
	retry := cfg.RetryPolicy()

	tcfg := cfg.Transcription
	tcfg.Retry = retry
	transcriber, err := whisper.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}

	completer, err := llm.New(llm.Config{
		Name:        "translation-llm",
		Dialect:     openai.Name,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.Translation.Model,
		Temperature: cfg.Translation.Temperature,
		MaxTokens:   cfg.Translation.MaxTokens,
		Timeout:     cfg.Translation.Timeout,
		Auth:        httpclient.BearerAuth(cfg.OpenAI.APIKey),
		Retry:       retry,
	})
	if err != nil {
		return nil, fmt.Errorf("translation: %w", err)
	}
	translator := translation.NewLLMTranslator(provider.Chain(
		provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](log.WithComponent("llm")),
		provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse]("translation"),
		provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](metrics),
	)(completer))

	deps := pipeline.Deps{
		Extractor:     stack.Extractor,
		Transcriber:   transcriber,
		Translator:    translator,
		Storage:       stack.Storage.Storage(),
		Metrics:       metrics,
		Logger:        log,
		WorkDir:       cfg.Media.TempDir,
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
		QueueWait:     cfg.Pipeline.QueueWait,
	}
	if store := stack.History.Store(); store != nil {
		deps.History = store
	}
	return pipeline.New(deps)
}

// telemetryComponent starts the OTLP exporters. With telemetry disabled it
// only installs no-op providers.
func telemetryComponent(cfg *Config, stack *Stack, log *logger.Logger) component.Component {
	var shutdown observability.ShutdownFunc
	details := "disabled"
	if cfg.Observability.Enabled {
		details = "endpoint=" + cfg.Observability.Endpoint
	}
	return component.NewFunc("telemetry").
		WithDescription("otlp", details).
		WithStart(func(ctx context.Context) error {
			fn, metrics, err := observability.Init(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
			if err != nil {
				return err
			}
			shutdown = fn
			stack.mu.Lock()
			stack.metrics = metrics
			stack.mu.Unlock()
			return nil
		}).
		WithStop(func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			if err := shutdown(ctx); err != nil {
				log.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry_shutdown", err))
				return err
			}
			return nil
		})
}

// ffmpegComponent probes the binary. A missing ffmpeg does not stop the
// process; runs fail at extraction and the health check reports it.
func ffmpegComponent(cfg media.Config, ex *media.Extractor, log *logger.Logger) component.Component {
	log = log.WithComponent("ffmpeg")
	return component.NewFunc("ffmpeg").
		WithDescription("binary", "path="+cfg.FFmpegBinary).
		WithStart(func(ctx context.Context) error {
			probeCtx, cancel := context.WithTimeout(ctx, ffmpegProbeTimeout)
			defer cancel()
			v, err := ex.Version(probeCtx)
			if err != nil {
				log.Warn("ffmpeg not usable", logger.ErrorFields("ffmpeg_probe", err))
				return nil
			}
			log.Info("ffmpeg found", logger.Fields("version", v))
			return nil
		}).
		WithHealthCheck(func(ctx context.Context) error {
			probeCtx, cancel := context.WithTimeout(ctx, ffmpegProbeTimeout)
			defer cancel()
			return ex.Check(probeCtx)
		})
}
