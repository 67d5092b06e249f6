// Package pipeline runs one translation from upload to stored result.
//
// A run moves through fixed states:
//
//	Idle -> FileSaved -> AudioExtracted -> Transcribed -> Translated -> Displayed
//
// Any failing step moves the run to Error and returns that step's
// *errors.AppError. Each run gets its own media.Workspace, removed on every
// exit path. Every collaborator arrives through Deps, so tests substitute
// fakes for ffmpeg and the remote services.
//
//	svc, err := pipeline.New(pipeline.Deps{
//	    Extractor:   media.NewExtractor(cfg.Media, log),
//	    Transcriber: whisperProvider,
//	    Translator:  translator,
//	    Storage:     store,
//	    History:     historyStore,
//	    Logger:      log,
//	})
//	res, err := svc.Run(ctx, pipeline.Input{Filename: "talk.mp4", Body: f, Language: "Spanish"})
package pipeline
