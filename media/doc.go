// Package media stages uploads on disk and extracts their audio with ffmpeg.
//
// Each pipeline run owns one Workspace; Cleanup removes every file the run
// created, whatever the outcome.
//
//	ws, err := media.NewWorkspace(cfg.TempDir)
//	if err != nil { ... }
//	defer ws.Cleanup()
//
//	video, err := ws.SaveUpload(ctx, "talk.mp4", body)
//	extraction, err := extractor.Extract(ctx, video)
package media
