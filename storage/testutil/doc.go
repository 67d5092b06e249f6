// Package testutil provides an in-memory result store for tests.
//
//	store := storagetest.NewComponent()
//	testutil.Start(t, store)
//	store.Upload(ctx, "id/translated_subtitles.srt", strings.NewReader(srt))
package testutil
