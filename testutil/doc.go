// Package testutil holds test helpers shared across subtitler packages.
//
// Components started through Start are stopped automatically when the test
// ends:
//
//	store := storagetest.NewComponent()
//	testutil.Start(t, store)
//
// FakeBinary and FakeFFmpeg write shell scripts that stand in for external
// tools, so the media tests run without a real ffmpeg on PATH.
package testutil
