package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeBinary writes an executable /bin/sh script named name into a temp dir
// and returns its path. The script body receives the arguments as "$@".
func FakeBinary(t testing.TB, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	body := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil { //nolint:gosec // test helper must be executable
		t.Fatalf("testutil: write fake binary: %v", err)
	}
	return path
}

// FakeFFmpeg behaves like ffmpeg for the extraction tests. It writes
// "ID3fake" to its last argument, answers -version, and fails with exit 1
// when any argument contains "corrupt".
func FakeFFmpeg(t testing.TB) string {
	t.Helper()
	return FakeBinary(t, "ffmpeg", `
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-fake"
  exit 0
fi
for arg; do
  case "$arg" in
    *corrupt*) echo "$arg: Invalid data found when processing input" >&2; exit 1 ;;
  esac
done
for last; do :; done
printf 'ID3fake' > "$last"
`)
}
