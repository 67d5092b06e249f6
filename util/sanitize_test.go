package util

import "testing"

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  French  ", "French"},
		{"Fr\x00en\x07ch", "French"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"../../etc/passwd", "passwd"},
		{`C:\videos\holiday.MOV`, "holiday.MOV"},
		{`we"ird.avi`, "weird.avi"},
		{"", "upload"},
		{"..", "upload"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SanitizeFilename(tc.in); got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"clip.MP4", ".mp4"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
	}
	for _, tc := range tests {
		if got := Ext(tc.in); got != tc.want {
			t.Errorf("Ext(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
