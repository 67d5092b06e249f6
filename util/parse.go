package util

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize turns "10MB", "512 KB" or "1024" into bytes. KB, MB, GB and TB
// are binary units, the same as KiB, MiB, GiB and TiB. Unparseable or
// non-positive input yields defaultBytes.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "-") {
		return defaultBytes
	}
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		if strings.HasSuffix(s, unit) {
			s = strings.TrimSuffix(s, unit) + unit[:1] + "IB"
			break
		}
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n == 0 || n > math.MaxInt64 {
		return defaultBytes
	}
	return int64(n)
}

// FormatSize renders n bytes in binary units, e.g. "512 MiB".
func FormatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// MaskSecret keeps the first visiblePrefix characters of s. Secrets no
// longer than the prefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
