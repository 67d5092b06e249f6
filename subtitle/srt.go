// Package subtitle parses, renders and compares SRT documents.
package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Block is one SRT cue.
type Block struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Parse reads SRT text. Blocks without a numeric index or a valid timing
// line are skipped. A "." millisecond separator is accepted.
func Parse(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var blocks []Block
	for _, chunk := range blankLine.Split(text, -1) {
		if b, ok := parseBlock(chunk); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func parseBlock(chunk string) (Block, bool) {
	lines := strings.Split(strings.TrimSpace(chunk), "\n")
	if len(lines) < 2 {
		return Block{}, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Block{}, false
	}
	start, end, err := parseTiming(lines[1])
	if err != nil {
		return Block{}, false
	}

	text := make([]string, 0, len(lines)-2)
	for _, l := range lines[2:] {
		text = append(text, strings.TrimRight(l, " \t"))
	}
	return Block{Index: index, Start: start, End: end, Lines: text}, true
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	startText, endText, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, fmt.Errorf("missing --> in %q", line)
	}
	// Anything after the end time (position hints) is ignored.
	fields := strings.Fields(endText)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("missing end time in %q", line)
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp parses HH:MM:SS,mmm or HH:MM:SS.mmm.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	clock, millisText, ok := strings.Cut(strings.ReplaceAll(value, ".", ","), ",")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(millisText)
	if errH != nil || errM != nil || errS != nil || errMS != nil ||
		hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// FormatTimestamp renders d as HH:MM:SS,mmm. Negative values render as zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

// Format renders blocks as SRT with LF line endings and a blank line after
// every block.
func Format(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n", b.Index, FormatTimestamp(b.Start), FormatTimestamp(b.End))
		for _, l := range b.Lines {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Count returns the number of well-formed blocks in text.
func Count(text string) int {
	return len(Parse(text))
}
