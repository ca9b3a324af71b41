// Package laptime converts textual lap/gap time representations to
// seconds and back.
//
// The dataset publishes times as "S", "M:SS.mmm" or "H:MM:SS.mmm",
// optionally prefixed with "+" for gaps, and uses "\N"/"None"/"" as
// null sentinels. Parsing never returns an error: anything malformed
// is a nil result by design of the error taxonomy.
package laptime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Null sentinels used by the dataset.
var nullSentinels = map[string]struct{}{
	`\N`:   {},
	"":     {},
	"None": {},
}

// ParseSeconds converts a textual time to seconds. It returns nil for
// null sentinels and for any malformed input.
func ParseSeconds(text string) *float64 {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSpace(s)

	if _, null := nullSentinels[s]; null {
		return nil
	}

	parts := strings.Split(s, ":")
	var total float64
	switch len(parts) {
	case 1:
		sec, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			metrics.RecordParseFailure()
			return nil
		}
		total = sec
	case 2:
		m, errM := strconv.Atoi(parts[0])
		sec, errS := strconv.ParseFloat(parts[1], 64)
		if errM != nil || errS != nil {
			metrics.RecordParseFailure()
			return nil
		}
		total = float64(m)*60 + sec
	case 3:
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		sec, errS := strconv.ParseFloat(parts[2], 64)
		if errH != nil || errM != nil || errS != nil {
			metrics.RecordParseFailure()
			return nil
		}
		total = float64(h)*3600 + float64(m)*60 + sec
	default:
		metrics.RecordParseFailure()
		return nil
	}

	return &total
}

// FormatSeconds renders seconds as "M:SS.mmm". It is not a strict
// round-trip for hour-scale durations; nil renders as "".
func FormatSeconds(seconds *float64) string {
	if seconds == nil {
		return ""
	}
	minutes := int(math.Floor(*seconds / 60))
	leftover := *seconds - float64(minutes)*60
	return fmt.Sprintf("%d:%06.3f", minutes, leftover)
}
