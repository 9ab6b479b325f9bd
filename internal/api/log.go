package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"liftlab/pkg/logging"
)

// Matches key=value and key="quoted value" pairs in a slog text line.
var logPairPattern = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the most recent captured log line, condensed
// for the dashboard status bar. GET /api/log/latest
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"log": formatLogLine(logging.GlobalLogCapture.GetLastLine()),
	})
}

// formatLogLine condenses a slog text line to "HH:MM:SS msg (k=v, ...)".
// The level attribute is dropped, values longer than 20 characters are
// skipped, and the remaining pairs are sorted for stable output. Lines
// without a msg attribute pass through untouched.
func formatLogLine(raw string) string {
	matches := logPairPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg, timeStr string
	var attrs []string

	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
		case "level":
		case "msg":
			msg = val
		default:
			if len(val) <= 20 {
				attrs = append(attrs, key+"="+val)
			}
		}
	}

	if msg == "" {
		return raw
	}

	sort.Strings(attrs)

	out := msg
	if timeStr != "" {
		out = timeStr + " " + msg
	}
	if len(attrs) > 0 {
		out = fmt.Sprintf("%s (%s)", out, strings.Join(attrs, ", "))
	}
	return out
}
