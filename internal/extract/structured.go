package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/rastreio/internal/event"
)

// assignmentPattern matches the script assignment that introduces the
// embedded tracking object, up to and including its opening brace.
var assignmentPattern = regexp.MustCompile(
	`(?i)(?:\b(?:var|let|const)\s+(?:rastreio|tracking|trackingData)|window\.__TRACKING__)\s*=\s*\{`,
)

// listFields are the keys that may hold the event list, in priority order
var listFields = []string{"posicoes", "eventos", "events"}

// FindObject locates the first embedded tracking object in page and decodes
// it. It reports false when no assignment is present, the braces never
// balance, or the candidate text is not valid JSON.
func FindObject(page string) (map[string]any, bool) {
	loc := assignmentPattern.FindStringIndex(page)
	if loc == nil {
		return nil, false
	}

	start := loc[1] - 1
	end, ok := matchBrace(page, start)
	if !ok {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(page[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// matchBrace returns the index of the brace closing the one at start.
// Braces inside single or double quoted strings are ignored, and a
// backslash escapes the character after it inside a string.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return -1, false
}

// Structured extracts events from the embedded tracking object of page.
// It returns nil when there is no usable object.
func Structured(page string) []event.TrackingEvent {
	obj, ok := FindObject(page)
	if !ok {
		return nil
	}
	return EventsFromObject(obj)
}

// EventsFromObject converts a decoded tracking object into events. The object
// must carry a truthy "success" flag and a list of entry objects; each entry
// supplies "data" (optionally with "hora") and "descricao", falling back to
// "status" when there is no description.
func EventsFromObject(obj map[string]any) []event.TrackingEvent {
	if !truthy(obj["success"]) {
		return nil
	}

	var entries []any
	for _, field := range listFields {
		if list, ok := obj[field].([]any); ok {
			entries = list
			break
		}
	}

	var events []event.TrackingEvent
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		dateTime := CollapseSpace(stringField(entry, "data", "datetime", "dataHora"))
		if hour := CollapseSpace(stringField(entry, "hora", "time")); hour != "" && !strings.Contains(dateTime, hour) {
			dateTime = strings.TrimSpace(dateTime + " " + hour)
		}

		description := stringField(entry, "descricao", "description")
		if strings.TrimSpace(description) == "" {
			description = stringField(entry, "status")
		}
		description = CollapseSpace(StripTags(description))

		evt := event.NewTrackingEvent(dateTime, description)
		if evt.IsEmpty() {
			continue
		}
		events = append(events, evt)
	}

	return events
}

// stringField returns the first of keys present in entry as a string
func stringField(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := entry[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "ok", "sim":
			return true
		}
	}
	return false
}
