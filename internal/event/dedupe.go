package event

// Dedupe returns events with exact (datetime, description) repeats removed.
// The first occurrence of each pair is kept and order is preserved.
// The input slice is not modified.
func Dedupe(events []TrackingEvent) []TrackingEvent {
	seen := make(map[TrackingEvent]bool, len(events))
	unique := make([]TrackingEvent, 0, len(events))
	for _, evt := range events {
		if seen[evt] {
			continue
		}
		seen[evt] = true
		unique = append(unique, evt)
	}
	return unique
}
