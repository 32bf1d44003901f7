package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/rastreio/internal/event"
)

var (
	sectionStart    = regexp.MustCompile(`(?i)rastreamento\s+detalhado`)
	sectionEnd      = regexp.MustCompile(`(?i)rastreamento\s+resumido|publicidade|adsbygoogle|</main>|</article>|</body>`)
	listItemPattern = regexp.MustCompile(`(?is)<li\b[^>]*>.*?</li>`)
	datePattern     = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	timePattern     = regexp.MustCompile(`\b\d{2}:\d{2}(?::\d{2})?\b`)
)

// inlineSelector lists the elements that may carry the date and time tokens
const inlineSelector = "span, strong, b, small, em, time"

// Section returns the HTML between the "Rastreamento detalhado" heading and
// the first end marker after it. It reports false when the heading is absent.
func Section(page string) (string, bool) {
	loc := sectionStart.FindStringIndex(page)
	if loc == nil {
		return "", false
	}

	rest := page[loc[1]:]
	if end := sectionEnd.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rest, true
}

// Fallback extracts events from the list items of the detailed tracking
// section of page. It returns nil when the section is missing.
func Fallback(page string) []event.TrackingEvent {
	section, ok := Section(page)
	if !ok {
		return nil
	}

	var events []event.TrackingEvent
	for _, item := range listItemPattern.FindAllString(section, -1) {
		date, clock := dateTimeTokens(item)

		var dateTime string
		text := StripTags(item)
		if date != "" && clock != "" {
			dateTime = date + " " + clock
			text = strings.ReplaceAll(text, date, "")
			text = strings.ReplaceAll(text, clock, "")
		}

		evt := event.NewTrackingEvent(dateTime, CollapseSpace(text))
		if evt.IsEmpty() {
			continue
		}
		events = append(events, evt)
	}

	return events
}

// dateTimeTokens finds the first date and the first time held by inline
// elements of a list item. Either result is empty when not found.
func dateTimeTokens(item string) (string, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(item))
	if err != nil {
		return "", ""
	}

	var date, clock string
	doc.Find(inlineSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := CollapseSpace(sel.Text())
		if date == "" {
			date = datePattern.FindString(text)
		}
		if clock == "" {
			clock = timePattern.FindString(text)
		}
		return date == "" || clock == ""
	})

	return date, clock
}
