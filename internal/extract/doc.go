// Package extract recovers tracking events from the HTML of a tracking page.
//
// Two independent strategies are provided. Structured looks for a data object
// assigned in an inline script and decodes it as JSON, using a brace-depth
// scan that is aware of quoted strings to find where the object ends.
// Fallback reads the rendered "Rastreamento detalhado" list instead, pulling
// the date and time out of inline elements and using the remaining item text
// as the description. Neither strategy returns an error: anything that cannot
// be recovered simply yields no events.
package extract
