// Package scraper turns tracking codes into tracking events.
//
// For each code the scraper resolves the carrier, builds the tracking page URL,
// fetches it through the retrying fetcher and runs the structured extractor,
// falling back to the list extractor when the page carries no usable embedded
// object. Events are deduplicated before being returned. Batches are processed
// sequentially with at least 1.2 seconds between requests to the tracking site,
// and a failure on one code never stops the rest of the batch.
package scraper
