// Package casedoc discovers, extracts and indexes text from regulatory case
// documents served through web document viewers, and answers keyword queries
// with ranked, citation-attributed passages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package casedoc
