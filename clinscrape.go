// Package clinscrape scrapes medical-clinic websites and extracts structured
// product and treatment pricing records. It drives a headless browser through
// static pages and unknown SPA interfaces (tabs, category menus, "load more"
// buttons), deduplicates rendered content states, and feeds each distinct
// state through an LLM extraction call that parses free-form clinic pages
// into typed records.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, gemini/) or their
// concern (crawl/, extract/).
package clinscrape
