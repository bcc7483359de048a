// Package sitebot provides the conversational assistant of a small business
// website. It crawls the site's own pages into an index of text chunks at
// build time, and at runtime streams model answers to visitor messages,
// falling back to canned replies and finally to a human handoff.
//
// This package contains domain types, interfaces and pure text functions
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/, echo/,
// gemini/, redis/).
package sitebot
