// Package wanderer implements a configurable two-mode web crawler core.
// It orchestrates fetching, link discovery, session and proxy rotation,
// document classification, and batched persistence for either an aggressive
// "wander" mode or a polite "strict" mode.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, crawl/, http/).
package wanderer
