// Package model defines the core data structures used throughout scidigest.
//
// This package contains the following main types:
//   - CrawlTask: A unit of work in the crawl frontier with URL lineage
//   - LinkCandidate: An anchor (text, href) pair extracted from a page
//   - RenderResult: Page content obtained from the dynamic or static path
//   - NavigationDecision: The oracle's decide-or-follow verdict for a page
//   - Item: A classified content item emitted to the result sink
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, render, oracle, report, database)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
