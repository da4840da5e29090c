// Package render obtains page content, preferring a headless renderer and
// falling back to the raw static fetch.
//
// The renderer is an external subprocess (a node script driving a headless
// browser) invoked with a single URL argument. On success it prints one JSON
// object {"body": string, "links": [{"text","href"}, ...]} to stdout; any
// other exit code or unparsable output is a render failure. The Gateway
// applies a single content-sufficiency gate to whichever path produced the
// content: a body below the minimum length abandons the page.
package render
