// Package main provides the entry point for the scidigest CLI.
//
// scidigest crawls news sites from a seed list and collects
// science & technology articles, using a language-model oracle to steer
// navigation and judge relevance.
//
// Usage:
//
//	scidigest crawl
//	scidigest crawl --seeds sites.txt --output digest.json
//
// See --help for all available options.
package main

// main is the entry point for scidigest.
func main() {
	Execute()
}
