// Package urlx provides host normalization and the same-site test used to
// keep the crawl on the seed's site.
//
// Normalization is intentionally minimal: strip the port, lowercase, and
// drop a leading "www." label. The same-site test then treats a host and
// any of its subdomains as one site, so "blog.example.com" and
// "www.example.com" both belong to "example.com".
package urlx
