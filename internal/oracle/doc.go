// Package oracle wraps the language-model backend behind two narrow
// clients: the Navigator, which decides whether a page should be classified
// or one of its links followed, and the Classifier, which judges whether a
// page is on-topic science/technology content.
//
// The backend returns free-form text. Both clients treat it as untrusted:
// the response is reduced to its first balanced JSON object, required
// fields are validated before use, and any call or parse failure degrades
// to "no decision" / "no verdict" rather than propagating. The crawl never
// fails because the oracle had a bad day.
package oracle
