// Package funds provides fund catalogue sources: an HTTP client for the
// mfapi-style public API, a static catalogue and a caching decorator. It
// also formats NAV reports into text the typing animator can reveal.
package funds
