/*
Package mention implements the "@fund" autocomplete engine.

The engine watches an input buffer, detects a trailing mention token, filters
a lazily fetched candidate list and rewrites the buffer when a suggestion is
picked. Token detection and filtering are pure functions (TrailingToken,
Filter, Replace) so hosts can reuse them without an Engine.

# Activation

Candidates are fetched through a FetchFunc on demand. A View reports
NeedsFetch when the buffer carries a token and the cache is empty; the host
then calls Activate, which starts at most one fetch at a time. A buffer is
activated once per appearance of its token: after a failed or empty fetch it
asks again only when the token has gone and come back. Every fetch is
tagged with the generation current at launch; InvalidateCandidates bumps the
generation so a late result is dropped instead of repopulating the cache.
*/
package mention
