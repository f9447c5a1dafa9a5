/*
Package ports defines the driven ports (interfaces) of fundchat.

These interfaces decouple the components and hosts from the concrete fund
catalogue and cache backends.

# Key Interfaces

  - CandidateSource: Provides the fund names used for mention suggestions.
  - CandidateCache: Persists a fetched candidate list (memory or Redis).
  - FundDirectory: Resolves a fund name to its latest NAV report.
*/
package ports
