/*
Package domain contains the value objects shared by the fundchat components.

It is kept pure and free of I/O so that the animator, the mention engine and
every host (terminal, HTTP, MCP) can exchange the same types.

# Key Entities

  - Frame: A snapshot of a typing animation session (revealed text, completion).
  - View: The derived suggestion state for an input buffer (token, visibility, filtered list).
  - FundReport: The NAV history of a fund, as returned by a catalogue.
  - Hooks: Callbacks for observability (fetches, stale discards, session lifecycle).
*/
package domain
