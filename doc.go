/*
Package fundchat is the conversational core of a mutual-fund assistant.

It provides two independent components with their own state and timing:

  - typing.Animator reveals a block of text one character at a time. Sessions
    can be restarted, stopped and resumed; a restart discards every pending
    tick of the previous session.
  - mention.Engine watches an input buffer for a trailing "@fund" token,
    fetches the candidate list once per activation, filters it as the user
    types and rewrites the token when a suggestion is picked.

The Assistant type wires both to a ports.CandidateSource for library users.
The hosts (terminal chat, HTTP/SSE server, MCP server) live in pkg/runner,
pkg/adapters and cmd/fundchat.

# Usage

	catalog := funds.NewCatalog([]string{"BlueFund", "BlueChip"}, nil)
	a := fundchat.New(catalog)

	view, done := a.Input(ctx, "tell me about @Blu")
	<-done
	view = a.Mentions().View()

	text := a.Select(view.Filtered[0], "tell me about @Blu") // "tell me about @BlueFund"
*/
package fundchat
