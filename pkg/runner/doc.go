/*
Package runner hosts the fundchat components in a line-oriented terminal chat.

A Chat owns one input buffer, a mention.Engine and a typing.Animator. Each line
read from the input extends the buffer; when the buffer ends in an "@" mention
the engine is activated and its suggestions are printed. Picking a suggestion
("#N") rewrites the buffer and animates the fund's NAV history.

# Usage

	chat := runner.NewChat(engine, directory,
		runner.WithSource(source),
		runner.WithFinalize(send),
		runner.WithFrameSink(tw.Observe),
	)

	if err := chat.Run(ctx); err != nil {
		log.Fatal(err)
	}

All input passes through a Sanitizer before it reaches the engine.
*/
package runner
