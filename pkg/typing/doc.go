/*
Package typing implements the text stream animator: a single playback session
that reveals a block of text one character at a time.

Segments are joined with domain.SegmentSeparator and revealed rune by rune on
a timer. Every scheduled tick carries the generation of the session that
scheduled it; a tick whose generation no longer matches (because Start or Stop
superseded it) is discarded without side effects. At most one tick is pending
per Animator.

# Usage

	a := typing.New(typing.WithObserver(func(f domain.Frame) {
		render(f.Text, f.Complete)
	}))
	a.Start([]string{"NAV today: 42.1", "NAV yesterday: 41.9"}, domain.DefaultInitialDelay, domain.DefaultPerCharDelay)
	defer a.Stop()
*/
package typing
