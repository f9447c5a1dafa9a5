package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/ports"
	"github.com/aretw0/fundchat/pkg/typing"
)

// Chat commands.
const (
	CommandQuit  = ":q"
	CommandClear = ":clear"
)

// FinalizeFunc receives the submitted buffer.
type FinalizeFunc func(ctx context.Context, text string) error

// ContentRenderer transforms text before it is written (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

// SuggestionFormatter renders a view for the terminal. An empty result prints nothing.
type SuggestionFormatter func(domain.View) string

// Chat is a line-oriented host for the mention engine and the animator.
//
// Every line extends the buffer. When the buffer ends in a mention, the
// engine is activated and the suggestions are printed. "#N" picks suggestion
// N and animates the fund's NAV, an empty line submits the buffer, ":clear"
// empties it and ":q" quits.
type Chat struct {
	engine    *mention.Engine
	directory ports.FundDirectory
	fetch     mention.FetchFunc
	finalize  FinalizeFunc

	input     io.Reader
	output    io.Writer
	logger    *slog.Logger
	sanitizer Sanitizer
	renderer  ContentRenderer
	format    SuggestionFormatter
	sink      func(domain.Frame)

	initialDelay time.Duration
	perCharDelay time.Duration
	animOpts     []typing.Option
	animator     *typing.Animator
	completed    chan uint64

	mu     sync.Mutex
	buffer string
	view   domain.View
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithInput sets the line source (default os.Stdin).
func WithInput(r io.Reader) ChatOption {
	return func(c *Chat) { c.input = r }
}

// WithOutput sets the destination of prompts and replies (default os.Stdout).
func WithOutput(w io.Writer) ChatOption {
	return func(c *Chat) { c.output = w }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) ChatOption {
	return func(c *Chat) { c.logger = logger }
}

// WithFetch sets the candidate fetch used on activation.
func WithFetch(fetch mention.FetchFunc) ChatOption {
	return func(c *Chat) { c.fetch = fetch }
}

// WithSource fetches candidates from src.
func WithSource(src ports.CandidateSource) ChatOption {
	return func(c *Chat) { c.fetch = src.Candidates }
}

// WithFinalize sets the submit callback.
func WithFinalize(fn FinalizeFunc) ChatOption {
	return func(c *Chat) { c.finalize = fn }
}

// WithSanitizer overrides the input sanitizer.
func WithSanitizer(s Sanitizer) ChatOption {
	return func(c *Chat) { c.sanitizer = s }
}

// WithRenderer renders fund headings and messages.
func WithRenderer(r ContentRenderer) ChatOption {
	return func(c *Chat) { c.renderer = r }
}

// WithSuggestionFormatter overrides how suggestions are listed.
func WithSuggestionFormatter(f SuggestionFormatter) ChatOption {
	return func(c *Chat) { c.format = f }
}

// WithFrameSink receives every animation frame. Without one, the revealed
// text is printed once the animation completes.
func WithFrameSink(fn func(domain.Frame)) ChatOption {
	return func(c *Chat) { c.sink = fn }
}

// WithDelays sets the animation timing.
func WithDelays(initial, perChar time.Duration) ChatOption {
	return func(c *Chat) {
		c.initialDelay = initial
		c.perCharDelay = perChar
	}
}

// WithAnimatorOptions forwards options to the animator (clock, hooks, logger).
func WithAnimatorOptions(opts ...typing.Option) ChatOption {
	return func(c *Chat) { c.animOpts = append(c.animOpts, opts...) }
}

// NewChat creates a chat over engine. directory may be nil, in which case
// selections only rewrite the buffer.
func NewChat(engine *mention.Engine, directory ports.FundDirectory, opts ...ChatOption) *Chat {
	c := &Chat{
		engine:       engine,
		directory:    directory,
		input:        os.Stdin,
		output:       os.Stdout,
		logger:       logging.NewNop(),
		sanitizer:    NewSanitizer(0),
		format:       defaultSuggestions,
		initialDelay: domain.DefaultInitialDelay,
		perCharDelay: domain.DefaultPerCharDelay,
		completed:    make(chan uint64, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.animator = typing.New(append(c.animOpts, typing.WithObserver(c.observe))...)
	return c
}

// Buffer returns the current input buffer.
func (c *Chat) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// Run reads lines until ":q", end of input or ctx cancellation.
// Cancellation and end of input are not errors.
func (c *Chat) Run(ctx context.Context) error {
	defer c.animator.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := c.pump(ctx)
	for {
		fmt.Fprint(c.output, "> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.output)
			return nil
		case res, ok := <-lines:
			if !ok {
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("input error: %w", res.err)
			}
			quit, err := c.Handle(ctx, res.text)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// Handle processes one line. It reports whether the chat should end.
func (c *Chat) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == CommandQuit:
		return true, nil
	case trimmed == CommandClear:
		c.setBuffer("")
		return false, nil
	case trimmed == "":
		return false, c.submit(ctx)
	case strings.HasPrefix(trimmed, "#"):
		if n, err := strconv.Atoi(trimmed[1:]); err == nil {
			return false, c.selectSuggestion(ctx, n)
		}
	}

	return false, c.edit(ctx, line)
}

func (c *Chat) edit(ctx context.Context, line string) error {
	clean, err := c.sanitizer.Clean(line)
	if err != nil {
		fmt.Fprintf(c.output, "Error: %v. Please try again.\n", err)
		return nil
	}

	next := clean
	if current := c.Buffer(); current != "" {
		next = current + " " + clean
	}
	if len(next) > c.sanitizer.Limit() {
		fmt.Fprintf(c.output, "Error: %v. Please try again.\n", domain.ErrInputTooLarge)
		return nil
	}

	view := c.setBuffer(next)
	if mention.NeedsActivation(view) && c.fetch != nil {
		select {
		case <-c.engine.Activate(ctx, c.fetch):
		case <-ctx.Done():
			return nil
		}
		view = c.refreshView()
	}

	if out := c.format(view); out != "" {
		fmt.Fprint(c.output, out)
	}
	return nil
}

func (c *Chat) selectSuggestion(ctx context.Context, n int) error {
	c.mu.Lock()
	view, buffer := c.view, c.buffer
	c.mu.Unlock()

	if !view.Visible || n < 1 || n > len(view.Filtered) {
		fmt.Fprintf(c.output, "No suggestion #%d.\n", n)
		return nil
	}

	value := view.Filtered[n-1]
	rewritten := c.engine.SelectSuggestion(value, buffer)

	c.mu.Lock()
	c.buffer = rewritten
	c.view = c.engine.View()
	c.mu.Unlock()

	fmt.Fprintf(c.output, "%s\n", rewritten)
	return c.showFund(ctx, value)
}

func (c *Chat) submit(ctx context.Context) error {
	text := c.Buffer()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c.setBuffer("")

	if c.finalize != nil {
		if err := c.finalize(ctx, text); err != nil {
			c.logger.Error("Submit failed", "error", err)
			fmt.Fprintf(c.output, "Error: %v\n", err)
		}
	}

	if !mention.ContainsMention(text) {
		return nil
	}
	for _, name := range mentionedFunds(text, c.engine.Candidates()) {
		if err := c.showFund(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// showFund animates the NAV report of name.
func (c *Chat) showFund(ctx context.Context, name string) error {
	if c.directory == nil {
		return nil
	}

	report, err := c.directory.Lookup(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNoNAVData):
		return c.Play(ctx, []string{name, funds.NoNAVMessage})
	case errors.Is(err, domain.ErrFundNotFound):
		fmt.Fprintf(c.output, "Unknown fund %q.\n", name)
		return nil
	case err != nil:
		c.logger.Error("Fund lookup failed", "fund", name, "error", err)
		fmt.Fprintf(c.output, "Error: could not load %s: %v\n", name, err)
		return nil
	}

	segments := funds.Segments(report)
	if c.renderer != nil {
		if rendered, err := c.renderer("## " + segments[0]); err == nil {
			fmt.Fprintln(c.output, strings.TrimSpace(rendered))
			segments = segments[1:]
		}
	}
	return c.Play(ctx, segments)
}

// Play animates segments and blocks until the session completes or ctx is
// cancelled, in which case the session is stopped.
func (c *Chat) Play(ctx context.Context, segments []string) error {
	select {
	case <-c.completed:
	default:
	}

	gen := c.animator.Start(segments, c.initialDelay, c.perCharDelay)
	for {
		select {
		case <-ctx.Done():
			c.animator.Stop()
			fmt.Fprintln(c.output)
			return nil
		case done := <-c.completed:
			if done != gen {
				continue
			}
			if c.sink == nil {
				if text := c.animator.Text(); text != "" {
					fmt.Fprintln(c.output, text)
				}
			}
			return nil
		}
	}
}

// observe runs under the animator lock and must not block.
func (c *Chat) observe(f domain.Frame) {
	if c.sink != nil {
		c.sink(f)
	}
	if f.Complete {
		select {
		case c.completed <- f.Generation:
		default:
		}
	}
}

func (c *Chat) setBuffer(text string) domain.View {
	view := c.engine.OnInputChanged(text)
	c.mu.Lock()
	c.buffer = text
	c.view = view
	c.mu.Unlock()
	return view
}

func (c *Chat) refreshView() domain.View {
	view := c.engine.View()
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
	return view
}

type lineResult struct {
	text string
	err  error
}

// pump reads lines until EOF or until ctx is done. A read already blocked on
// the input is left to return on its own.
func (c *Chat) pump(ctx context.Context) <-chan lineResult {
	ch := make(chan lineResult)
	send := func(res lineResult) bool {
		select {
		case ch <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(ch)
		reader := bufio.NewReader(c.input)
		for ctx.Err() == nil {
			text, err := reader.ReadString('\n')
			if text != "" && !send(lineResult{text: text}) {
				return
			}
			if err != nil {
				if err != io.EOF {
					send(lineResult{err: err})
				}
				return
			}
		}
	}()
	return ch
}

// mentionedFunds returns the candidates written as "@name" in text, in
// candidate order.
func mentionedFunds(text string, candidates []string) []string {
	var out []string
	for _, name := range candidates {
		if name != "" && strings.Contains(text, domain.MentionPrefix+name) {
			out = append(out, name)
		}
	}
	return out
}

func defaultSuggestions(v domain.View) string {
	if !v.Visible {
		return ""
	}
	var sb strings.Builder
	for i, name := range v.Filtered {
		fmt.Fprintf(&sb, "  #%d  %s\n", i+1, name)
	}
	return sb.String()
}
