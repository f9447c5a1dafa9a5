package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/fundchat"
	"github.com/aretw0/fundchat/internal/presentation/tui"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/runner"
	"github.com/aretw0/fundchat/pkg/typing"
)

// RunChat starts the interactive terminal chat on stdin/stdout.
func RunChat(ctx context.Context, opts Options) error {
	app, err := NewApp(opts, true)
	if err != nil {
		return err
	}
	defer app.Close()

	width := tui.TerminalWidth(os.Stdout)
	render, err := tui.NewRenderer(width)
	if err != nil {
		return err
	}

	tui.PrintBanner(os.Stdout, strings.TrimSpace(fundchat.Version))

	tw := tui.NewTypewriter(os.Stdout)
	cfg := app.Config
	chat := runner.NewChat(app.Engine, app.Directory,
		runner.WithInput(os.Stdin),
		runner.WithOutput(os.Stdout),
		runner.WithLogger(app.Logger),
		runner.WithSource(app.Source),
		runner.WithSanitizer(app.Sanitizer()),
		runner.WithRenderer(runner.ContentRenderer(render)),
		runner.WithFinalize(echoFinalize(os.Stdout, render)),
		runner.WithFrameSink(tw.Observe),
		runner.WithSuggestionFormatter(func(v domain.View) string {
			return tui.FormatSuggestions(v, width)
		}),
		runner.WithDelays(cfg.Animation.InitialDelay, cfg.Animation.PerCharDelay),
		runner.WithAnimatorOptions(
			typing.WithLogger(app.Logger),
			typing.WithHooks(app.Hooks()),
		),
	)

	err = chat.Run(ctx)
	if sc, ok := ctx.(*SignalContext); ok && sc.Signal() != nil {
		printSystemMessage(os.Stdout, "Interrupted.")
	}
	return handleExecutionError(err)
}

// echoFinalize prints the submitted message back as markdown.
func echoFinalize(w io.Writer, render func(string) (string, error)) runner.FinalizeFunc {
	return func(ctx context.Context, text string) error {
		out, err := render("**you:** " + text)
		if err != nil {
			return fmt.Errorf("failed to render message: %w", err)
		}
		fmt.Fprintln(w, strings.TrimSpace(out))
		return nil
	}
}

// RunSuggest prints the suggestion view for text as JSON.
func RunSuggest(ctx context.Context, opts Options, text string, w io.Writer) error {
	app, err := NewApp(opts, true)
	if err != nil {
		return err
	}
	defer app.Close()

	clean, err := app.Sanitizer().Clean(text)
	if err != nil {
		return err
	}

	view := app.Engine.OnInputChanged(clean)
	if mention.NeedsActivation(view) {
		select {
		case <-app.Engine.Activate(ctx, app.Source.Candidates):
		case <-ctx.Done():
			return handleExecutionError(ctx.Err())
		}
		view = app.Engine.View()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// RunAnimate types text to w, split into chunks of at most chunkSize characters.
func RunAnimate(ctx context.Context, opts Options, text string, chunkSize int, w io.Writer) error {
	app, err := NewApp(opts, true)
	if err != nil {
		return err
	}
	defer app.Close()

	clean, err := app.Sanitizer().Clean(text)
	if err != nil {
		return err
	}

	tw := tui.NewTypewriter(w)
	cfg := app.Config
	chat := runner.NewChat(app.Engine, nil,
		runner.WithOutput(w),
		runner.WithLogger(app.Logger),
		runner.WithFrameSink(tw.Observe),
		runner.WithDelays(cfg.Animation.InitialDelay, cfg.Animation.PerCharDelay),
		runner.WithAnimatorOptions(typing.WithLogger(app.Logger), typing.WithHooks(app.Hooks())),
	)
	if err := chat.Play(ctx, funds.Chunk(clean, chunkSize)); err != nil {
		return err
	}
	if err := tw.Err(); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return handleExecutionError(ctx.Err())
}
