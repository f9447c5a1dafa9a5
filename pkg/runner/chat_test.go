package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCatalog() *funds.Catalog {
	return funds.NewCatalog(
		[]string{"BlueFund", "BlueChip", "RedFund", "GreenFund"},
		map[string]*domain.FundReport{
			"BlueFund": {Name: "BlueFund", House: "Blue AMC", Points: []domain.NAVPoint{
				{Date: "17-10-2026", NAV: "112.40"},
			}},
			"BlueChip": {Name: "BlueChip"},
		},
	)
}

func newChat(out *bytes.Buffer, opts ...runner.ChatOption) (*runner.Chat, *atomic.Int32) {
	catalog := chatCatalog()
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return catalog.Candidates(ctx)
	}
	base := []runner.ChatOption{
		runner.WithOutput(out),
		runner.WithFetch(fetch),
		runner.WithDelays(0, 0),
	}
	return runner.NewChat(mention.NewEngine(), catalog, append(base, opts...)...), &calls
}

func TestChat_Run_SelectAnimatesFund(t *testing.T) {
	var out bytes.Buffer
	chat, calls := newChat(&out, runner.WithInput(strings.NewReader("tell me about @Blu\n#1\n:q\n")))

	require.NoError(t, chat.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "  #1  BlueFund\n  #2  BlueChip\n")
	assert.Contains(t, got, "tell me about @BlueFund\n")
	assert.Contains(t, got, "BlueFund (Blue AMC)\n\n17-10-2026: NAV 112.40\n")
	assert.Equal(t, "tell me about @BlueFund", chat.Buffer())
	assert.Equal(t, int32(1), calls.Load())
}

func TestChat_Run_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out, runner.WithInput(strings.NewReader("hello")))
	require.NoError(t, chat.Run(context.Background()))
	assert.Equal(t, "hello", chat.Buffer())
}

func TestChat_Run_Cancelled(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out, runner.WithInput(blockingReader{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, chat.Run(ctx))
}

func TestChat_Handle_LinesExtendBuffer(t *testing.T) {
	var out bytes.Buffer
	chat, calls := newChat(&out)
	ctx := context.Background()

	_, err := chat.Handle(ctx, "hello there")
	require.NoError(t, err)
	assert.Zero(t, calls.Load(), "no mention, no fetch")
	assert.NotContains(t, out.String(), "#1")

	_, err = chat.Handle(ctx, "@")
	require.NoError(t, err)
	assert.Equal(t, "hello there @", chat.Buffer())
	assert.Contains(t, out.String(), "  #4  GreenFund\n", "a bare @ lists every fund")

	quit, err := chat.Handle(ctx, ":clear")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Empty(t, chat.Buffer())

	quit, err = chat.Handle(ctx, " :q ")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestChat_Handle_InvalidSelection(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out)

	_, err := chat.Handle(context.Background(), "#3")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No suggestion #3.")
}

func TestChat_Handle_SelectionWithoutHistory(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out)
	ctx := context.Background()

	_, err := chat.Handle(ctx, "@BlueC")
	require.NoError(t, err)
	_, err = chat.Handle(ctx, "#1")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "BlueChip\n\n"+funds.NoNAVMessage+"\n")
}

func TestChat_Submit_FinalizesAndRoutesMentions(t *testing.T) {
	var out bytes.Buffer
	var submitted []string
	chat, _ := newChat(&out, runner.WithFinalize(func(ctx context.Context, text string) error {
		submitted = append(submitted, text)
		return nil
	}))
	ctx := context.Background()

	_, err := chat.Handle(ctx, "compare @BlueFund")
	require.NoError(t, err)
	_, err = chat.Handle(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"compare @BlueFund"}, submitted)
	assert.Empty(t, chat.Buffer())
	assert.Contains(t, out.String(), "17-10-2026: NAV 112.40")

	_, err = chat.Handle(ctx, "")
	require.NoError(t, err)
	assert.Len(t, submitted, 1, "empty buffer is not submitted")
}

func TestChat_Submit_FinalizeError(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out, runner.WithFinalize(func(context.Context, string) error {
		return errors.New("backend down")
	}))
	ctx := context.Background()

	_, err := chat.Handle(ctx, "hi")
	require.NoError(t, err)
	_, err = chat.Handle(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Error: backend down")
}

func TestChat_FetchFailureHidesSuggestions(t *testing.T) {
	var out bytes.Buffer
	chat := runner.NewChat(mention.NewEngine(), nil,
		runner.WithOutput(&out),
		runner.WithFetch(func(context.Context) ([]string, error) { return nil, errors.New("boom") }),
	)

	_, err := chat.Handle(context.Background(), "x @Blu")
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "#1")
}

func TestChat_InputTooLarge(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out, runner.WithSanitizer(runner.NewSanitizer(8)))
	ctx := context.Background()

	_, err := chat.Handle(ctx, "123456789")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Error:")
	assert.Empty(t, chat.Buffer())

	_, err = chat.Handle(ctx, "1234")
	require.NoError(t, err)
	_, err = chat.Handle(ctx, "5678")
	require.NoError(t, err)
	assert.Equal(t, "1234", chat.Buffer(), "the joined buffer must fit too")
}

func TestChat_Play_FrameSink(t *testing.T) {
	var out bytes.Buffer
	var mu sync.Mutex
	var frames []domain.Frame
	chat, _ := newChat(&out, runner.WithFrameSink(func(f domain.Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	}))

	require.NoError(t, chat.Play(context.Background(), []string{"ab"}))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.True(t, last.Complete)
	assert.Equal(t, "ab", last.Text)
	assert.Empty(t, out.String(), "the sink owns the output")
}

func TestChat_Play_EmptySegments(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out)
	require.NoError(t, chat.Play(context.Background(), nil))
	assert.Empty(t, out.String())
}

func TestChat_Play_CancelStopsAnimation(t *testing.T) {
	var out bytes.Buffer
	chat, _ := newChat(&out, runner.WithDelays(time.Hour, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, chat.Play(ctx, []string{"never shown"}))
	assert.NotContains(t, out.String(), "never shown")
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
