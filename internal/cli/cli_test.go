package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fundchat/internal/config"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fundchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const staticConfig = `
animation:
  initial_delay: 0s
  per_char_delay: 0s
source:
  kind: static
  funds: [BlueFund, BlueChip, RedFund]
cache:
  kind: %s
  redis_addr: %s
`

func TestNewApp_StaticSource(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(staticConfig, "none", ""))
	app, err := NewApp(Options{ConfigPath: path}, true)
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &funds.Catalog{}, app.Source)
	names, err := app.Source.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BlueFund", "BlueChip", "RedFund"}, names)

	_, err = app.Directory.Lookup(context.Background(), "BlueFund")
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}

func TestNewApp_MemoryCache(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(staticConfig, "memory", ""))
	app, err := NewApp(Options{ConfigPath: path}, true)
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &funds.Cached{}, app.Source)
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeConfig(t, fmt.Sprintf(staticConfig, "redis", mr.Addr()))

	app, err := NewApp(Options{ConfigPath: path}, false)
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Source.Candidates(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("fundchat:candidates"))
}

func TestNewApp_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "source:\n  kind: ftp\n")
	_, err := NewApp(Options{ConfigPath: path}, true)
	assert.ErrorContains(t, err, `unknown source.kind "ftp"`)
}

func TestNewApp_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")
	_, err := NewApp(Options{ConfigPath: path}, false)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRunSuggest(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(staticConfig, "memory", ""))

	var out bytes.Buffer
	require.NoError(t, RunSuggest(context.Background(), Options{ConfigPath: path}, "x @Blu", &out))

	var view domain.View
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.True(t, view.Visible)
	assert.Equal(t, "Blu", view.Token)
	assert.Equal(t, []string{"BlueFund", "BlueChip"}, view.Filtered)
}

func TestRunSuggest_NoMention(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(staticConfig, "none", ""))

	var out bytes.Buffer
	require.NoError(t, RunSuggest(context.Background(), Options{ConfigPath: path}, "hello there", &out))

	var view domain.View
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.False(t, view.Visible)
	assert.False(t, view.HasToken)
}

func TestRunAnimate(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(staticConfig, "none", ""))

	var out bytes.Buffer
	err := RunAnimate(context.Background(), Options{ConfigPath: path}, "one two three", 7, &out)
	require.NoError(t, err)
	assert.Equal(t, "one two\n\nthree\n", out.String())
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(fmt.Errorf("input error: %w", io.EOF)))

	boom := errors.New("boom")
	assert.ErrorIs(t, handleExecutionError(boom), boom)
}

func TestCreateLogger(t *testing.T) {
	l, err := createLogger(false, true, config.LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.False(t, l.Enabled(context.Background(), -8), "interactive logger is silent")

	l, err = createLogger(true, true, config.LogConfig{})
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), -4), "debug enables debug level")
}

func TestSignalContext_CancelWithoutSignal(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
