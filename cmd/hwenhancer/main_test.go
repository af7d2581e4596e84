package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/session"
)

const (
	enabledNext  = `<form><input type="submit" name="fwListNaviBtnNext" value="次へ＞"></form>`
	disabledNext = `<form><input type="submit" name="fwListNaviBtnNext" value="次へ＞" disabled></form>`
)

func writePage(t *testing.T, dir, name, next string, wages ...int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<html><body><div id="list">`)
	for _, w := range wages {
		fmt.Fprintf(&b, `<table class="kyujin" id="w%d"><tr><th>賃金</th><td>%d円</td></tr><tr><th>就業時間</th><td>9時00分〜17時00分</td></tr></table>`, w, w)
	}
	b.WriteString(`</div>`)
	b.WriteString(next)
	b.WriteString(`</body></html>`)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// setupSession points the CLI at a private file session
func setupSession(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("HW_SESSION_BACKEND", session.KindFile)
	t.Setenv("HW_SESSION_DIR", filepath.Join(dir, "sessions"))
	t.Setenv("HW_SESSION_ID", "cli")
	t.Setenv("HW_PAGE_DELAY", "0s")
	t.Setenv("HW_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--silence"}, args...))
	return cmd.ExecuteContext(context.Background())
}

func storedItems(t *testing.T, dir string) int {
	t.Helper()
	backend, err := session.NewFileBackend(filepath.Join(dir, "sessions"), "cli")
	require.NoError(t, err)
	items, err := session.NewState(backend, nil).Items(context.Background())
	require.NoError(t, err)
	return len(items)
}

func TestParseSortsAndWritesPage(t *testing.T) {
	dir := setupSession(t)
	in := writePage(t, dir, "page.html", disabledNext, 180000, 250000, 210000)
	out := filepath.Join(dir, "sorted.html")

	require.NoError(t, run(t, "parse", in, "--sort", "salary_max", "--out", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.Less(t, strings.Index(html, `id="w250000"`), strings.Index(html, `id="w210000"`))
	assert.Less(t, strings.Index(html, `id="w210000"`), strings.Index(html, `id="w180000"`))
	assert.Zero(t, storedItems(t, dir))
}

func TestParseRejectsUnknownSortKey(t *testing.T) {
	dir := setupSession(t)
	in := writePage(t, dir, "page.html", disabledNext, 180000)

	err := run(t, "parse", in, "--sort", "company")
	assert.Error(t, err)
}

func TestFetchThenOpenThenReset(t *testing.T) {
	dir := setupSession(t)
	first := writePage(t, dir, "p1.html", enabledNext, 200000, 300000)
	second := writePage(t, dir, "p2.html", disabledNext, 250000)

	require.NoError(t, run(t, "fetch", "--yes", first, second))
	assert.Equal(t, 3, storedItems(t, dir))

	// a later load of any listing page shows everything collected
	out := filepath.Join(dir, "all.html")
	other := writePage(t, dir, "p3.html", disabledNext, 100000)
	require.NoError(t, run(t, "open", other, "--sort", "salary_min", "--out", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.NotContains(t, html, `id="w100000"`)
	assert.Less(t, strings.Index(html, `id="w300000"`), strings.Index(html, `id="w250000"`))
	assert.Less(t, strings.Index(html, `id="w250000"`), strings.Index(html, `id="w200000"`))

	require.NoError(t, run(t, "reset"))
	assert.Zero(t, storedItems(t, dir))
}

func TestSessionEnd(t *testing.T) {
	dir := setupSession(t)
	first := writePage(t, dir, "p1.html", enabledNext, 200000)
	second := writePage(t, dir, "p2.html", disabledNext, 250000)
	require.NoError(t, run(t, "fetch", "--yes", first, second))

	require.NoError(t, run(t, "session", "end"))

	backend, err := session.NewFileBackend(filepath.Join(dir, "sessions"), "cli")
	require.NoError(t, err)
	for _, key := range []string{session.KeyFetching, session.KeyItems} {
		_, ok, err := backend.Get(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestOpenRejectsMixedTargets(t *testing.T) {
	dir := setupSession(t)
	in := writePage(t, dir, "page.html", disabledNext, 180000)

	err := run(t, "open", in, "https://example.com/list")
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://www.hellowork.mhlw.go.jp/kensaku/GECA110010.do"))
	assert.True(t, isURL("http://localhost:8080/list"))
	assert.False(t, isURL("page.html"))
	assert.False(t, isURL("/tmp/page.html"))
	assert.False(t, isURL("ftp://example.com/x"))
}

func TestResetAfterCorruptDataLeavesSessionIdle(t *testing.T) {
	ctx := context.Background()
	dir := setupSession(t)
	first := writePage(t, dir, "p1.html", enabledNext, 200000, 300000)
	second := writePage(t, dir, "p2.html", disabledNext, 250000)

	backend, err := session.NewFileBackend(filepath.Join(dir, "sessions"), "cli")
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, session.KeyFetching, "true"))
	require.NoError(t, backend.Set(ctx, session.KeyItems, "{not json"))

	err = run(t, "open", first, second)
	require.True(t, errors.Is(err, session.ErrCorruptState))

	require.NoError(t, run(t, "reset"))
	require.NoError(t, run(t, "open", first, second))

	state := session.NewState(backend, nil)
	fetching, err := state.Fetching(ctx)
	require.NoError(t, err)
	assert.False(t, fetching)
	assert.Zero(t, storedItems(t, dir))
}
