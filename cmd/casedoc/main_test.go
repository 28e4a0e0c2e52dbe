package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/casedoc"
	main "github.com/fwojciec/casedoc/cmd/casedoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	return &main.Main{Config: main.Config{
		DBPath: filepath.Join(t.TempDir(), "casedoc.db"),
		RPS:    main.DefaultRPS,
	}}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no arguments shows usage and fails", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), nil, stdout, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "Usage: casedoc")
	})

	t.Run("help succeeds", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "search")
	})

	t.Run("runs on an empty database", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"runs"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No runs found")
	})

	t.Run("unknown run for search", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"search", "missing", "rate base"}, &bytes.Buffer{}, stderr)

		assert.Equal(t, casedoc.ENOTFOUND, casedoc.ErrorCode(err))
	})

	t.Run("run requires a source site", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"run", "rate case"}, &bytes.Buffer{}, stderr)

		assert.Equal(t, casedoc.EINVALID, casedoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "CASEDOC_BASE_URL")
	})

	t.Run("ask requires an API key", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"ask", "run-1", "What ROE?"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "GEMINI_API_KEY")
	})
}
