package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCopied(t *testing.T) {
	t.Parallel()

	var gotID string
	var gotOpts Options
	n := Func(func(_ context.Context, id string, opts Options) (bool, error) {
		gotID, gotOpts = id, opts
		return true, nil
	})

	ok, err := NotifyCopied(context.Background(), n, "Markdown")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(gotID, "copied-"))
	assert.Equal(t, "Copied as Markdown", gotOpts.Message)
	assert.Equal(t, "basic", gotOpts.Type)
}

func TestNotifyCopied_DefaultMessageAndNil(t *testing.T) {
	t.Parallel()

	var msg string
	n := Func(func(_ context.Context, _ string, opts Options) (bool, error) {
		msg = opts.Message
		return false, nil
	})

	ok, err := NotifyCopied(context.Background(), n, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Link copied to the clipboard", msg)

	ok, err = NotifyCopied(context.Background(), nil, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ok, err := (&Terminal{W: &buf}).Create(context.Background(), "id", Options{Message: "Copied as LaTeX"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "Copied as LaTeX")
}

func TestDesktop_MissingHelper(t *testing.T) {
	t.Parallel()

	d := &Desktop{lookPath: func(string) (string, error) { return "", errors.New("not found") }}
	ok, err := d.Create(context.Background(), "id", Options{Message: "x", Title: "y"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFallback(t *testing.T) {
	t.Parallel()

	var order []string
	failing := Func(func(context.Context, string, Options) (bool, error) {
		order = append(order, "failing")
		return false, errors.New("dbus down")
	})
	declined := Func(func(context.Context, string, Options) (bool, error) {
		order = append(order, "declined")
		return false, nil
	})
	shown := Func(func(context.Context, string, Options) (bool, error) {
		order = append(order, "shown")
		return true, nil
	})
	never := Func(func(context.Context, string, Options) (bool, error) {
		order = append(order, "never")
		return true, nil
	})

	ok, err := Fallback{failing, declined, shown, never}.Create(context.Background(), "id", Options{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"failing", "declined", "shown"}, order)
}
