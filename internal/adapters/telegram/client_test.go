package telegram

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Config{APIHash: "hash", SessionPath: "s.json"})
	require.Error(t, err)

	_, err = New(Config{APIID: 1, SessionPath: "s.json"})
	require.Error(t, err)

	_, err = New(Config{APIID: 1, APIHash: "hash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session path")
}

func TestClient_ProfileCallsOutsideConnect(t *testing.T) {
	t.Parallel()

	c, err := New(Config{APIID: 1, APIHash: "hash", SessionPath: "s.json"})
	require.NoError(t, err)

	_, err = c.Self(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	err = c.applyBio(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestIdentityFrom(t *testing.T) {
	t.Parallel()

	user := &tg.User{ID: 777, FirstName: "Аня", Username: "anya"}

	got := identityFrom(user)

	assert.Equal(t, int64(777), got.ID)
	assert.Equal(t, "Аня", got.FirstName)
	assert.Equal(t, "anya", got.Username)

	assert.Zero(t, identityFrom(nil))
}

func TestTerminalAuth_PromptsAndTrims(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ta := &terminalAuth{
		in:  bufio.NewReader(strings.NewReader("  +79990000000  \n12345\nhunter2\n")),
		out: &out,
	}

	phone, err := ta.Phone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+79990000000", phone)

	code, err := ta.Code(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "12345", code)

	password, err := ta.Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)

	assert.Contains(t, out.String(), "Phone number")
	assert.Contains(t, out.String(), "Code from Telegram")
}

func TestTerminalAuth_RefusesSignUp(t *testing.T) {
	t.Parallel()

	ta := &terminalAuth{}

	_, err := ta.SignUp(context.Background())
	require.Error(t, err)
}
