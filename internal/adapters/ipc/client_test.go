package ipc

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_IsRunning_NoDaemon(t *testing.T) {
	socketPath, lockPath := testPaths(t, "cli-none")
	client := NewClient(ClientConfig{SocketPath: socketPath, LockPath: lockPath})

	assert.False(t, client.IsRunning())
}

func TestClient_IsRunning_StaleFiles(t *testing.T) {
	// Lock and socket files left behind by a crashed daemon, with
	// nothing listening.
	socketPath, lockPath := testPaths(t, "cli-stale")
	require.NoError(t, os.WriteFile(lockPath, []byte("12345\n"), 0o600))
	require.NoError(t, os.WriteFile(socketPath, []byte{}, 0o600))

	client := NewClient(ClientConfig{SocketPath: socketPath, LockPath: lockPath})

	assert.False(t, client.IsRunning())
}

func TestClient_RequestsFailWhenNotRunning(t *testing.T) {
	socketPath, lockPath := testPaths(t, "cli-down")
	client := NewClient(ClientConfig{SocketPath: socketPath, LockPath: lockPath, Timeout: time.Second})

	_, err := client.Status()
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = client.Pause()
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = client.Update()
	assert.ErrorIs(t, err, ErrNotRunning)

	_, err = client.Stop(false, 0)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestClient_PID(t *testing.T) {
	socketPath, lockPath := testPaths(t, "cli-pid")
	client := NewClient(ClientConfig{SocketPath: socketPath, LockPath: lockPath})

	assert.Zero(t, client.PID(), "no lock file means no pid")

	require.NoError(t, os.WriteFile(lockPath, []byte("4321\n"), 0o600))
	assert.Equal(t, 4321, client.PID())

	require.NoError(t, os.WriteFile(lockPath, []byte("not-a-pid\n"), 0o600))
	assert.Zero(t, client.PID())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.Contains(t, client.socketPath, "telebio.sock")
	assert.Contains(t, client.lockPath, "telebio.lock")
	assert.Equal(t, 30*time.Second, client.timeout)
}
