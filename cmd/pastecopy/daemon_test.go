//go:build !windows

package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/pastecopy/internal/clip"
	"go.klb.dev/pastecopy/internal/history"
	"go.klb.dev/pastecopy/internal/ipc"
	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/monitor"
	"go.klb.dev/pastecopy/internal/rpc"
	"go.klb.dev/pastecopy/internal/service"
	"go.klb.dev/pastecopy/internal/storage"
)

// startDaemon runs serve on a fresh socket with a headless clipboard.
func startDaemon(t *testing.T) (string, *clip.Memory) {
	t.Helper()
	// Unix socket paths are limited to ~104 bytes; t.TempDir can exceed that on macOS.
	dir, err := os.MkdirTemp("", "pc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "d.sock")

	blobs, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)
	mem := clip.NewMemory()
	svc := service.New(monitor.New(mem, monitor.WithInterval(5*time.Millisecond)), history.Open(blobs))
	svc.Start()
	t.Cleanup(svc.Close)

	ln, err := ipc.Listen(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, svc, storeJSON) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("serve did not return")
		}
	})
	return path, mem
}

func TestDaemonServesGRPCAndHTTP(t *testing.T) {
	path, mem := startDaemon(t)

	c, err := rpc.Dial(path, "test")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mem.Set("from another app")
	require.Eventually(t, func() bool {
		entries, err := c.List(ctx, 0)
		return err == nil && len(entries) == 1
	}, 5*time.Second, 10*time.Millisecond)

	added, err := c.CopyText(ctx, "from the cli")
	require.NoError(t, err)
	assert.True(t, added)

	hc := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, path)
		},
	}}
	defer hc.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://pastecopy/v1/history", nil)
	require.NoError(t, err)
	resp, err := hc.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Entries []model.Entry `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "from the cli", body.Entries[0].Content)
	assert.Equal(t, "from another app", body.Entries[1].Content)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Status.Running)
	assert.Equal(t, storeJSON, st.Store)
}

func TestDaemonShutsDownWithOpenWatch(t *testing.T) {
	path, _ := startDaemon(t)

	// Not closed here: the server must end the stream itself.
	c, err := rpc.Dial(path, "test")
	require.NoError(t, err)

	started := make(chan struct{}, 1)
	go func() {
		_ = c.Watch(context.Background(), func([]model.Entry) error {
			select {
			case started <- struct{}{}:
			default:
			}
			return nil
		})
	}()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("watch never delivered a snapshot")
	}
	// Cleanup cancels serve and asserts it returns despite the open stream.
}
