package rpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"go.klb.dev/pastecopy/internal/clip"
	"go.klb.dev/pastecopy/internal/history"
	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/monitor"
	"go.klb.dev/pastecopy/internal/service"
	"go.klb.dev/pastecopy/internal/storage"
)

type fixture struct {
	client *Client
	clip   *clip.Memory
	svc    *service.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)
	mem := clip.NewMemory()
	svc := service.New(monitor.New(mem, monitor.WithInterval(time.Hour)), history.Open(f))
	t.Cleanup(svc.Close)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(LogUnary),
		grpc.ChainStreamInterceptor(LogStream),
	)
	Register(gs, NewServer(svc, "test", "json"))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	opts := append(DialOptions("rpc-test"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	conn, err := grpc.NewClient("passthrough:///bufnet", opts...)
	require.NoError(t, err)
	c := NewClient(conn)
	t.Cleanup(func() { _ = c.Close() })
	return &fixture{client: c, clip: mem, svc: svc}
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestCopyTextAndList(t *testing.T) {
	f := newFixture(t)

	added, err := f.client.CopyText(ctx(t), "alpha")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.client.CopyText(ctx(t), "beta")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.client.CopyText(ctx(t), "beta")
	require.NoError(t, err)
	assert.False(t, added, "adjacent duplicate")

	entries, err := f.client.List(ctx(t), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "beta", entries[0].Content)
	assert.Equal(t, model.TypeText, entries[0].Type)

	entries, err = f.client.List(ctx(t), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	text, err := f.client.Paste(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, "beta", text)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	for _, s := range []string{"Hello World", "goodbye", "HELLO again"} {
		_, err := f.client.CopyText(ctx(t), s)
		require.NoError(t, err)
	}

	got, err := f.client.Search(ctx(t), "hello", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HELLO again", got[0].Content)
	assert.Equal(t, "Hello World", got[1].Content)

	got, err = f.client.Search(ctx(t), "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestPinDeleteClear(t *testing.T) {
	f := newFixture(t)
	for _, s := range []string{"one", "two", "three"} {
		_, err := f.client.CopyText(ctx(t), s)
		require.NoError(t, err)
	}
	entries, err := f.client.List(ctx(t), 0)
	require.NoError(t, err)
	one := entries[2]

	pinned, found, err := f.client.Pin(ctx(t), one.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, pinned.Pinned)

	entries, err = f.client.List(ctx(t), 0)
	require.NoError(t, err)
	assert.Equal(t, one.ID, entries[0].ID, "pinned entries lead")

	_, found, err = f.client.Pin(ctx(t), "missing")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := f.client.Delete(ctx(t), entries[1].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = f.client.Delete(ctx(t), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	removed, err := f.client.Clear(ctx(t), true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	entries, err = f.client.List(ctx(t), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Content)

	removed, err = f.client.Clear(ctx(t), false)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestCopyByID(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CopyText(ctx(t), "first")
	require.NoError(t, err)
	_, err = f.client.CopyText(ctx(t), "second")
	require.NoError(t, err)
	entries, err := f.client.List(ctx(t), 0)
	require.NoError(t, err)

	e, found, err := f.client.Copy(ctx(t), entries[1].ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", e.Content)
	current, err := f.clip.Read()
	require.NoError(t, err)
	assert.Equal(t, "first", current)

	_, found, err = f.client.Copy(ctx(t), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.CopyText(ctx(t), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = f.client.Pin(ctx(t), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.Delete(ctx(t), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad := model.DefaultConfig()
	bad.ActivationMode = "sideways"
	_, err = f.client.UpdateConfig(ctx(t), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestConfigRoundTrip(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.client.Config(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)

	cfg.MaxHistoryItems = model.Limit(2)
	cfg.ActivationMode = model.ActivationIcon
	cfg.EnableQuickSearch = false
	got, err := f.client.UpdateConfig(ctx(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, cfg, f.svc.Config())
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CopyText(ctx(t), "x")
	require.NoError(t, err)

	st, err := f.client.Status(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, "test", st.Version)
	assert.Equal(t, "json", st.Store)
	assert.NotZero(t, st.PID)
	assert.Equal(t, 1, st.Status.Entries)
	assert.Equal(t, time.Hour, st.Status.PollInterval)
	assert.False(t, st.Status.Running)
}

func TestWatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CopyText(ctx(t), "before")
	require.NoError(t, err)

	wctx, cancel := context.WithCancel(ctx(t))
	defer cancel()

	snapshots := make(chan []model.Entry, 8)
	errc := make(chan error, 1)
	go func() {
		errc <- f.client.Watch(wctx, func(entries []model.Entry) error {
			snapshots <- entries
			return nil
		})
	}()

	select {
	case got := <-snapshots:
		require.Len(t, got, 1)
		assert.Equal(t, "before", got[0].Content)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = f.client.CopyText(ctx(t), "after")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case got := <-snapshots:
			return len(got) == 2 && got[0].Content == "after"
		default:
			return false
		}
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.Equal(t, codes.Canceled, status.Code(err))
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatchCallbackErrorEndsStream(t *testing.T) {
	f := newFixture(t)
	stop := errors.New("stop")
	err := f.client.Watch(ctx(t), func([]model.Entry) error { return stop })
	assert.ErrorIs(t, err, stop)
}
