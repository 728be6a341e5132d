package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/pastecopy/internal/ipc"
	"go.klb.dev/pastecopy/internal/model"
)

// Client is a typed wrapper around a connection to the History service.
type Client struct {
	conn *grpc.ClientConn
}

// DialOptions returns the options every client connection needs. source is
// sent with each call so the daemon can attribute it in logs.
func DialOptions(source string) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(sourceCreds{source: source}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
}

// Dial connects to the daemon listening on the IPC socket at path.
// No auth: the socket is local and owner-restricted by the OS.
func Dial(path, source string) (*Client, error) {
	opts := append(DialOptions(source),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return ipc.Dial(ctx, path)
		}),
	)
	conn, err := grpc.NewClient("passthrough:///pastecopy", opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection. The connection must have been
// created with DialOptions.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, fullMethod(method), in, out)
}

// List returns up to limit entries (all when limit <= 0).
func (c *Client) List(ctx context.Context, limit int) ([]model.Entry, error) {
	var out EntriesResponse
	if err := c.invoke(ctx, "List", &ListRequest{Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Search returns entries whose content contains query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.Entry, error) {
	var out EntriesResponse
	if err := c.invoke(ctx, "Search", &SearchRequest{Query: query, Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Pin toggles the pinned flag of id.
func (c *Client) Pin(ctx context.Context, id string) (model.Entry, bool, error) {
	var out EntryResponse
	if err := c.invoke(ctx, "Pin", &IDRequest{ID: id}, &out); err != nil {
		return model.Entry{}, false, err
	}
	return out.Entry, out.Found, nil
}

// Delete removes id from history.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	var out DeleteResponse
	if err := c.invoke(ctx, "Delete", &IDRequest{ID: id}, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

// Clear empties the history, optionally keeping pinned entries.
func (c *Client) Clear(ctx context.Context, keepPinned bool) (int, error) {
	var out ClearResponse
	if err := c.invoke(ctx, "Clear", &ClearRequest{KeepPinned: keepPinned}, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

// Copy places the entry id back on the clipboard.
func (c *Client) Copy(ctx context.Context, id string) (model.Entry, bool, error) {
	var out EntryResponse
	if err := c.invoke(ctx, "Copy", &IDRequest{ID: id}, &out); err != nil {
		return model.Entry{}, false, err
	}
	return out.Entry, out.Found, nil
}

// CopyText writes text to the clipboard through the daemon.
func (c *Client) CopyText(ctx context.Context, text string) (bool, error) {
	var out CopyTextResponse
	if err := c.invoke(ctx, "CopyText", &CopyTextRequest{Text: text}, &out); err != nil {
		return false, err
	}
	return out.Added, nil
}

// Paste returns the live clipboard text as seen by the daemon.
func (c *Client) Paste(ctx context.Context) (string, error) {
	var out PasteResponse
	if err := c.invoke(ctx, "Paste", &Empty{}, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Config returns the daemon's configuration.
func (c *Client) Config(ctx context.Context) (model.AppConfig, error) {
	var out ConfigMessage
	if err := c.invoke(ctx, "GetConfig", &Empty{}, &out); err != nil {
		return model.AppConfig{}, err
	}
	return out.Config, nil
}

// UpdateConfig replaces the configuration and returns what was stored.
func (c *Client) UpdateConfig(ctx context.Context, cfg model.AppConfig) (model.AppConfig, error) {
	var out ConfigMessage
	if err := c.invoke(ctx, "UpdateConfig", &ConfigMessage{Config: cfg}, &out); err != nil {
		return model.AppConfig{}, err
	}
	return out.Config, nil
}

// Status describes the running daemon.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.invoke(ctx, "Status", &Empty{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Watch calls fn with the full history on subscribe and after every
// change, until ctx is cancelled, the server ends the stream, or fn
// returns an error.
func (c *Client) Watch(ctx context.Context, fn func([]model.Entry) error) error {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Watch"))
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&WatchRequest{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		var msg EntriesResponse
		if err := stream.RecvMsg(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(msg.Entries); err != nil {
			return err
		}
	}
}
