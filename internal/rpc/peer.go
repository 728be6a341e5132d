package rpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// sourceHeader names the calling command, e.g. "pastecopy list".
const sourceHeader = "x-pastecopy-source"

// LogUnary logs each unary call at debug level with its caller and outcome.
func LogUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	attrs := []any{
		"method", info.FullMethod,
		"source", sourceFromCtx(ctx),
		"elapsed", time.Since(start),
	}
	if err != nil {
		slog.Warn("rpc failed", append(attrs, "err", err)...)
	} else {
		slog.Debug("rpc", attrs...)
	}
	return resp, err
}

// LogStream logs the lifetime of each stream.
func LogStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	src := sourceFromCtx(ss.Context())
	slog.Info("stream opened", "method", info.FullMethod, "source", src)
	err := handler(srv, ss)
	slog.Info("stream closed", "method", info.FullMethod, "source", src, "err", err)
	return err
}

func sourceFromCtx(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(sourceHeader); len(vals) > 0 {
			return vals[0]
		}
	}
	return addrFromCtx(ctx)
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if s := p.Addr.String(); s != "" {
			return s
		}
	}
	return "local"
}

// sourceCreds attaches the source header to every call.
type sourceCreds struct {
	source string
}

func (c sourceCreds) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	if c.source == "" {
		return nil, nil
	}
	return map[string]string{sourceHeader: c.source}, nil
}

func (sourceCreds) RequireTransportSecurity() bool { return false }
