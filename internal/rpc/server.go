// Package rpc exposes the clipboard history service over gRPC on the local
// IPC socket.
//
// The service descriptor is written by hand and messages are JSON-encoded
// (content-subtype "json"), so the wire contract lives entirely in this
// package: no protoc step.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/service"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "pastecopy.v1.History"

// Service is the operation surface the server exposes. *service.Service
// satisfies it.
type Service interface {
	Items() []model.Entry
	Search(query string) []model.Entry
	TogglePin(id string) (model.Entry, bool)
	Delete(id string) bool
	ClearHistory(keepPinned bool) int
	CopyByID(id string) (model.Entry, error)
	CopyText(text string) (bool, error)
	Current() (string, error)
	Config() model.AppConfig
	UpdateConfig(cfg model.AppConfig) error
	Status() service.Status
	ObserveItems(ctx context.Context) <-chan []model.Entry
}

// HistoryServer is the server-side contract of the History service.
type HistoryServer interface {
	List(context.Context, *ListRequest) (*EntriesResponse, error)
	Search(context.Context, *SearchRequest) (*EntriesResponse, error)
	Pin(context.Context, *IDRequest) (*EntryResponse, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
	Clear(context.Context, *ClearRequest) (*ClearResponse, error)
	Copy(context.Context, *IDRequest) (*EntryResponse, error)
	CopyText(context.Context, *CopyTextRequest) (*CopyTextResponse, error)
	Paste(context.Context, *Empty) (*PasteResponse, error)
	GetConfig(context.Context, *Empty) (*ConfigMessage, error)
	UpdateConfig(context.Context, *ConfigMessage) (*ConfigMessage, error)
	Status(context.Context, *Empty) (*StatusResponse, error)
	Watch(*WatchRequest, grpc.ServerStream) error
}

// Server implements HistoryServer on top of a Service.
type Server struct {
	svc     Service
	version string
	store   string
}

// NewServer returns a Server backed by svc. version and store are reported
// by Status.
func NewServer(svc Service, version, store string) *Server {
	return &Server{svc: svc, version: version, store: store}
}

// Register attaches s to a gRPC server.
func Register(gs *grpc.Server, s HistoryServer) {
	gs.RegisterService(&serviceDesc, s)
}

func (s *Server) List(_ context.Context, req *ListRequest) (*EntriesResponse, error) {
	return &EntriesResponse{Entries: limit(s.svc.Items(), req.Limit)}, nil
}

func (s *Server) Search(_ context.Context, req *SearchRequest) (*EntriesResponse, error) {
	return &EntriesResponse{Entries: limit(s.svc.Search(req.Query), req.Limit)}, nil
}

func (s *Server) Pin(_ context.Context, req *IDRequest) (*EntryResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	e, ok := s.svc.TogglePin(req.ID)
	return &EntryResponse{Entry: e, Found: ok}, nil
}

func (s *Server) Delete(_ context.Context, req *IDRequest) (*DeleteResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	return &DeleteResponse{Deleted: s.svc.Delete(req.ID)}, nil
}

func (s *Server) Clear(_ context.Context, req *ClearRequest) (*ClearResponse, error) {
	return &ClearResponse{Removed: s.svc.ClearHistory(req.KeepPinned)}, nil
}

func (s *Server) Copy(_ context.Context, req *IDRequest) (*EntryResponse, error) {
	e, err := s.svc.CopyByID(req.ID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return &EntryResponse{Found: false}, nil
	case err != nil:
		return nil, status.Errorf(codes.Unavailable, "clipboard write: %v", err)
	}
	return &EntryResponse{Entry: e, Found: true}, nil
}

func (s *Server) CopyText(_ context.Context, req *CopyTextRequest) (*CopyTextResponse, error) {
	if req.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "text required")
	}
	added, err := s.svc.CopyText(req.Text)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "clipboard write: %v", err)
	}
	return &CopyTextResponse{Added: added}, nil
}

func (s *Server) Paste(_ context.Context, _ *Empty) (*PasteResponse, error) {
	text, err := s.svc.Current()
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "clipboard read: %v", err)
	}
	return &PasteResponse{Text: text}, nil
}

func (s *Server) GetConfig(_ context.Context, _ *Empty) (*ConfigMessage, error) {
	return &ConfigMessage{Config: s.svc.Config()}, nil
}

func (s *Server) UpdateConfig(_ context.Context, req *ConfigMessage) (*ConfigMessage, error) {
	if err := s.svc.UpdateConfig(req.Config); err != nil {
		if errors.Is(err, model.ErrInvalidConfig) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &ConfigMessage{Config: s.svc.Config()}, nil
}

func (s *Server) Status(_ context.Context, _ *Empty) (*StatusResponse, error) {
	return &StatusResponse{
		Version: s.version,
		PID:     os.Getpid(),
		Store:   s.store,
		Status:  s.svc.Status(),
	}, nil
}

// Watch streams the full history after every mutation until the client
// goes away.
func (s *Server) Watch(_ *WatchRequest, stream grpc.ServerStream) error {
	slog.Debug("history watch started")
	defer slog.Debug("history watch ended")
	for items := range s.svc.ObserveItems(stream.Context()) {
		if err := stream.SendMsg(&EntriesResponse{Entries: items}); err != nil {
			return err
		}
	}
	return nil
}
