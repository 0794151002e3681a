// Package grpc exposes the document store over gRPC: session issuing, the
// room and message calls, and the Watch stream.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/dmitrijs2005/roomchat/internal/server/metrics"
	"github.com/dmitrijs2005/roomchat/internal/server/services"
	"google.golang.org/grpc"
)

// Exporter produces a download link for a room transcript.
type Exporter interface {
	Export(ctx context.Context, roomID string) (string, error)
}

type Options struct {
	// WriteRate is the per-session write limit in requests per second;
	// zero or less disables limiting.
	WriteRate  float64
	WriteBurst int
	Metrics    *metrics.Metrics
}

type GRPCServer struct {
	docstorepb.UnimplementedDocStoreServer
	address  string
	store    *services.DocStore
	sessions *services.Sessions
	exporter Exporter
	limiter  *writeLimiter
	metrics  *metrics.Metrics
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, store *services.DocStore, sessions *services.Sessions, exporter Exporter, opts Options) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		store:    store,
		sessions: sessions,
		exporter: exporter,
		limiter:  newWriteLimiter(opts.WriteRate, opts.WriteBurst),
		metrics:  opts.Metrics,
	}
}

// NewServer builds a grpc.Server with the interceptors and the service
// registered, ready to Serve on any listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.metricsUnaryInterceptor, s.sessionUnaryInterceptor),
		grpc.ChainStreamInterceptor(s.metricsStreamInterceptor, s.sessionStreamInterceptor),
	)
	docstorepb.RegisterDocStoreServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
