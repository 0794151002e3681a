package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/roomchat/internal/server/services"
	"google.golang.org/grpc/test/bufconn"
)

type fakeExporter struct {
	url string
	err error
}

func (f *fakeExporter) Export(_ context.Context, roomID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url + roomID, nil
}

func newTestServer(t *testing.T, opts Options) (*GRPCServer, *services.DocStore) {
	t.Helper()
	store := services.NewDocStore(repomanager.NewInMemoryRepositoryManager(), services.NewHub(), logging.Nop())
	sessions := services.NewSessions("secret", time.Hour)
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), store, sessions, &fakeExporter{url: "http://files/"}, opts), store
}

// serveBufconn serves s in memory and returns a dialer for clients.
func serveBufconn(t *testing.T, s *GRPCServer) func(context.Context, string) (net.Conn, error) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
}
