package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/client/models"
	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultWatchBackoffBase = 250 * time.Millisecond
	defaultWatchBackoffCap  = 10 * time.Second
)

type GRPCClient struct {
	endpointURL string
	nickname    string
	conn        *grpc.ClientConn
	client      docstorepb.DocStoreClient

	backoffBase time.Duration
	backoffCap  time.Duration
	dialOptions []grpc.DialOption

	mu    sync.Mutex
	token string
}

type Option func(*GRPCClient)

// WithWatchBackoff sets the base and cap of the reconnect backoff.
func WithWatchBackoff(base, maxDelay time.Duration) Option {
	return func(c *GRPCClient) {
		c.backoffBase = base
		c.backoffCap = maxDelay
	}
}

// WithDialOptions adds options to the connection dial, e.g. a custom
// dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// openSession trades the nickname for a fresh session token.
func (s *GRPCClient) openSession(ctx context.Context) (string, error) {
	req, err := docstorepb.Encode(docstorepb.OpenSessionRequest{Nickname: s.nickname})
	if err != nil {
		return "", err
	}
	resp, err := s.client.OpenSession(ctx, req)
	if err != nil {
		return "", err
	}
	var out docstorepb.OpenSessionResponse
	if err := docstorepb.Decode(resp, &out); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = out.Token
	s.mu.Unlock()

	return out.Token, nil
}

func (s *GRPCClient) ensureToken(ctx context.Context) (string, error) {
	if t := s.currentToken(); t != "" {
		return t, nil
	}
	return s.openSession(ctx)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == docstorepb.DocStore_OpenSession_FullMethodName {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	token, err := s.ensureToken(ctx)
	if err != nil {
		return err
	}

	err = invoker(withSessionToken(ctx, token), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	token, err = s.openSession(ctx)
	if err != nil {
		return err
	}

	return invoker(withSessionToken(ctx, token), method, req, reply, cc, opts...)
}

// sessionStreamInterceptor only attaches the token. An expired token on a
// stream surfaces on Recv and is handled by the watch loop.
func (s *GRPCClient) sessionStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	token, err := s.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	return streamer(withSessionToken(ctx, token), desc, cc, method, opts...)
}

func NewGRPCClient(endpointURL, nickname string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		nickname:    nickname,
		backoffBase: defaultWatchBackoffBase,
		backoffCap:  defaultWatchBackoffCap,
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(c.dialOptions...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.sessionTokenInterceptor),
		grpc.WithStreamInterceptor(s.sessionStreamInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = docstorepb.NewDocStoreClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetValue() != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) ReadRoom(ctx context.Context, roomID string) (models.Room, error) {
	resp, err := s.client.ReadRoom(ctx, wrapperspb.String(roomID))
	if err != nil {
		return models.Room{}, s.mapError(err)
	}

	var doc docstorepb.RoomDoc
	if err := docstorepb.Decode(resp, &doc); err != nil {
		return models.Room{}, err
	}
	return roomFromDoc(doc), nil
}

func (s *GRPCClient) CreateRoomIfAbsent(ctx context.Context, room models.Room) (models.Room, bool, error) {
	req, err := docstorepb.Encode(roomToDoc(room))
	if err != nil {
		return models.Room{}, false, err
	}

	resp, err := s.client.CreateRoomIfAbsent(ctx, req)
	if err != nil {
		return models.Room{}, false, s.mapError(err)
	}

	var out docstorepb.CreateRoomResponse
	if err := docstorepb.Decode(resp, &out); err != nil {
		return models.Room{}, false, err
	}
	return roomFromDoc(out.Room), out.Created, nil
}

func (s *GRPCClient) Append(ctx context.Context, roomID string, m models.Message) (string, error) {
	req, err := docstorepb.Encode(docstorepb.AppendRequest{RoomID: roomID, Message: messageToDoc(m)})
	if err != nil {
		return "", err
	}

	resp, err := s.client.Append(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}

	var stored docstorepb.MessageDoc
	if err := docstorepb.Decode(resp, &stored); err != nil {
		return "", err
	}
	return stored.ID, nil
}

func (s *GRPCClient) UpdateMessage(ctx context.Context, roomID, messageID string, patch models.MessagePatch) error {
	req, err := docstorepb.Encode(docstorepb.UpdateRequest{
		RoomID:      roomID,
		MessageID:   messageID,
		Text:        patch.Text,
		Deleted:     patch.Deleted,
		TouchEdited: patch.TouchEdited,
	})
	if err != nil {
		return err
	}

	if _, err := s.client.UpdateMessage(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ExportRoom(ctx context.Context, roomID string) (string, error) {
	resp, err := s.client.ExportRoom(ctx, wrapperspb.String(roomID))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

// Watch starts a subscription goroutine and returns immediately. Broken
// streams are reopened with capped exponential backoff; the backoff starts
// over once a reopened stream has delivered a snapshot, and even then the
// next reopen waits the base delay.
func (s *GRPCClient) Watch(ctx context.Context, roomID string, onSnapshot func([]models.Message), onError func(error)) (func(), error) {
	if roomID == "" {
		return nil, ErrInvalidArgument
	}
	if onError == nil {
		onError = func(error) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.watchLoop(ctx, roomID, onSnapshot, onError)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return stop, nil
}

func (s *GRPCClient) watchLoop(ctx context.Context, roomID string, onSnapshot func([]models.Message), onError func(error)) {
	for ctx.Err() == nil {
		b := retry.WithCappedDuration(s.backoffCap, retry.NewExponential(s.backoffBase))

		_ = retry.Do(ctx, b, func(ctx context.Context) error {
			delivered, err := s.watchOnce(ctx, roomID, onSnapshot)
			if ctx.Err() != nil {
				return nil
			}

			if isTokenExpired(err) {
				if _, oerr := s.openSession(ctx); oerr != nil {
					err = oerr
				}
			}

			onError(s.mapError(err))
			if delivered {
				return nil
			}
			return retry.RetryableError(err)
		})

		// A stream that delivered resets the backoff but still waits the
		// base delay before reopening.
		select {
		case <-ctx.Done():
		case <-time.After(s.backoffBase):
		}
	}
}

// watchOnce runs one stream until it fails. delivered reports whether at
// least one snapshot reached onSnapshot.
func (s *GRPCClient) watchOnce(ctx context.Context, roomID string, onSnapshot func([]models.Message)) (delivered bool, err error) {
	stream, err := s.client.Watch(ctx, wrapperspb.String(roomID))
	if err != nil {
		return false, err
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return delivered, ErrUnavailable
		}
		if err != nil {
			return delivered, err
		}

		var snap docstorepb.Snapshot
		if err := docstorepb.Decode(msg, &snap); err != nil {
			return delivered, err
		}
		onSnapshot(messagesFromDocs(snap.Messages))
		delivered = true
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
