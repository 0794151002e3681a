package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const nicknameKey ctxKey = "nickname"

// publicMethods are served without a session token.
var publicMethods = map[string]bool{
	docstorepb.DocStore_OpenSession_FullMethodName: true,
	docstorepb.DocStore_Ping_FullMethodName:        true,
}

// writeMethods count against the per-session write limit.
var writeMethods = map[string]bool{
	docstorepb.DocStore_CreateRoomIfAbsent_FullMethodName: true,
	docstorepb.DocStore_Append_FullMethodName:             true,
	docstorepb.DocStore_UpdateMessage_FullMethodName:      true,
	docstorepb.DocStore_ExportRoom_FullMethodName:         true,
}

// NicknameFromContext returns the session nickname set by the interceptors.
func NicknameFromContext(ctx context.Context) (string, bool) {
	nick, ok := ctx.Value(nicknameKey).(string)
	return nick, ok && nick != ""
}

// authenticate resolves the session token in the incoming metadata. An
// expired token is reported with the common.ErrTokenExpired message so
// clients can tell it apart and open a new session.
func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.SessionTokenHeaderName)
		if len(values) > 0 {
			token = values[0]
		}
	}
	if len(token) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	nick, err := s.sessions.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	return context.WithValue(ctx, nicknameKey, nick), nil
}

func (s *GRPCServer) sessionUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if writeMethods[info.FullMethod] {
		nick, _ := NicknameFromContext(ctx)
		if !s.limiter.Allow(nick) {
			s.metrics.WriteRateLimited()
			s.logger.Warn(ctx, "write rate exceeded", "nickname", nick, "method", info.FullMethod)
			return nil, status.Error(codes.ResourceExhausted, "write rate exceeded")
		}
	}

	return handler(ctx, req)
}

// sessionStream swaps in the authenticated context.
type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *sessionStream) Context() context.Context {
	return s.ctx
}

func (s *GRPCServer) sessionStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &sessionStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) metricsUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	code := status.Code(err)
	s.metrics.ObserveRequest(info.FullMethod, code.String())
	s.logger.Debug(ctx, "unary call", "method", info.FullMethod, "code", code.String())
	return resp, err
}

func (s *GRPCServer) metricsStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	err := handler(srv, ss)
	code := status.Code(err)
	s.metrics.ObserveRequest(info.FullMethod, code.String())
	s.logger.Debug(ss.Context(), "stream closed", "method", info.FullMethod, "code", code.String())
	return err
}
