package grpc

import (
	"context"

	"github.com/dmitrijs2005/roomchat/internal/docstorepb"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func decode(in *structpb.Struct, v any) error {
	if in == nil {
		return status.Error(codes.InvalidArgument, "empty request")
	}
	if err := docstorepb.Decode(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := docstorepb.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) OpenSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req docstorepb.OpenSessionRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	token, err := s.sessions.Open(req.Nickname)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Session opened", "nickname", req.Nickname)
	return encode(docstorepb.OpenSessionResponse{Token: token})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (s *GRPCServer) ReadRoom(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	room, err := s.store.ReadRoom(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(roomToDoc(room))
}

func (s *GRPCServer) CreateRoomIfAbsent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var doc docstorepb.RoomDoc
	if err := decode(in, &doc); err != nil {
		return nil, err
	}

	room, created, err := s.store.CreateRoomIfAbsent(ctx, roomFromDoc(doc))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(docstorepb.CreateRoomResponse{Created: created, Room: roomToDoc(room)})
}

func (s *GRPCServer) Append(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req docstorepb.AppendRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	nick, _ := NicknameFromContext(ctx)
	stored, err := s.store.Append(ctx, nick, req.RoomID, messageFromDoc(req.Message))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(messageToDoc(*stored))
}

func (s *GRPCServer) UpdateMessage(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req docstorepb.UpdateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	nick, _ := NicknameFromContext(ctx)
	patch := models.MessagePatch{Text: req.Text, Deleted: req.Deleted, TouchEdited: req.TouchEdited}
	if _, err := s.store.UpdateMessage(ctx, nick, req.RoomID, req.MessageID, patch); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ExportRoom(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s.exporter == nil {
		return nil, status.Error(codes.Unimplemented, "transcript export is not configured")
	}

	url, err := s.exporter.Export(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	nick, _ := NicknameFromContext(ctx)
	s.logger.Info(ctx, "Transcript exported", "room", in.GetValue(), "nickname", nick)
	return wrapperspb.String(url), nil
}

func (s *GRPCServer) Watch(in *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	roomID := in.GetValue()

	err := s.store.Watch(ctx, roomID, func(msgs []models.Message) error {
		out, err := encode(docstorepb.Snapshot{RoomID: roomID, Messages: messagesToDocs(msgs)})
		if err != nil {
			return err
		}
		return stream.Send(out)
	})
	if ctx.Err() != nil {
		return status.FromContextError(ctx.Err()).Err()
	}
	return s.toStatus(ctx, err)
}
