package docstorepb

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestEncodeDecode_Snapshot(t *testing.T) {
	in := Snapshot{
		RoomID: "lobby",
		Messages: []MessageDoc{
			{ID: "m1", Text: "hi", Author: "ann", CreatedAt: &Timestamp{Seconds: 1_760_000_000, Nanos: 999_999_999}},
			{ID: "m2", Text: "yo", Author: "bob", ReplyTo: "m1", Deleted: true,
				CreatedAt: &Timestamp{Seconds: 1_760_000_001}, EditedAt: &Timestamp{Seconds: 1_760_000_002, Nanos: 5}},
			{ID: "m3", Text: "pending", Author: "ann"},
		},
	}

	s, err := Encode(in)
	require.NoError(t, err)

	var out Snapshot
	require.NoError(t, Decode(s, &out))

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDecode_RoomDocBytes(t *testing.T) {
	in := RoomDoc{ID: "vault", HasPasskey: true, PasskeyHash: []byte{0, 1, 2, 250}, PasskeySalt: []byte("salt")}

	s, err := Encode(in)
	require.NoError(t, err)

	var out RoomDoc
	require.NoError(t, Decode(s, &out))
	assert.Equal(t, in, out)
}

func TestEncodeDecode_TimestampKeepsFullInt64(t *testing.T) {
	in := MessageDoc{ID: "m1", Text: "far", Author: "ann", CreatedAt: &Timestamp{Seconds: 1<<62 + 1, Nanos: 7}}

	s, err := Encode(in)
	require.NoError(t, err)
	created := s.GetFields()["createdAt"].GetStructValue()
	assert.Equal(t, "4611686018427387905", created.GetFields()["seconds"].GetStringValue())

	var out MessageDoc
	require.NoError(t, Decode(s, &out))
	assert.Equal(t, in, out)
}

func TestEncode_UnsupportedValue(t *testing.T) {
	_, err := Encode(make(chan int))
	require.Error(t, err)
}

func TestDecode_NilStruct(t *testing.T) {
	var out MessageDoc
	require.NoError(t, Decode(nil, &out))
	assert.Equal(t, MessageDoc{}, out)
}

func TestDecode_TypeMismatch(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"deleted": "yes"})
	require.NoError(t, err)

	var out MessageDoc
	require.Error(t, Decode(s, &out))
}

type pingServer struct {
	UnimplementedDocStoreServer
}

func (pingServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("pong"), nil
}

func TestServiceDesc_UnaryHandler(t *testing.T) {
	var h grpc.MethodHandler
	for _, m := range DocStore_ServiceDesc.Methods {
		if m.MethodName == "Ping" {
			h = m.Handler
		}
	}
	require.NotNil(t, h)

	dec := func(v any) error { return nil }

	t.Run("without interceptor", func(t *testing.T) {
		out, err := h(pingServer{}, context.Background(), dec, nil)
		require.NoError(t, err)
		assert.Equal(t, "pong", out.(*wrapperspb.StringValue).GetValue())
	})

	t.Run("with interceptor", func(t *testing.T) {
		var gotMethod string
		ic := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			gotMethod = info.FullMethod
			return handler(ctx, req)
		}
		out, err := h(pingServer{}, context.Background(), dec, ic)
		require.NoError(t, err)
		assert.Equal(t, DocStore_Ping_FullMethodName, gotMethod)
		assert.Equal(t, "pong", out.(*wrapperspb.StringValue).GetValue())
	})
}

func TestUnimplementedDocStoreServer(t *testing.T) {
	var srv UnimplementedDocStoreServer
	_, err := srv.Append(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
