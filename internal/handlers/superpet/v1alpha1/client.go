package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// GameClient calls GameService on behalf of one player.
type GameClient struct {
	cc       grpc.ClientConnInterface
	playerID string
}

// NewGameClient creates a client that identifies itself as playerID.
func NewGameClient(cc grpc.ClientConnInterface, playerID string) *GameClient {
	return &GameClient{cc: cc, playerID: playerID}
}

// Call invokes method with fields as the request payload.
func (c *GameClient) Call(
	ctx context.Context,
	method string,
	fields map[string]interface{},
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	if c.playerID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, PlayerIDHeader, c.playerID)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
