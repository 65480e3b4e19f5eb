package v1alpha1

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/services/battle"
	"github.com/superpet/superpet-api/internal/services/character"
	"github.com/superpet/superpet-api/internal/services/cloud"
	"github.com/superpet/superpet-api/internal/services/inventory"
	"github.com/superpet/superpet-api/internal/services/mission"
)

// HandlerConfig holds dependencies for the game handler
type HandlerConfig struct {
	CharacterService character.Service
	InventoryService inventory.Service
	BattleService    battle.Service
	MissionService   mission.Service
	// CloudService backs the save and account calls (optional)
	CloudService cloud.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if c.CharacterService == nil {
		vb.RequiredField("CharacterService")
	}
	if c.InventoryService == nil {
		vb.RequiredField("InventoryService")
	}
	if c.BattleService == nil {
		vb.RequiredField("BattleService")
	}
	if c.MissionService == nil {
		vb.RequiredField("MissionService")
	}
	return vb.Build()
}

// Handler implements GameServer on top of the game services
type Handler struct {
	characterService character.Service
	inventoryService inventory.Service
	battleService    battle.Service
	missionService   mission.Service
	cloudService     cloud.Service
}

// NewHandler creates a new game handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		characterService: cfg.CharacterService,
		inventoryService: cfg.InventoryService,
		battleService:    cfg.BattleService,
		missionService:   cfg.MissionService,
		cloudService:     cfg.CloudService,
	}, nil
}

var _ GameServer = (*Handler)(nil)

// PlayerIDFromContext reads the calling player from incoming metadata.
func PlayerIDFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.Unauthenticated(PlayerIDHeader + " metadata is required")
	}
	for _, v := range md.Get(PlayerIDHeader) {
		if id := strings.TrimSpace(v); id != "" {
			return id, nil
		}
	}
	return "", errors.Unauthenticated(PlayerIDHeader + " metadata is required")
}

// decode copies the request payload into dst through its JSON form.
func decode(in *structpb.Struct, dst interface{}) error {
	if in == nil {
		return nil
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return errors.InvalidArgumentf("unreadable request: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.InvalidArgumentf("malformed request: %v", err)
	}
	return nil
}

// encode turns a response DTO into a Struct payload.
func encode(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	return out, nil
}

// serve runs one player-scoped call: it resolves the player, decodes Req,
// runs call and encodes its result. Every error leaves as a gRPC status.
func serve[Req any](
	ctx context.Context,
	in *structpb.Struct,
	call func(playerID string, req *Req) (interface{}, error),
) (*structpb.Struct, error) {
	playerID, err := PlayerIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	req := new(Req)
	if err := decode(in, req); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	resp, err := call(playerID, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := encode(resp)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return out, nil
}

// serveCatalog runs a call that needs no player.
func serveCatalog(call func() (interface{}, error)) (*structpb.Struct, error) {
	resp, err := call()
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := encode(resp)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return out, nil
}

type empty struct{}
