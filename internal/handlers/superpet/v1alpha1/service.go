// Package v1alpha1 serves the superpet game over gRPC. Messages are
// google.protobuf.Struct payloads whose fields mirror the JSON shape of the
// game records.
package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "superpet.api.v1alpha1.GameService"

// PlayerIDHeader is the metadata key that identifies the calling player.
const PlayerIDHeader = "x-player-id"

// Method names.
const (
	MethodCreateCharacter   = "CreateCharacter"
	MethodListCharacters    = "ListCharacters"
	MethodSelectCharacter   = "SelectCharacter"
	MethodDeleteCharacter   = "DeleteCharacter"
	MethodGetCharacter      = "GetCharacter"
	MethodAddExp            = "AddExp"
	MethodAddGold           = "AddGold"
	MethodUseFood           = "UseFood"
	MethodEquip             = "Equip"
	MethodUnequip           = "Unequip"
	MethodGetInventory      = "GetInventory"
	MethodAddItem           = "AddItem"
	MethodSellItem          = "SellItem"
	MethodPurchase          = "Purchase"
	MethodListShop          = "ListShop"
	MethodDisassemble       = "Disassemble"
	MethodEnhance           = "Enhance"
	MethodCraft             = "Craft"
	MethodListRecipes       = "ListRecipes"
	MethodListDungeons      = "ListDungeons"
	MethodStartBattle       = "StartBattle"
	MethodTick              = "Tick"
	MethodGetBattle         = "GetBattle"
	MethodExitBattle        = "ExitBattle"
	MethodListMissions      = "ListMissions"
	MethodClaimMission      = "ClaimMission"
	MethodCollectFeedReward = "CollectFeedReward"
	MethodSyncSave          = "SyncSave"
	MethodRestoreSave       = "RestoreSave"
	MethodGetGemBalance     = "GetGemBalance"
	MethodGetRanking        = "GetRanking"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GameServer is the server API for GameService.
type GameServer interface {
	CreateCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCharacters(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCharacter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddExp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddGold(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UseFood(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Equip(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unequip(context.Context, *structpb.Struct) (*structpb.Struct, error)

	GetInventory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SellItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Purchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Disassemble(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Enhance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Craft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecipes(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ListDungeons(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExitBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ListMissions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClaimMission(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CollectFeedReward(context.Context, *structpb.Struct) (*structpb.Struct, error)

	SyncSave(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreSave(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGemBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRanking(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(GameServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv interface{},
			ctx context.Context,
			dec func(interface{}) error,
			interceptor grpc.UnaryServerInterceptor,
		) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(GameServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// GameServiceDesc is the grpc.ServiceDesc for GameService.
var GameServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodCreateCharacter, GameServer.CreateCharacter),
		methodDesc(MethodListCharacters, GameServer.ListCharacters),
		methodDesc(MethodSelectCharacter, GameServer.SelectCharacter),
		methodDesc(MethodDeleteCharacter, GameServer.DeleteCharacter),
		methodDesc(MethodGetCharacter, GameServer.GetCharacter),
		methodDesc(MethodAddExp, GameServer.AddExp),
		methodDesc(MethodAddGold, GameServer.AddGold),
		methodDesc(MethodUseFood, GameServer.UseFood),
		methodDesc(MethodEquip, GameServer.Equip),
		methodDesc(MethodUnequip, GameServer.Unequip),
		methodDesc(MethodGetInventory, GameServer.GetInventory),
		methodDesc(MethodAddItem, GameServer.AddItem),
		methodDesc(MethodSellItem, GameServer.SellItem),
		methodDesc(MethodPurchase, GameServer.Purchase),
		methodDesc(MethodListShop, GameServer.ListShop),
		methodDesc(MethodDisassemble, GameServer.Disassemble),
		methodDesc(MethodEnhance, GameServer.Enhance),
		methodDesc(MethodCraft, GameServer.Craft),
		methodDesc(MethodListRecipes, GameServer.ListRecipes),
		methodDesc(MethodListDungeons, GameServer.ListDungeons),
		methodDesc(MethodStartBattle, GameServer.StartBattle),
		methodDesc(MethodTick, GameServer.Tick),
		methodDesc(MethodGetBattle, GameServer.GetBattle),
		methodDesc(MethodExitBattle, GameServer.ExitBattle),
		methodDesc(MethodListMissions, GameServer.ListMissions),
		methodDesc(MethodClaimMission, GameServer.ClaimMission),
		methodDesc(MethodCollectFeedReward, GameServer.CollectFeedReward),
		methodDesc(MethodSyncSave, GameServer.SyncSave),
		methodDesc(MethodRestoreSave, GameServer.RestoreSave),
		methodDesc(MethodGetGemBalance, GameServer.GetGemBalance),
		methodDesc(MethodGetRanking, GameServer.GetRanking),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "superpet/api/v1alpha1/game.proto",
}

// RegisterGameServer registers srv with s.
func RegisterGameServer(s grpc.ServiceRegistrar, srv GameServer) {
	s.RegisterService(&GameServiceDesc, srv)
}
