package chestv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "chest.v1.ChestService"

const (
	ChestService_Register_FullMethodName           = "/chest.v1.ChestService/Register"
	ChestService_Login_FullMethodName              = "/chest.v1.ChestService/Login"
	ChestService_Pair_FullMethodName               = "/chest.v1.ChestService/Pair"
	ChestService_PairingStatus_FullMethodName      = "/chest.v1.ChestService/PairingStatus"
	ChestService_CreateChest_FullMethodName        = "/chest.v1.ChestService/CreateChest"
	ChestService_GetActiveChest_FullMethodName     = "/chest.v1.ChestService/GetActiveChest"
	ChestService_CheckUnlockable_FullMethodName    = "/chest.v1.ChestService/CheckUnlockable"
	ChestService_SetChestStatus_FullMethodName     = "/chest.v1.ChestService/SetChestStatus"
	ChestService_OpenChest_FullMethodName          = "/chest.v1.ChestService/OpenChest"
	ChestService_FinishChest_FullMethodName        = "/chest.v1.ChestService/FinishChest"
	ChestService_ChestStats_FullMethodName         = "/chest.v1.ChestService/ChestStats"
	ChestService_ChestHistory_FullMethodName       = "/chest.v1.ChestService/ChestHistory"
	ChestService_AddChit_FullMethodName            = "/chest.v1.ChestService/AddChit"
	ChestService_ListChitsForReader_FullMethodName = "/chest.v1.ChestService/ListChitsForReader"
	ChestService_MarkChitRead_FullMethodName       = "/chest.v1.ChestService/MarkChitRead"
	ChestService_ChitStats_FullMethodName          = "/chest.v1.ChestService/ChitStats"
	ChestService_ChitHistory_FullMethodName        = "/chest.v1.ChestService/ChitHistory"
	ChestService_GetSettings_FullMethodName        = "/chest.v1.ChestService/GetSettings"
	ChestService_UpdateSettings_FullMethodName     = "/chest.v1.ChestService/UpdateSettings"
	ChestService_UpdatePreferences_FullMethodName  = "/chest.v1.ChestService/UpdatePreferences"
)

type (
	ChestService_ChestHistoryServer       = grpc.ServerStreamingServer[Chest]
	ChestService_ListChitsForReaderServer = grpc.ServerStreamingServer[Chit]
	ChestService_ChitHistoryServer        = grpc.ServerStreamingServer[ChestChits]

	ChestService_ChestHistoryClient       = grpc.ServerStreamingClient[Chest]
	ChestService_ListChitsForReaderClient = grpc.ServerStreamingClient[Chit]
	ChestService_ChitHistoryClient        = grpc.ServerStreamingClient[ChestChits]
)

// ChestServiceServer is the server API for chest.v1.ChestService.
// Implementations must embed UnimplementedChestServiceServer.
type ChestServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Pair(context.Context, *PairRequest) (*PairingStatusResponse, error)
	PairingStatus(context.Context, *PairingStatusRequest) (*PairingStatusResponse, error)
	CreateChest(context.Context, *CreateChestRequest) (*Chest, error)
	GetActiveChest(context.Context, *GetActiveChestRequest) (*GetActiveChestResponse, error)
	CheckUnlockable(context.Context, *ChestRef) (*CheckUnlockableResponse, error)
	SetChestStatus(context.Context, *SetChestStatusRequest) (*Chest, error)
	OpenChest(context.Context, *ChestRef) (*Chest, error)
	FinishChest(context.Context, *ChestRef) (*Chest, error)
	ChestStats(context.Context, *ChestRef) (*ChestStatsResponse, error)
	ChestHistory(*ChestHistoryRequest, ChestService_ChestHistoryServer) error
	AddChit(context.Context, *AddChitRequest) (*Chit, error)
	ListChitsForReader(*ChestRef, ChestService_ListChitsForReaderServer) error
	MarkChitRead(context.Context, *MarkChitReadRequest) (*MarkChitReadResponse, error)
	ChitStats(context.Context, *ChestRef) (*ChitStatsResponse, error)
	ChitHistory(*ChitHistoryRequest, ChestService_ChitHistoryServer) error
	GetSettings(context.Context, *GetSettingsRequest) (*Settings, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error)
	UpdatePreferences(context.Context, *UpdatePreferencesRequest) (*Settings, error)
	mustEmbedUnimplementedChestServiceServer()
}

// UnimplementedChestServiceServer must be embedded by implementations so that
// adding a method to the service does not break them.
type UnimplementedChestServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedChestServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedChestServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedChestServiceServer) Pair(context.Context, *PairRequest) (*PairingStatusResponse, error) {
	return nil, unimplemented("Pair")
}
func (UnimplementedChestServiceServer) PairingStatus(context.Context, *PairingStatusRequest) (*PairingStatusResponse, error) {
	return nil, unimplemented("PairingStatus")
}
func (UnimplementedChestServiceServer) CreateChest(context.Context, *CreateChestRequest) (*Chest, error) {
	return nil, unimplemented("CreateChest")
}
func (UnimplementedChestServiceServer) GetActiveChest(context.Context, *GetActiveChestRequest) (*GetActiveChestResponse, error) {
	return nil, unimplemented("GetActiveChest")
}
func (UnimplementedChestServiceServer) CheckUnlockable(context.Context, *ChestRef) (*CheckUnlockableResponse, error) {
	return nil, unimplemented("CheckUnlockable")
}
func (UnimplementedChestServiceServer) SetChestStatus(context.Context, *SetChestStatusRequest) (*Chest, error) {
	return nil, unimplemented("SetChestStatus")
}
func (UnimplementedChestServiceServer) OpenChest(context.Context, *ChestRef) (*Chest, error) {
	return nil, unimplemented("OpenChest")
}
func (UnimplementedChestServiceServer) FinishChest(context.Context, *ChestRef) (*Chest, error) {
	return nil, unimplemented("FinishChest")
}
func (UnimplementedChestServiceServer) ChestStats(context.Context, *ChestRef) (*ChestStatsResponse, error) {
	return nil, unimplemented("ChestStats")
}
func (UnimplementedChestServiceServer) ChestHistory(*ChestHistoryRequest, ChestService_ChestHistoryServer) error {
	return unimplemented("ChestHistory")
}
func (UnimplementedChestServiceServer) AddChit(context.Context, *AddChitRequest) (*Chit, error) {
	return nil, unimplemented("AddChit")
}
func (UnimplementedChestServiceServer) ListChitsForReader(*ChestRef, ChestService_ListChitsForReaderServer) error {
	return unimplemented("ListChitsForReader")
}
func (UnimplementedChestServiceServer) MarkChitRead(context.Context, *MarkChitReadRequest) (*MarkChitReadResponse, error) {
	return nil, unimplemented("MarkChitRead")
}
func (UnimplementedChestServiceServer) ChitStats(context.Context, *ChestRef) (*ChitStatsResponse, error) {
	return nil, unimplemented("ChitStats")
}
func (UnimplementedChestServiceServer) ChitHistory(*ChitHistoryRequest, ChestService_ChitHistoryServer) error {
	return unimplemented("ChitHistory")
}
func (UnimplementedChestServiceServer) GetSettings(context.Context, *GetSettingsRequest) (*Settings, error) {
	return nil, unimplemented("GetSettings")
}
func (UnimplementedChestServiceServer) UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error) {
	return nil, unimplemented("UpdateSettings")
}
func (UnimplementedChestServiceServer) UpdatePreferences(context.Context, *UpdatePreferencesRequest) (*Settings, error) {
	return nil, unimplemented("UpdatePreferences")
}
func (UnimplementedChestServiceServer) mustEmbedUnimplementedChestServiceServer() {}

// RegisterChestServiceServer registers srv on s.
func RegisterChestServiceServer(s grpc.ServiceRegistrar, srv ChestServiceServer) {
	s.RegisterService(&ChestService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Res any](fullMethod string, call func(ChestServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChestServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ChestServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// streamHandler adapts a typed server-streaming method to grpc.StreamHandler.
func streamHandler[Req, Res any](call func(ChestServiceServer, *Req, grpc.ServerStreamingServer[Res]) error) grpc.StreamHandler {
	return func(srv interface{}, stream grpc.ServerStream) error {
		in := new(Req)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return call(srv.(ChestServiceServer), in, &grpc.GenericServerStream[Req, Res]{ServerStream: stream})
	}
}

// ChestService_ServiceDesc is the grpc.ServiceDesc for chest.v1.ChestService.
var ChestService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChestServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(ChestService_Register_FullMethodName, ChestServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(ChestService_Login_FullMethodName, ChestServiceServer.Login)},
		{MethodName: "Pair", Handler: unaryHandler(ChestService_Pair_FullMethodName, ChestServiceServer.Pair)},
		{MethodName: "PairingStatus", Handler: unaryHandler(ChestService_PairingStatus_FullMethodName, ChestServiceServer.PairingStatus)},
		{MethodName: "CreateChest", Handler: unaryHandler(ChestService_CreateChest_FullMethodName, ChestServiceServer.CreateChest)},
		{MethodName: "GetActiveChest", Handler: unaryHandler(ChestService_GetActiveChest_FullMethodName, ChestServiceServer.GetActiveChest)},
		{MethodName: "CheckUnlockable", Handler: unaryHandler(ChestService_CheckUnlockable_FullMethodName, ChestServiceServer.CheckUnlockable)},
		{MethodName: "SetChestStatus", Handler: unaryHandler(ChestService_SetChestStatus_FullMethodName, ChestServiceServer.SetChestStatus)},
		{MethodName: "OpenChest", Handler: unaryHandler(ChestService_OpenChest_FullMethodName, ChestServiceServer.OpenChest)},
		{MethodName: "FinishChest", Handler: unaryHandler(ChestService_FinishChest_FullMethodName, ChestServiceServer.FinishChest)},
		{MethodName: "ChestStats", Handler: unaryHandler(ChestService_ChestStats_FullMethodName, ChestServiceServer.ChestStats)},
		{MethodName: "AddChit", Handler: unaryHandler(ChestService_AddChit_FullMethodName, ChestServiceServer.AddChit)},
		{MethodName: "MarkChitRead", Handler: unaryHandler(ChestService_MarkChitRead_FullMethodName, ChestServiceServer.MarkChitRead)},
		{MethodName: "ChitStats", Handler: unaryHandler(ChestService_ChitStats_FullMethodName, ChestServiceServer.ChitStats)},
		{MethodName: "GetSettings", Handler: unaryHandler(ChestService_GetSettings_FullMethodName, ChestServiceServer.GetSettings)},
		{MethodName: "UpdateSettings", Handler: unaryHandler(ChestService_UpdateSettings_FullMethodName, ChestServiceServer.UpdateSettings)},
		{MethodName: "UpdatePreferences", Handler: unaryHandler(ChestService_UpdatePreferences_FullMethodName, ChestServiceServer.UpdatePreferences)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ChestHistory", Handler: streamHandler(ChestServiceServer.ChestHistory), ServerStreams: true},
		{StreamName: "ListChitsForReader", Handler: streamHandler(ChestServiceServer.ListChitsForReader), ServerStreams: true},
		{StreamName: "ChitHistory", Handler: streamHandler(ChestServiceServer.ChitHistory), ServerStreams: true},
	},
	Metadata: "chest/v1/chest.proto",
}
