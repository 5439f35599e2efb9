package chestv1

import (
	"context"
	"io"

	"google.golang.org/grpc"
)

// ChestServiceClient is the client API for chest.v1.ChestService.
type ChestServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Pair(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*PairingStatusResponse, error)
	PairingStatus(ctx context.Context, in *PairingStatusRequest, opts ...grpc.CallOption) (*PairingStatusResponse, error)
	CreateChest(ctx context.Context, in *CreateChestRequest, opts ...grpc.CallOption) (*Chest, error)
	GetActiveChest(ctx context.Context, in *GetActiveChestRequest, opts ...grpc.CallOption) (*GetActiveChestResponse, error)
	CheckUnlockable(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*CheckUnlockableResponse, error)
	SetChestStatus(ctx context.Context, in *SetChestStatusRequest, opts ...grpc.CallOption) (*Chest, error)
	OpenChest(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*Chest, error)
	FinishChest(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*Chest, error)
	ChestStats(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*ChestStatsResponse, error)
	ChestHistory(ctx context.Context, in *ChestHistoryRequest, opts ...grpc.CallOption) (ChestService_ChestHistoryClient, error)
	AddChit(ctx context.Context, in *AddChitRequest, opts ...grpc.CallOption) (*Chit, error)
	ListChitsForReader(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (ChestService_ListChitsForReaderClient, error)
	MarkChitRead(ctx context.Context, in *MarkChitReadRequest, opts ...grpc.CallOption) (*MarkChitReadResponse, error)
	ChitStats(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*ChitStatsResponse, error)
	ChitHistory(ctx context.Context, in *ChitHistoryRequest, opts ...grpc.CallOption) (ChestService_ChitHistoryClient, error)
	GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*Settings, error)
	UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error)
	UpdatePreferences(ctx context.Context, in *UpdatePreferencesRequest, opts ...grpc.CallOption) (*Settings, error)
}

type chestServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChestServiceClient returns a client that speaks the JSON codec.
func NewChestServiceClient(cc grpc.ClientConnInterface) ChestServiceClient {
	return &chestServiceClient{cc: cc}
}

func callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func serverStream[Req, Res any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Res], error) {
	stream, err := cc.NewStream(ctx, desc, method, callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Res]{ClientStream: stream}
	// io.EOF means the server already ended the stream; Recv reports its status
	if err := x.ClientStream.SendMsg(in); err != nil && err != io.EOF {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *chestServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ChestService_Register_FullMethodName, in, opts)
}

func (c *chestServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, ChestService_Login_FullMethodName, in, opts)
}

func (c *chestServiceClient) Pair(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*PairingStatusResponse, error) {
	return invoke[PairingStatusResponse](ctx, c.cc, ChestService_Pair_FullMethodName, in, opts)
}

func (c *chestServiceClient) PairingStatus(ctx context.Context, in *PairingStatusRequest, opts ...grpc.CallOption) (*PairingStatusResponse, error) {
	return invoke[PairingStatusResponse](ctx, c.cc, ChestService_PairingStatus_FullMethodName, in, opts)
}

func (c *chestServiceClient) CreateChest(ctx context.Context, in *CreateChestRequest, opts ...grpc.CallOption) (*Chest, error) {
	return invoke[Chest](ctx, c.cc, ChestService_CreateChest_FullMethodName, in, opts)
}

func (c *chestServiceClient) GetActiveChest(ctx context.Context, in *GetActiveChestRequest, opts ...grpc.CallOption) (*GetActiveChestResponse, error) {
	return invoke[GetActiveChestResponse](ctx, c.cc, ChestService_GetActiveChest_FullMethodName, in, opts)
}

func (c *chestServiceClient) CheckUnlockable(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*CheckUnlockableResponse, error) {
	return invoke[CheckUnlockableResponse](ctx, c.cc, ChestService_CheckUnlockable_FullMethodName, in, opts)
}

func (c *chestServiceClient) SetChestStatus(ctx context.Context, in *SetChestStatusRequest, opts ...grpc.CallOption) (*Chest, error) {
	return invoke[Chest](ctx, c.cc, ChestService_SetChestStatus_FullMethodName, in, opts)
}

func (c *chestServiceClient) OpenChest(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*Chest, error) {
	return invoke[Chest](ctx, c.cc, ChestService_OpenChest_FullMethodName, in, opts)
}

func (c *chestServiceClient) FinishChest(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*Chest, error) {
	return invoke[Chest](ctx, c.cc, ChestService_FinishChest_FullMethodName, in, opts)
}

func (c *chestServiceClient) ChestStats(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*ChestStatsResponse, error) {
	return invoke[ChestStatsResponse](ctx, c.cc, ChestService_ChestStats_FullMethodName, in, opts)
}

func (c *chestServiceClient) ChestHistory(ctx context.Context, in *ChestHistoryRequest, opts ...grpc.CallOption) (ChestService_ChestHistoryClient, error) {
	return serverStream[ChestHistoryRequest, Chest](ctx, c.cc, &ChestService_ServiceDesc.Streams[0], ChestService_ChestHistory_FullMethodName, in, opts)
}

func (c *chestServiceClient) AddChit(ctx context.Context, in *AddChitRequest, opts ...grpc.CallOption) (*Chit, error) {
	return invoke[Chit](ctx, c.cc, ChestService_AddChit_FullMethodName, in, opts)
}

func (c *chestServiceClient) ListChitsForReader(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (ChestService_ListChitsForReaderClient, error) {
	return serverStream[ChestRef, Chit](ctx, c.cc, &ChestService_ServiceDesc.Streams[1], ChestService_ListChitsForReader_FullMethodName, in, opts)
}

func (c *chestServiceClient) MarkChitRead(ctx context.Context, in *MarkChitReadRequest, opts ...grpc.CallOption) (*MarkChitReadResponse, error) {
	return invoke[MarkChitReadResponse](ctx, c.cc, ChestService_MarkChitRead_FullMethodName, in, opts)
}

func (c *chestServiceClient) ChitStats(ctx context.Context, in *ChestRef, opts ...grpc.CallOption) (*ChitStatsResponse, error) {
	return invoke[ChitStatsResponse](ctx, c.cc, ChestService_ChitStats_FullMethodName, in, opts)
}

func (c *chestServiceClient) ChitHistory(ctx context.Context, in *ChitHistoryRequest, opts ...grpc.CallOption) (ChestService_ChitHistoryClient, error) {
	return serverStream[ChitHistoryRequest, ChestChits](ctx, c.cc, &ChestService_ServiceDesc.Streams[2], ChestService_ChitHistory_FullMethodName, in, opts)
}

func (c *chestServiceClient) GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, ChestService_GetSettings_FullMethodName, in, opts)
}

func (c *chestServiceClient) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, ChestService_UpdateSettings_FullMethodName, in, opts)
}

func (c *chestServiceClient) UpdatePreferences(ctx context.Context, in *UpdatePreferencesRequest, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, ChestService_UpdatePreferences_FullMethodName, in, opts)
}
