package main

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

// caller returns the authenticated claims injected by the auth interceptor.
func caller(ctx context.Context) (*auth.Claims, error) {
	claims, ok := getClaimsFromContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing auth claims")
	}
	return claims, nil
}

// Register creates an identity and returns a JWT for it.
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	gender, _ := data.ParseGender(req.GetGender())
	ident, err := s.svc.Register(ctx, req.GetUsername(), req.GetPassword(), gender)
	if err != nil {
		return nil, toStatus(s.log, "Register", err)
	}
	return s.issueToken(ident)
}

// Login authenticates an identity and returns a JWT.
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	ident, err := s.svc.Authenticate(ctx, req.GetUsername(), req.GetPassword())
	if err != nil {
		return nil, toStatus(s.log, "Login", err)
	}
	return s.issueToken(ident)
}

func (s *Server) issueToken(ident *data.Identity) (*v1.AuthResponse, error) {
	token, expiresAt, err := s.auth.GenerateToken(ident.ID, ident.Username)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	return &v1.AuthResponse{
		Token:     token,
		UserId:    ident.ID,
		Username:  ident.Username,
		ExpiresAt: timestamppb.New(expiresAt),
	}, nil
}

// Pair links the caller with the named partner and returns the resulting status.
func (s *Server) Pair(ctx context.Context, req *v1.PairRequest) (*v1.PairingStatusResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.svc.Pair(ctx, claims.UserID, req.GetPartnerUsername()); err != nil {
		return nil, toStatus(s.log, "Pair", err)
	}
	st, err := s.svc.PairingStatus(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "Pair", err)
	}
	return pairingToProto(st), nil
}

func (s *Server) PairingStatus(ctx context.Context, _ *v1.PairingStatusRequest) (*v1.PairingStatusResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.PairingStatus(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "PairingStatus", err)
	}
	return pairingToProto(st), nil
}

// CreateChest starts a chest with the caller's partner. A zero duration uses
// the caller's settings.
func (s *Server) CreateChest(ctx context.Context, req *v1.CreateChestRequest) (*v1.Chest, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.StartChest(ctx, claims.UserID, int(req.GetDurationDays()))
	if err != nil {
		return nil, toStatus(s.log, "CreateChest", err)
	}
	return s.chestToProto(c), nil
}

// GetActiveChest returns the live chest of the caller's pair; Chest is empty
// when there is none.
func (s *Server) GetActiveChest(ctx context.Context, _ *v1.GetActiveChestRequest) (*v1.GetActiveChestResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	partner, err := s.svc.Partner(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "GetActiveChest", err)
	}
	c, err := s.svc.ActiveChest(ctx, claims.UserID, partner.ID)
	if err != nil {
		return nil, toStatus(s.log, "GetActiveChest", err)
	}
	return &v1.GetActiveChestResponse{Chest: s.chestToProto(c)}, nil
}

func (s *Server) CheckUnlockable(ctx context.Context, req *v1.ChestRef) (*v1.CheckUnlockableResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.svc.GetChest(ctx, req.GetChestId(), claims.UserID); err != nil {
		return nil, toStatus(s.log, "CheckUnlockable", err)
	}
	res, err := s.svc.CheckUnlockable(ctx, req.GetChestId())
	if err != nil {
		return nil, toStatus(s.log, "CheckUnlockable", err)
	}
	return &v1.CheckUnlockableResponse{
		IsUnlockable:  res.IsUnlockable,
		DaysRemaining: int32(res.DaysRemaining),
		UnlockAt:      timestamppb.New(res.UnlockAt),
		Status:        string(res.Status),
	}, nil
}

func (s *Server) SetChestStatus(ctx context.Context, req *v1.SetChestStatusRequest) (*v1.Chest, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.svc.GetChest(ctx, req.GetChestId(), claims.UserID); err != nil {
		return nil, toStatus(s.log, "SetChestStatus", err)
	}
	to, _ := data.ParseChestStatus(req.GetStatus())
	c, err := s.svc.SetChestStatus(ctx, req.GetChestId(), to)
	if err != nil {
		return nil, toStatus(s.log, "SetChestStatus", err)
	}
	return s.chestToProto(c), nil
}

func (s *Server) OpenChest(ctx context.Context, req *v1.ChestRef) (*v1.Chest, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.OpenChest(ctx, req.GetChestId(), claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "OpenChest", err)
	}
	return s.chestToProto(c), nil
}

func (s *Server) FinishChest(ctx context.Context, req *v1.ChestRef) (*v1.Chest, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.FinishChest(ctx, req.GetChestId(), claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "FinishChest", err)
	}
	return s.chestToProto(c), nil
}

func (s *Server) ChestStats(ctx context.Context, req *v1.ChestRef) (*v1.ChestStatsResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.ChestStats(ctx, req.GetChestId(), claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "ChestStats", err)
	}
	return &v1.ChestStatsResponse{
		ChestId:       st.Chest.ID,
		Status:        string(st.Chest.Status),
		TotalChits:    st.TotalChits,
		ChitsByAuthor: countsToProto(st.ChitsByAuthor),
		TotalRead:     st.TotalRead,
		DaysRemaining: int32(st.DaysRemaining),
	}, nil
}

// ChestHistory streams every chest of the caller, newest first.
func (s *Server) ChestHistory(_ *v1.ChestHistoryRequest, stream v1.ChestService_ChestHistoryServer) error {
	claims, err := caller(stream.Context())
	if err != nil {
		return err
	}
	chests, err := s.svc.ChestHistory(stream.Context(), claims.UserID)
	if err != nil {
		return toStatus(s.log, "ChestHistory", err)
	}
	for _, c := range chests {
		if err := stream.Send(s.chestToProto(c)); err != nil {
			return status.Errorf(codes.Internal, "failed to send chest: %v", err)
		}
	}
	return nil
}

func (s *Server) AddChit(ctx context.Context, req *v1.AddChitRequest) (*v1.Chit, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	emotion, _ := data.ParseEmotion(req.GetEmotion())
	chit, err := s.svc.AddChit(ctx, req.GetChestId(), claims.UserID, req.GetContent(), emotion)
	if err != nil {
		return nil, toStatus(s.log, "AddChit", err)
	}
	return chitToProto(chit), nil
}

// ListChitsForReader streams the partner's chits of an unlocked chest. Nothing
// is sent while the chest is still locked.
func (s *Server) ListChitsForReader(req *v1.ChestRef, stream v1.ChestService_ListChitsForReaderServer) error {
	claims, err := caller(stream.Context())
	if err != nil {
		return err
	}
	chits, err := s.svc.ListChitsForReader(stream.Context(), req.GetChestId(), claims.UserID)
	if err != nil {
		return toStatus(s.log, "ListChitsForReader", err)
	}
	for _, c := range chits {
		if err := stream.Send(chitToProto(c)); err != nil {
			return status.Errorf(codes.Internal, "failed to send chit: %v", err)
		}
	}
	return nil
}

func (s *Server) MarkChitRead(ctx context.Context, req *v1.MarkChitReadRequest) (*v1.MarkChitReadResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.svc.MarkChitRead(ctx, req.GetChestId(), req.GetChitId(), claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "MarkChitRead", err)
	}
	return &v1.MarkChitReadResponse{
		ChitId:      r.ChitID,
		ReadAt:      timestamppb.New(r.ReadAt),
		ChestStatus: string(r.ChestStatus),
		FirstRead:   r.FirstRead,
	}, nil
}

func (s *Server) ChitStats(ctx context.Context, req *v1.ChestRef) (*v1.ChitStatsResponse, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.ChitStats(ctx, req.GetChestId(), claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "ChitStats", err)
	}
	return &v1.ChitStatsResponse{
		ChestId:       st.ChestID,
		Status:        string(st.Status),
		TotalChits:    int32(st.TotalChits),
		ReadChits:     int32(st.ReadChits),
		UnreadChits:   int32(st.UnreadChits),
		MyChits:       int32(st.MyChits),
		EmotionCounts: emotionCountsToProto(st.EmotionCounts),
		Progress:      st.Progress,
		DaysRemaining: int32(st.DaysRemaining),
	}, nil
}

// ChitHistory streams, per unlocked chest, the chits the partner wrote to the caller.
func (s *Server) ChitHistory(_ *v1.ChitHistoryRequest, stream v1.ChestService_ChitHistoryServer) error {
	claims, err := caller(stream.Context())
	if err != nil {
		return err
	}
	groups, err := s.svc.ChitHistory(stream.Context(), claims.UserID)
	if err != nil {
		return toStatus(s.log, "ChitHistory", err)
	}
	for _, g := range groups {
		out := &v1.ChestChits{
			Chest:     s.chestToProto(g.Chest),
			PartnerId: g.PartnerID,
			Chits:     make([]*v1.Chit, 0, len(g.Chits)),
		}
		for _, c := range g.Chits {
			out.Chits = append(out.Chits, chitToProto(c))
		}
		if err := stream.Send(out); err != nil {
			return status.Errorf(codes.Internal, "failed to send chest chits: %v", err)
		}
	}
	return nil
}

func (s *Server) GetSettings(ctx context.Context, _ *v1.GetSettingsRequest) (*v1.Settings, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.GetSettings(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "GetSettings", err)
	}
	access, err := s.svc.CanEditSettings(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "GetSettings", err)
	}
	return settingsToProto(st, access), nil
}

// UpdateSettings stores a new default chest duration. Rejected while the pair
// has an active or unlockable chest.
func (s *Server) UpdateSettings(ctx context.Context, req *v1.UpdateSettingsRequest) (*v1.Settings, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.UpdateSettings(ctx, claims.UserID, int(req.GetChestDurationDays()))
	if err != nil {
		return nil, toStatus(s.log, "UpdateSettings", err)
	}
	return settingsToProto(st, &service.SettingsAccess{CanEdit: true}), nil
}

// UpdatePreferences changes notification, sound and theme preferences. They
// stay editable while a chest is live.
func (s *Server) UpdatePreferences(ctx context.Context, req *v1.UpdatePreferencesRequest) (*v1.Settings, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.svc.UpdatePreferences(ctx, claims.UserID, service.Preferences{
		NotificationsEnabled: req.NotificationsEnabled,
		SoundEnabled:         req.SoundEnabled,
		Theme:                req.GetTheme(),
	})
	if err != nil {
		return nil, toStatus(s.log, "UpdatePreferences", err)
	}
	access, err := s.svc.CanEditSettings(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(s.log, "UpdatePreferences", err)
	}
	return settingsToProto(st, access), nil
}
