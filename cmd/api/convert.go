package main

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

func optTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func (s *Server) chestToProto(c *data.Chest) *v1.Chest {
	if c == nil {
		return nil
	}
	return &v1.Chest{
		Id:            c.ID,
		OwnerA:        c.OwnerA,
		OwnerB:        c.OwnerB,
		Status:        string(c.Status),
		DurationDays:  int32(c.DurationUnits),
		StartAt:       timestamppb.New(c.StartAt),
		UnlockAt:      timestamppb.New(c.UnlockAt),
		OpenedAt:      optTimestamp(c.OpenedAt),
		CompletedAt:   optTimestamp(c.CompletedAt),
		DaysRemaining: int32(s.svc.DaysRemaining(c)),
	}
}

func chitToProto(c *data.Chit) *v1.Chit {
	return &v1.Chit{
		Id:        c.ID,
		ChestId:   c.ChestID,
		AuthorId:  c.AuthorID,
		Content:   c.Content,
		Emotion:   string(c.Emotion),
		CreatedAt: timestamppb.New(c.CreatedAt),
		IsRead:    c.IsRead,
		ReadAt:    optTimestamp(c.ReadAt),
		ReadBy:    c.ReadBy,
	}
}

func pairingToProto(st *service.PairingStatus) *v1.PairingStatusResponse {
	if !st.IsPaired || st.Partner == nil {
		return &v1.PairingStatusResponse{}
	}
	return &v1.PairingStatusResponse{
		IsPaired:        true,
		PartnerId:       st.Partner.ID,
		PartnerUsername: st.Partner.Username,
		PartnerGender:   string(st.Partner.Gender),
		PairedAt:        timestamppb.New(st.PairedAt),
	}
}

func countsToProto(m map[string]int) map[string]int32 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int32, len(m))
	for k, v := range m {
		out[k] = int32(v)
	}
	return out
}

func emotionCountsToProto(m map[data.Emotion]int) map[string]int32 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int32, len(m))
	for k, v := range m {
		out[string(k)] = int32(v)
	}
	return out
}

func settingsToProto(st *data.Settings, access *service.SettingsAccess) *v1.Settings {
	return &v1.Settings{
		ChestDurationDays:    int32(st.ChestDurationDays),
		NotificationsEnabled: st.NotificationsEnabled,
		SoundEnabled:         st.SoundEnabled,
		Theme:                string(st.Theme),
		CanEdit:              access.CanEdit,
		EditBlockedReason:    access.Reason,
		UpdatedAt:            timestamppb.New(st.UpdatedAt),
	}
}
