// Package chestv1 defines the chest.v1.ChestService gRPC API: request and
// response messages, the service descriptor, and a client. Messages travel as
// JSON through the codec registered in codec.go.
package chestv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ===== AUTH =====

type RegisterRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

func (x *RegisterRequest) GetUsername() string {
	if x != nil {
		return x.Username
	}
	return ""
}

func (x *RegisterRequest) GetPassword() string {
	if x != nil {
		return x.Password
	}
	return ""
}

func (x *RegisterRequest) GetGender() string {
	if x != nil {
		return x.Gender
	}
	return ""
}

type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (x *LoginRequest) GetUsername() string {
	if x != nil {
		return x.Username
	}
	return ""
}

func (x *LoginRequest) GetPassword() string {
	if x != nil {
		return x.Password
	}
	return ""
}

type AuthResponse struct {
	Token     string                 `json:"token,omitempty"`
	UserId    string                 `json:"user_id,omitempty"`
	Username  string                 `json:"username,omitempty"`
	ExpiresAt *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

func (x *AuthResponse) GetToken() string {
	if x != nil {
		return x.Token
	}
	return ""
}

func (x *AuthResponse) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *AuthResponse) GetUsername() string {
	if x != nil {
		return x.Username
	}
	return ""
}

func (x *AuthResponse) GetExpiresAt() *timestamppb.Timestamp {
	if x != nil {
		return x.ExpiresAt
	}
	return nil
}

// ===== PAIRING =====

type PairRequest struct {
	PartnerUsername string `json:"partner_username,omitempty"`
}

func (x *PairRequest) GetPartnerUsername() string {
	if x != nil {
		return x.PartnerUsername
	}
	return ""
}

type PairingStatusRequest struct{}

type PairingStatusResponse struct {
	IsPaired        bool                   `json:"is_paired,omitempty"`
	PartnerId       string                 `json:"partner_id,omitempty"`
	PartnerUsername string                 `json:"partner_username,omitempty"`
	PartnerGender   string                 `json:"partner_gender,omitempty"`
	PairedAt        *timestamppb.Timestamp `json:"paired_at,omitempty"`
}

func (x *PairingStatusResponse) GetIsPaired() bool {
	if x != nil {
		return x.IsPaired
	}
	return false
}

func (x *PairingStatusResponse) GetPartnerId() string {
	if x != nil {
		return x.PartnerId
	}
	return ""
}

func (x *PairingStatusResponse) GetPartnerUsername() string {
	if x != nil {
		return x.PartnerUsername
	}
	return ""
}

// ===== CHESTS =====

type Chest struct {
	Id            string                 `json:"id,omitempty"`
	OwnerA        string                 `json:"owner_a,omitempty"`
	OwnerB        string                 `json:"owner_b,omitempty"`
	Status        string                 `json:"status,omitempty"`
	DurationDays  int32                  `json:"duration_days,omitempty"`
	StartAt       *timestamppb.Timestamp `json:"start_at,omitempty"`
	UnlockAt      *timestamppb.Timestamp `json:"unlock_at,omitempty"`
	OpenedAt      *timestamppb.Timestamp `json:"opened_at,omitempty"`
	CompletedAt   *timestamppb.Timestamp `json:"completed_at,omitempty"`
	DaysRemaining int32                  `json:"days_remaining,omitempty"`
}

func (x *Chest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Chest) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

func (x *Chest) GetUnlockAt() *timestamppb.Timestamp {
	if x != nil {
		return x.UnlockAt
	}
	return nil
}

// ChestRef names a chest for operations that need nothing else.
type ChestRef struct {
	ChestId string `json:"chest_id,omitempty"`
}

func (x *ChestRef) GetChestId() string {
	if x != nil {
		return x.ChestId
	}
	return ""
}

type CreateChestRequest struct {
	// DurationDays of 0 uses the caller's saved settings.
	DurationDays int32 `json:"duration_days,omitempty"`
}

func (x *CreateChestRequest) GetDurationDays() int32 {
	if x != nil {
		return x.DurationDays
	}
	return 0
}

type GetActiveChestRequest struct{}

type GetActiveChestResponse struct {
	// Chest is nil when the pair has no live chest.
	Chest *Chest `json:"chest,omitempty"`
}

type CheckUnlockableResponse struct {
	IsUnlockable  bool                   `json:"is_unlockable,omitempty"`
	DaysRemaining int32                  `json:"days_remaining,omitempty"`
	UnlockAt      *timestamppb.Timestamp `json:"unlock_at,omitempty"`
	Status        string                 `json:"status,omitempty"`
}

type SetChestStatusRequest struct {
	ChestId string `json:"chest_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

func (x *SetChestStatusRequest) GetChestId() string {
	if x != nil {
		return x.ChestId
	}
	return ""
}

func (x *SetChestStatusRequest) GetStatus() string {
	if x != nil {
		return x.Status
	}
	return ""
}

type ChestHistoryRequest struct{}

type ChestStatsResponse struct {
	ChestId       string           `json:"chest_id,omitempty"`
	Status        string           `json:"status,omitempty"`
	TotalChits    int64            `json:"total_chits,omitempty"`
	ChitsByAuthor map[string]int32 `json:"chits_by_author,omitempty"`
	TotalRead     int64            `json:"total_read,omitempty"`
	DaysRemaining int32            `json:"days_remaining,omitempty"`
}

// ===== CHITS =====

type Chit struct {
	Id        string                 `json:"id,omitempty"`
	ChestId   string                 `json:"chest_id,omitempty"`
	AuthorId  string                 `json:"author_id,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Emotion   string                 `json:"emotion,omitempty"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	IsRead    bool                   `json:"is_read,omitempty"`
	ReadAt    *timestamppb.Timestamp `json:"read_at,omitempty"`
	ReadBy    string                 `json:"read_by,omitempty"`
}

func (x *Chit) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Chit) GetReadBy() string {
	if x != nil {
		return x.ReadBy
	}
	return ""
}

type AddChitRequest struct {
	ChestId string `json:"chest_id,omitempty"`
	Content string `json:"content,omitempty"`
	Emotion string `json:"emotion,omitempty"`
}

func (x *AddChitRequest) GetChestId() string {
	if x != nil {
		return x.ChestId
	}
	return ""
}

func (x *AddChitRequest) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

func (x *AddChitRequest) GetEmotion() string {
	if x != nil {
		return x.Emotion
	}
	return ""
}

type MarkChitReadRequest struct {
	ChestId string `json:"chest_id,omitempty"`
	ChitId  string `json:"chit_id,omitempty"`
}

func (x *MarkChitReadRequest) GetChestId() string {
	if x != nil {
		return x.ChestId
	}
	return ""
}

func (x *MarkChitReadRequest) GetChitId() string {
	if x != nil {
		return x.ChitId
	}
	return ""
}

type MarkChitReadResponse struct {
	ChitId      string                 `json:"chit_id,omitempty"`
	ReadAt      *timestamppb.Timestamp `json:"read_at,omitempty"`
	ChestStatus string                 `json:"chest_status,omitempty"`
	FirstRead   bool                   `json:"first_read,omitempty"`
}

type ChitStatsResponse struct {
	ChestId       string           `json:"chest_id,omitempty"`
	Status        string           `json:"status,omitempty"`
	TotalChits    int32            `json:"total_chits,omitempty"`
	ReadChits     int32            `json:"read_chits,omitempty"`
	UnreadChits   int32            `json:"unread_chits,omitempty"`
	MyChits       int32            `json:"my_chits,omitempty"`
	EmotionCounts map[string]int32 `json:"emotion_counts,omitempty"`
	Progress      float64          `json:"progress,omitempty"`
	DaysRemaining int32            `json:"days_remaining,omitempty"`
}

type ChitHistoryRequest struct{}

// ChestChits carries the partner chits of one unlocked chest.
type ChestChits struct {
	Chest     *Chest  `json:"chest,omitempty"`
	PartnerId string  `json:"partner_id,omitempty"`
	Chits     []*Chit `json:"chits,omitempty"`
}

// ===== SETTINGS =====

type GetSettingsRequest struct{}

type UpdateSettingsRequest struct {
	ChestDurationDays int32 `json:"chest_duration_days,omitempty"`
}

func (x *UpdateSettingsRequest) GetChestDurationDays() int32 {
	if x != nil {
		return x.ChestDurationDays
	}
	return 0
}

// UpdatePreferencesRequest leaves unset fields unchanged.
type UpdatePreferencesRequest struct {
	NotificationsEnabled *bool  `json:"notifications_enabled,omitempty"`
	SoundEnabled         *bool  `json:"sound_enabled,omitempty"`
	Theme                string `json:"theme,omitempty"`
}

func (x *UpdatePreferencesRequest) GetTheme() string {
	if x != nil {
		return x.Theme
	}
	return ""
}

// Settings of the caller. CanEdit reports whether ChestDurationDays can change;
// EditBlockedReason says why not.
type Settings struct {
	ChestDurationDays    int32                  `json:"chest_duration_days,omitempty"`
	NotificationsEnabled bool                   `json:"notifications_enabled,omitempty"`
	SoundEnabled         bool                   `json:"sound_enabled,omitempty"`
	Theme                string                 `json:"theme,omitempty"`
	CanEdit              bool                   `json:"can_edit,omitempty"`
	EditBlockedReason    string                 `json:"edit_blocked_reason,omitempty"`
	UpdatedAt            *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

func (x *Settings) GetCanEdit() bool {
	if x != nil {
		return x.CanEdit
	}
	return false
}

func (x *Settings) GetEditBlockedReason() string {
	if x != nil {
		return x.EditBlockedReason
	}
	return ""
}
