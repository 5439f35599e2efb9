package data

import (
	"strings"
	"time"
)

// Gender is the closed set of identity genders used by the pairing rules.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender normalizes s and returns the matching Gender.
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	return g, g.Valid()
}

// ChestStatus is the lifecycle state of a chest. Transitions only move forward.
type ChestStatus string

const (
	StatusActive     ChestStatus = "active"
	StatusUnlockable ChestStatus = "unlockable"
	StatusOpened     ChestStatus = "opened"
	StatusCompleted  ChestStatus = "completed"
)

// statusOrder gives each status its position in the forward-only state machine.
var statusOrder = map[ChestStatus]int{
	StatusActive:     0,
	StatusUnlockable: 1,
	StatusOpened:     2,
	StatusCompleted:  3,
}

// Valid reports whether s is a known status.
func (s ChestStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Live reports whether a chest in this status still blocks a new chest for the pair.
func (s ChestStatus) Live() bool {
	return s == StatusActive || s == StatusUnlockable || s == StatusOpened
}

// Next returns the single status reachable from s, or false when s is terminal.
func (s ChestStatus) Next() (ChestStatus, bool) {
	switch s {
	case StatusActive:
		return StatusUnlockable, true
	case StatusUnlockable:
		return StatusOpened, true
	case StatusOpened:
		return StatusCompleted, true
	}
	return "", false
}

// AtLeast reports whether s is at or beyond other in the lifecycle.
func (s ChestStatus) AtLeast(other ChestStatus) bool {
	return statusOrder[s] >= statusOrder[other]
}

// ParseChestStatus returns the status named by s.
func ParseChestStatus(s string) (ChestStatus, bool) {
	st := ChestStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Emotion tags a chit.
type Emotion string

const (
	EmotionAngry        Emotion = "angry"
	EmotionSad          Emotion = "sad"
	EmotionDisappointed Emotion = "disappointed"
	EmotionGrateful     Emotion = "grateful"
	EmotionHappy        Emotion = "happy"
)

// Emotions lists every accepted emotion in display order.
var Emotions = []Emotion{EmotionAngry, EmotionSad, EmotionDisappointed, EmotionGrateful, EmotionHappy}

// Valid reports whether e is one of Emotions.
func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if v == e {
			return true
		}
	}
	return false
}

// ParseEmotion normalizes s (trim + lower-case) and returns the matching Emotion.
func ParseEmotion(s string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	return e, e.Valid()
}

// Identity maps to the identities collection (one document per participant).
type Identity struct {
	ID        string     `bson:"_id"`
	Username  string     `bson:"username"` // normalized, unique index
	Password  string     `bson:"password"` // bcrypt hash
	Gender    Gender     `bson:"gender"`
	PairedID  string     `bson:"paired_id,omitempty"`
	PairedAt  *time.Time `bson:"paired_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

// PairingRecord maps to the pairings collection. The _id is the pair key so a pair
// can only ever have one record.
type PairingRecord struct {
	ID         string    `bson:"_id"`
	IDA        string    `bson:"id_a"`
	IDB        string    `bson:"id_b"`
	PairedAt   time.Time `bson:"paired_at"`
	Historical bool      `bson:"historical"`
	// Committed is false while the two identity writes are still in flight.
	Committed bool `bson:"committed"`
}

// Chest maps to the chests collection.
type Chest struct {
	ID      string `bson:"_id"`
	OwnerA  string `bson:"owner_a"`
	OwnerB  string `bson:"owner_b"`
	PairKey string `bson:"pair_key"`
	// LiveKey equals PairKey while the chest is live and is removed on completion.
	// A unique partial index on it enforces one live chest per pair.
	LiveKey       string      `bson:"live_key,omitempty"`
	StartAt       time.Time   `bson:"start_at"`
	UnlockAt      time.Time   `bson:"unlock_at"`
	Status        ChestStatus `bson:"status"`
	DurationUnits int         `bson:"duration_units"`
	CreatedAt     time.Time   `bson:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at"`
	OpenedAt      *time.Time  `bson:"opened_at,omitempty"`
	CompletedAt   *time.Time  `bson:"completed_at,omitempty"`
}

// HasOwner reports whether id is one of the chest owners.
func (c *Chest) HasOwner(id string) bool {
	return id != "" && (c.OwnerA == id || c.OwnerB == id)
}

// PartnerOf returns the other owner of the chest, or "" when id is not an owner.
func (c *Chest) PartnerOf(id string) string {
	switch id {
	case c.OwnerA:
		return c.OwnerB
	case c.OwnerB:
		return c.OwnerA
	}
	return ""
}

// Chit maps to the chits collection.
type Chit struct {
	ID        string     `bson:"_id"`
	ChestID   string     `bson:"chest_id"`
	AuthorID  string     `bson:"author_id"`
	Content   string     `bson:"content"`
	Emotion   Emotion    `bson:"emotion"`
	CreatedAt time.Time  `bson:"created_at"`
	IsRead    bool       `bson:"is_read"`
	ReadAt    *time.Time `bson:"read_at,omitempty"`
	ReadBy    string     `bson:"read_by,omitempty"`
}

// ChestCounters maps to the chest_counters collection (one document per chest).
type ChestCounters struct {
	ChestID           string         `bson:"_id"`
	ChitCount         int64          `bson:"chit_count"`
	ChitCountByAuthor map[string]int `bson:"chit_count_by_author,omitempty"`
	ReadCount         int64          `bson:"read_count"`
	ReadCountByReader map[string]int `bson:"read_count_by_reader,omitempty"`
}

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme normalizes s and returns the matching Theme.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	return t, t == ThemeLight || t == ThemeDark
}

// Settings maps to the settings collection, keyed by owner id. Only
// ChestDurationDays is frozen while a chest is live; the rest are preferences.
type Settings struct {
	OwnerID              string    `bson:"_id"`
	ChestDurationDays    int       `bson:"chest_duration_days"`
	NotificationsEnabled bool      `bson:"notifications_enabled"`
	SoundEnabled         bool      `bson:"sound_enabled"`
	Theme                Theme     `bson:"theme"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

const (
	// DefaultChestDurationDays is applied when an owner has never saved settings.
	DefaultChestDurationDays = 7
	DefaultTheme             = ThemeLight
)

// DefaultSettings returns the settings a new owner starts with.
func DefaultSettings(ownerID string, now time.Time) *Settings {
	return &Settings{
		OwnerID:              ownerID,
		ChestDurationDays:    DefaultChestDurationDays,
		NotificationsEnabled: true,
		SoundEnabled:         true,
		Theme:                DefaultTheme,
		UpdatedAt:            now,
	}
}

// PairKey returns the order-independent key for two identity ids.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
