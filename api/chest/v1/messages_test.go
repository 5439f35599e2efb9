package chestv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGettersOnNilMessages(t *testing.T) {
	var auth *AuthResponse
	assert.Empty(t, auth.GetToken())
	assert.Empty(t, auth.GetUserId())
	assert.Empty(t, auth.GetUsername())
	assert.Nil(t, auth.GetExpiresAt())

	var st *PairingStatusResponse
	assert.False(t, st.GetIsPaired())
	assert.Empty(t, st.GetPartnerId())

	var chest *Chest
	assert.Empty(t, chest.GetId())
	assert.Empty(t, chest.GetStatus())

	var settings *Settings
	assert.False(t, settings.GetCanEdit())
	assert.Empty(t, settings.GetEditBlockedReason())

	resp := &AuthResponse{Token: "tok", UserId: "u1", Username: "alice"}
	assert.Equal(t, "tok", resp.GetToken())
	assert.Equal(t, "u1", resp.GetUserId())
	assert.Equal(t, "alice", resp.GetUsername())
}

func TestJSONCodecCarriesOptionalFields(t *testing.T) {
	c := jsonCodec{}
	off := false

	b, err := c.Marshal(&UpdatePreferencesRequest{SoundEnabled: &off})
	require.NoError(t, err)
	var prefs UpdatePreferencesRequest
	require.NoError(t, c.Unmarshal(b, &prefs))
	require.NotNil(t, prefs.SoundEnabled, "an explicit false survives the wire")
	assert.False(t, *prefs.SoundEnabled)
	assert.Nil(t, prefs.NotificationsEnabled)

	b, err = c.Marshal(&Chit{Id: "c1", IsRead: true, ReadBy: "bob"})
	require.NoError(t, err)
	var chit Chit
	require.NoError(t, c.Unmarshal(b, &chit))
	assert.Equal(t, "bob", chit.GetReadBy())
}
