package service_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"barberbot/service"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")

	ts := &service.TokenService{}
	td, err := ts.CreateToken(7, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)
	require.NotEmpty(t, td.AccessUUID)

	req, err := http.NewRequest(http.MethodGet, "/v1/conversations", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+td.AccessToken)

	details, err := ts.ExtractTokenMetadata(req)
	require.NoError(t, err)
	require.EqualValues(t, 7, details.UserID)
	require.Equal(t, "alice", details.UserName)
	require.Equal(t, td.AccessUUID, details.AccessUUID)
}

func TestTokenRejectsGarbage(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")

	ts := &service.TokenService{}
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")

	_, err = ts.ExtractTokenMetadata(req)
	require.Error(t, err)
}
