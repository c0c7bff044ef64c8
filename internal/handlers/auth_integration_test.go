package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/handlers/testutil"
)

func TestAuthHandlerRegisterLoginRefreshLogout(t *testing.T) {
	env := testutil.NewEnv(t)

	register := env.Request(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "adopter@example.com",
		"name":     "Avery Adopter",
		"password": "AuthPassw0rd!",
	}, "")
	require.Equal(t, http.StatusCreated, register.Code, register.Body.String())

	login := env.Login("adopter@example.com", "AuthPassw0rd!")

	me := env.Request(http.MethodGet, "/api/auth/me", nil, login.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	meResp := testutil.DecodeResponse(t, me)
	require.True(t, meResp.Success)
	var profile testutil.UserPayload
	testutil.DecodeInto(t, meResp.Data, &profile)
	require.Equal(t, "adopter@example.com", profile.Email)
	require.Equal(t, "local", profile.AuthProvider)

	refresh := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": login.Tokens.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, refresh.Code, refresh.Body.String())

	var rotated testutil.TokenPair
	testutil.DecodeInto(t, testutil.DecodeResponse(t, refresh).Data, &rotated)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEqual(t, login.Tokens.RefreshToken, rotated.RefreshToken)

	// The pre-rotation refresh token must be rejected.
	replay := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": login.Tokens.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, replay.Code, replay.Body.String())

	logout := env.Request(http.MethodPost, "/api/auth/logout", nil, rotated.AccessToken)
	require.Equal(t, http.StatusOK, logout.Code, logout.Body.String())

	revoked := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": rotated.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, revoked.Code, revoked.Body.String())
}

func TestAuthHandlerLoginValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "not-an-email",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	decoded := testutil.DecodeResponse(t, w)
	require.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	require.Equal(t, "BAD_REQUEST", decoded.Error.Code)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("user", "AuthPassw0rd!")

	w := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    user.Email,
		"password": "WrongPassw0rd!",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	decoded := testutil.DecodeResponse(t, w)
	require.NotNil(t, decoded.Error)
	require.Equal(t, "INVALID_CREDENTIALS", decoded.Error.Code)
}
