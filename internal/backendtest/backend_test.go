package backendtest

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/digistav-admin/internal/client"
)

func putDeduct(t *testing.T, b *Backend, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, b.URL()+"/api/auth/deduct-credits", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sessionCredits(t *testing.T, b *Backend) int {
	t.Helper()
	resp, err := http.Get(b.URL() + "/api/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u client.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
	return u.CreditsLeft
}

func TestDeduct_WholeAmount(t *testing.T) {
	b := New(t)
	b.SetMe(&client.User{ID: "u1", CreditsLeft: 10})

	resp := putDeduct(t, b, `{"userId":"u1","amount":4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(6), body["creditsLeft"])
	assert.Equal(t, 6, sessionCredits(t, b))
}

func TestDeduct_FractionalAmountRejected(t *testing.T) {
	b := New(t)
	b.SetMe(&client.User{ID: "u1", CreditsLeft: 10})

	resp := putDeduct(t, b, `{"userId":"u1","amount":2.5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 10, sessionCredits(t, b), "balance untouched")
}
