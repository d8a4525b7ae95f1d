package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/SscSPs/charity_donation_ledger/internal/core/services"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const account = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestRun_PrintsParsableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "issue-token-test")
	var out, errOut bytes.Buffer

	require.NoError(t, run([]string{"-account", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, &out, &errOut))

	token := bytes.TrimSpace(out.Bytes())
	caller, err := services.NewTokenService(config.LoadTokenConfig()).ParseAccessToken(context.Background(), string(token))
	require.NoError(t, err)
	assert.Equal(t, account, caller.String())
}

func TestRun_JSONOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-account", account, "-ttl", "2h", "-json"}, &out, &errOut))

	var body map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, account, body["account"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expiresAt"])
}

func TestRun_RequiresValidAccount(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.ErrorContains(t, run(nil, &out, &errOut), "-account is required")
	assert.Error(t, run([]string{"-account", "0x1234"}, &out, &errOut))
	assert.Empty(t, out.String())
}
