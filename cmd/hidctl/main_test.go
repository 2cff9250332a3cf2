package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToken_RoundTrip(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"token", "--user", "hid-ana", "--jwt_secret", "k3y", "--jwt_issuer", "hid"}, &out, zap.NewNop())
	require.NoError(t, err)

	a := auth.New(auth.Config{Secret: "k3y", Issuer: "hid"}, nil, nil, nil, nil, zap.NewNop())
	claims, err := a.ParseToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "hid-ana", claims.Subject)
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"token without user", []string{"token", "--jwt_secret", "k"}},
		{"client without secret", []string{"client", "--id", "bot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{}, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
