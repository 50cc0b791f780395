package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/crm-authz/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCan(t *testing.T) {
	out, err := run(t, "can", "--role", "viewer", "--capability", "view_tickets")
	require.NoError(t, err)
	assert.Equal(t, "allow\n", out)

	out, err = run(t, "can", "--role", "viewer", "--capability", "create_tickets")
	require.NoError(t, err)
	assert.Equal(t, "deny\n", out)

	out, err = run(t, "can", "--role", "viewer", "--capability", "create_tickets", "--perm", "create_tickets")
	require.NoError(t, err)
	assert.Equal(t, "allow\n", out)

	_, err = run(t, "can", "--role", "wizard", "--capability", "view_tickets")
	assert.Error(t, err)

	_, err = run(t, "can", "--role", "agent", "--capability", "fly")
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	out, err := run(t, "capabilities", "--role", "manager")
	require.NoError(t, err)
	assert.Contains(t, out, "assign_leads\n")
	assert.NotContains(t, out, "delete_calls\n")
	assert.True(t, strings.HasSuffix(out, "dashboard: manager\n"))
}

func TestNormalize(t *testing.T) {
	out, err := run(t, "normalize", "--field", "priority", "--value", "urgent")
	require.NoError(t, err)
	assert.Equal(t, "high\t0\tUrgent\tknown=true\n", out)

	out, err = run(t, "normalize", "--field", "priority", "--value", "urgent", "--urgent-mode", "value")
	require.NoError(t, err)
	assert.Equal(t, "urgent\t3\tUrgent\tknown=true\n", out)

	_, err = run(t, "normalize", "--field", "color", "--value", "red")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "--user", "u1", "--org", "org1")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager("cli-secret", 5).ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "org1", claims.OrganizationID)
}
