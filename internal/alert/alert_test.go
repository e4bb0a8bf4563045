package alert

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gatepass-client/internal/config"
)

func TestUnconfiguredMailerIsNoOp(t *testing.T) {
	m := NewMailer(config.AlertConfig{})
	err := m.StolenDetected(context.Background(), "asset", "a1", "Main Gate")
	require.NoError(t, err)
}

func TestBodyTemplateRenders(t *testing.T) {
	var buf strings.Builder
	err := bodyTemplate.Execute(&buf, map[string]string{
		"Subject":    "vehicle",
		"Detail":     "KAA 123X",
		"Location":   "Main Gate",
		"DetectedAt": "Mon, 31 Aug 2026 09:00:00 EAT",
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "KAA 123X")
	require.Contains(t, buf.String(), "Main Gate")
}

func TestInvalidSenderRejected(t *testing.T) {
	m := NewMailer(config.AlertConfig{
		Host: "localhost",
		From: "not-an-address",
		To:   []string{"security@example.edu"},
	})
	err := m.StolenDetected(context.Background(), "asset", "a1", "Main Gate")
	require.Error(t, err)
}
