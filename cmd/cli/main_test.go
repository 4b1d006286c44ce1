package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"corridor_dispatch/internal/auth"
	"corridor_dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunFixedTicks(t *testing.T) {
	code, out, _ := runCLI(t, "-ticks", "3")
	require.Equal(t, 0, code)

	var st models.SimState
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 3, st.Tick)
	assert.Len(t, st.Trains, 12)
}

func TestRunUntilFinishedWithAutoAccept(t *testing.T) {
	code, out, _ := runCLI(t, "-auto-accept", "-ticks", "200")
	require.Equal(t, 0, code)

	var st models.SimState
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.LessOrEqual(t, st.Tick, 200)
	for _, tv := range st.Trains {
		assert.GreaterOrEqual(t, tv.Position, 0.0)
		assert.LessOrEqual(t, tv.Position, 900.0)
	}
}

func TestRunScenario(t *testing.T) {
	code, out, _ := runCLI(t, "-scenario", "heavy-fog", "-ticks", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Heavy fog in section (scenario).")
}

func TestRunUnknownScenario(t *testing.T) {
	code, out, errOut := runCLI(t, "-scenario", "volcano")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "unknown scenario")
}

func TestTokenFor(t *testing.T) {
	t.Setenv("CORRIDOR_JWT_SECRET", "cli-secret")
	code, out, _ := runCLI(t, "-token-for", "controller-7")
	require.Equal(t, 0, code)

	op, err := auth.New("cli-secret").Verify(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, "controller-7", op)
}

func TestTokenForWithoutSecret(t *testing.T) {
	t.Setenv("CORRIDOR_JWT_SECRET", "")
	code, _, errOut := runCLI(t, "-token-for", "controller-7")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "secret required")
}

func TestBadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "-nope")
	assert.Equal(t, 2, code)
}
