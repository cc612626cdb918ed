package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/roomview/internal/room"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func isolateCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("ROOMVIEW_GLOBAL_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("ROOMVIEW_GLOBAL_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("ROOMVIEW_LOGGING_LEVEL", "warn")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	cmd := newRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestCreatePostAndLog(t *testing.T) {
	isolateCLI(t)

	res := runCLI(t, "", "create", "general", "--as", "alice")
	require.NoError(t, res.err)
	roomID := strings.TrimSpace(res.stdout)
	require.NoError(t, room.ValidateRoomID(roomID))

	res = runCLI(t, "", "post", "hello there")
	require.NoError(t, res.err)
	require.Len(t, strings.TrimSpace(res.stdout), 26)

	res = runCLI(t, "piped line\n", "post")
	require.NoError(t, res.err)

	res = runCLI(t, "", "log")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "hello there")
	require.Contains(t, res.stdout, "piped line")
	require.Contains(t, res.stdout, `created the room "general"`)
	require.Contains(t, res.stdout, "@alice:local")
	require.Contains(t, res.stderr, "next: s1")

	res = runCLI(t, "", "log", "--json", "--limit", "1")
	require.NoError(t, res.err)
	var page room.Page
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &page))
	require.Len(t, page.Events, 1)
	require.Equal(t, "piped line", page.Events[0].Body)
	require.Equal(t, "s5", page.Start)
	require.Equal(t, "s4", page.End)

	res = runCLI(t, "", "log", "--forward", "--from", "s4", "--json")
	require.NoError(t, res.err)
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &page))
	require.Len(t, page.Events, 1)
	require.Equal(t, "piped line", page.Events[0].Body)
}

func TestJoinSwitchesContext(t *testing.T) {
	isolateCLI(t)

	res := runCLI(t, "", "create", "general", "--as", "alice")
	require.NoError(t, res.err)

	res = runCLI(t, "", "join", "general", "--as", "bob", "--name", "Bobby")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "@bob:local joined general")

	res = runCLI(t, "", "context")
	require.NoError(t, res.err)
	require.Equal(t, "room:general user:@bob:local", strings.TrimSpace(res.stdout))

	res = runCLI(t, "", "log", "--limit", "1")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "joined the room")

	res = runCLI(t, "", "rooms")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "general")
	require.Contains(t, res.stdout, "@alice:local")

	res = runCLI(t, "", "leave")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "@bob:local left general")

	res = runCLI(t, "", "context", "--clear")
	require.NoError(t, res.err)
	res = runCLI(t, "", "context")
	require.NoError(t, res.err)
	require.Equal(t, "(no context set)", strings.TrimSpace(res.stdout))
}

func TestCommandErrors(t *testing.T) {
	isolateCLI(t)

	res := runCLI(t, "", "post", "hi", "--as", "alice")
	require.ErrorContains(t, res.err, "no room selected")

	res = runCLI(t, "", "post", "hi")
	require.ErrorContains(t, res.err, "no user set")

	res = runCLI(t, "", "create", "general")
	require.ErrorContains(t, res.err, "no user set")

	res = runCLI(t, "", "log", "--room", "missing")
	require.ErrorIs(t, res.err, room.ErrRoomNotFound)

	res = runCLI(t, "", "rooms", "--source", "postgres")
	require.ErrorContains(t, res.err, "source.kind")

	res = runCLI(t, "", "view", "--room", "general")
	require.ErrorContains(t, res.err, "interactive terminal")
}

func TestRoomNameMustBeUnique(t *testing.T) {
	isolateCLI(t)

	require.NoError(t, runCLI(t, "", "create", "dup", "--as", "alice").err)
	require.NoError(t, runCLI(t, "", "create", "dup", "--as", "alice").err)

	res := runCLI(t, "", "log", "--room", "dup")
	require.ErrorContains(t, res.err, "ambiguous")
}
