package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the client with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	state := &app{}
	t.Cleanup(func() {
		assert.NoError(t, state.close())
	})

	return executeWith(t, state, args...)
}

func executeWith(t *testing.T, state *app, args ...string) (string, error) {
	t.Helper()

	rootCmd := newRootCmd(state)

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--" + flagLogDir, t.TempDir()}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConvert_TextToStdout(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "convert", "ciao")
	require.NoError(t, err)

	decoded, err := timeline.Decode([]byte(out), timeline.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "CIAO", decoded.Text)
	assert.Len(t, decoded.Events, 3)
}

func TestConvert_Raw(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "convert", "--raw", "anna")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "text: ANNA", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "nn "), "line %q", lines[2])
	assert.Equal(t, "end: 3.396", lines[4])
}

func TestConvert_FileToDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "pagina 1.txt")
	require.NoError(t, os.WriteFile(input, []byte("Costa 50€."), 0o600))

	outputDir := filepath.Join(dir, "timelines")

	out, err := execute(t, "--format", "msgpack", "--pad-silence",
		"convert", "--file", input, "--output", outputDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	data, err := os.ReadFile(filepath.Join(outputDir, "pagina_1.msgpack"))
	require.NoError(t, err)

	decoded, err := timeline.Decode(data, timeline.FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, "COSTA CINQUANTA EURO .", decoded.Text)
	assert.Equal(t, timeline.OculusSil, decoded.Events[0].VisemeID)
}

func TestConvert_InputErrors(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "convert")
	require.ErrorIs(t, err, errNoInput)

	_, err = execute(t, "convert", "--file", "a.txt", "ciao")
	require.ErrorIs(t, err, errBothInput)

	_, err = execute(t, "--format", "xml", "convert", "ciao")
	require.ErrorIs(t, err, timeline.ErrUnknownFormat)
}

func TestApp_LoggerClosedAfterFailedCommand(t *testing.T) {
	t.Parallel()

	state := &app{}

	_, err := executeWith(t, state, "convert")
	require.ErrorIs(t, err, errNoInput)

	// The failed command left the logger open for the caller to release.
	require.NotNil(t, state.log)
	require.NoError(t, state.close())
	assert.Nil(t, state.log)
	require.NoError(t, state.close(), "closing twice")
}

func TestRules(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "rules", "s")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, " 1  [SCI]#=CH", lines[0])
	assert.Equal(t, " 4  [S]=SS", lines[3])

	out, err = execute(t, "rules")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "A B C D"), "letters %q", out)

	_, err = execute(t, "rules", "ä")
	require.ErrorIs(t, err, errNoRules)
}
