package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// lineFor returns the whitespace-split fields of the output line starting
// with prefix.
func lineFor(t *testing.T, out, prefix string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.Fields(line)
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", prefix, out)
	return nil
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "missal", cmd.Use)

	for _, name := range []string{"year", "anchors", "find", "rules"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	sub, _, err := cmd.Find([]string{"rules", "validate"})
	require.NoError(t, err)
	assert.Equal(t, "validate", sub.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("rules"))
}

func TestInvalidFormat(t *testing.T) {
	_, stderr, err := execute(t, "--format", "xml", "anchors", "2008")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "invalid format")
}

func TestYearCommand_Text(t *testing.T) {
	out, _, err := execute(t, "year", "2008")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 366)

	assert.Equal(t, []string{"2008-03-23", "Sunday", "dom_resurrectionis:1"}, lineFor(t, out, "2008-03-23"))
	assert.Equal(t, []string{"2008-12-28", "Sunday", "dom_octavam_nativitatis:2", "12_28.ss_innocentium:2"}, lineFor(t, out, "2008-12-28"))
	assert.Equal(t, []string{"2008-01-03", "Thursday"}, lineFor(t, out, "2008-01-03"))
}

func TestYearCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "year", "2009")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Year int `json:"year"`
			Days []struct {
				Date        string   `json:"date"`
				Identifiers []string `json:"identifiers"`
			} `json:"days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2009, resp.Data.Year)
	assert.Len(t, resp.Data.Days, 365)
}

func TestYearCommand_BadYear(t *testing.T) {
	for _, arg := range []string{"abc", "1400"} {
		_, stderr, err := execute(t, "year", arg)
		require.Error(t, err, arg)
		assert.Equal(t, ExitCommandError, GetExitCode(err), arg)
		assert.Contains(t, stderr, "invalid year", arg)
	}
}

func TestYearCommand_Verbose(t *testing.T) {
	_, stderr, err := execute(t, "-v", "year", "2008")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Built 2008: 366 days")
}

func TestYearCommand_MissingRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	for _, args := range [][]string{
		{"--rules", path, "year", "2008"},
		{"--rules", path, "find", "dom_adventus_1", "--year", "2008"},
	} {
		_, stderr, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
		assert.Contains(t, stderr, "Error: load rules: read rules file", args)
		assert.NotContains(t, stderr, "load rules: load rules", args)
	}
}

func TestAnchorsCommand(t *testing.T) {
	out, _, err := execute(t, "anchors", "2008")
	require.NoError(t, err)

	assert.Equal(t, []string{"easter", "2008-03-23", "Sunday"}, lineFor(t, out, "easter"))
	assert.Equal(t, []string{"advent_sunday", "2008-11-30", "Sunday"}, lineFor(t, out, "advent_sunday"))

	out, _, err = execute(t, "anchors", "2022")
	require.NoError(t, err)
	assert.Equal(t, []string{"octave_of_christmas_sunday", "-"}, lineFor(t, out, "octave_of_christmas_sunday"))
}

func TestAnchorsCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "anchors", "2024")
	require.NoError(t, err)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "2024-03-31", resp.Data["easter"])
	assert.Equal(t, "2024-12-29", resp.Data["octave_of_christmas_sunday"])
}

func TestFindCommand(t *testing.T) {
	out, _, err := execute(t, "find", "dom_adventus_1", "--year", "2008")
	require.NoError(t, err)
	assert.Equal(t, []string{"2008-11-30", "Sunday", "dom_adventus_1:1", "11_30.andreae:2"}, lineFor(t, out, "2008-11-30"))
}

func TestFindCommand_NotFound(t *testing.T) {
	_, stderr, err := execute(t, "find", "dom_post_pentecost_23", "--year", "2038")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "not found")

	out, _, err := execute(t, "--format", "json", "find", "no_such_day", "--year", "2008")
	require.Error(t, err)
	assert.Contains(t, out, `"status": "error"`)
}

func TestRulesValidate(t *testing.T) {
	out, _, err := execute(t, "rules", "validate", "--from", "2008", "--to", "2010")
	require.NoError(t, err)
	assert.Contains(t, out, "Rules valid: embedded:missal1962.yaml")
	assert.Equal(t, []string{"resurrectionis", "280"}, lineFor(t, out, "  resurrectionis"))
	assert.Contains(t, out, "Built 2008 through 2010")
}

func TestRulesValidate_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocks: {}\n"), 0o644))

	_, stderr, err := execute(t, "--rules", path, "rules", "validate")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "is missing")
}

func TestRulesValidate_BadRange(t *testing.T) {
	_, _, err := execute(t, "rules", "validate", "--from", "2010", "--to", "2008")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
}
