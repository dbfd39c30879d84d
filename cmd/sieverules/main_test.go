package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodScript = `require ["fileinto"];
## Flag: |UniqueId:0|Rulename: Lists
if header :contains "list-id" "golang" {
    fileinto "Lists";
}
## Flag: |UniqueId:1|Rulename: Off
#if true {
#    discard;
#}
`

const badScript = `## Flag: |UniqueId:0|Rulename: Broken
if true {
    fileinto :bogus "Junk";
}
## Flag: |UniqueId:1|Rulename: Forward
if true {
    redirect "nobody";
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// testConfig disables the interpreter check so results only depend on the
// rule model.
func testConfig(t *testing.T, extra string) string {
	return writeFile(t, "sieverules.toml", "[sieve]\ncheck_executable = false\n"+extra)
}

func TestCheckGoodScript(t *testing.T) {
	var out bytes.Buffer
	err := runCheck([]string{"--config", testConfig(t, ""), writeFile(t, "good.sieve", goodScript)}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "OK (2 rules)")
}

func TestCheckBadScript(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, "bad.sieve", badScript)

	err := runCheck([]string{"--config", testConfig(t, ""), path}, &out)
	assert.ErrorIs(t, err, errInvalidScript)
	assert.Contains(t, out.String(), `rule "Broken"`)
	assert.Contains(t, out.String(), "unknown tag")
	assert.Contains(t, out.String(), "(warning)")
}

func TestCheckStrictWarnings(t *testing.T) {
	script := "## Flag: |UniqueId:0|Rulename: Forward\nredirect \"nobody\";\n"
	path := writeFile(t, "warn.sieve", script)
	cfgPath := testConfig(t, "")

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"--config", cfgPath, path}, &out))

	out.Reset()
	err := runCheck([]string{"--config", cfgPath, "--strict", path}, &out)
	assert.ErrorIs(t, err, errInvalidScript)
}

func TestCheckNeedsScript(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runCheck(nil, &out))
}

func TestCheckWritesMetrics(t *testing.T) {
	prom := filepath.Join(t.TempDir(), "sieverules.prom")
	cfgPath := testConfig(t, "[metrics]\nenabled = true\ntextfile = \""+prom+"\"\n")

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"--config", cfgPath, writeFile(t, "good.sieve", goodScript)}, &out))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sievefilter_rules_parsed_total")
}

func TestMetricsExportFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sieverules.log")
	prom := filepath.Join(dir, "missing", "sieverules.prom")
	cfgPath := testConfig(t, "[logging]\noutput = \""+logPath+"\"\nformat = \"json\"\n"+
		"[metrics]\nenabled = true\ntextfile = \""+prom+"\"\n")

	_, done, err := setup(cfgPath)
	require.NoError(t, err)
	done()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"ERROR"`)
	assert.Contains(t, string(data), "Failed to export metrics")
}

func TestListJSON(t *testing.T) {
	var out bytes.Buffer
	err := runList([]string{"--config", testConfig(t, ""), "--json", writeFile(t, "good.sieve", goodScript)}, &out)
	require.NoError(t, err)

	var rules []ruleSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "Lists", rules[0].Name)
	assert.Equal(t, "move", rules[0].Action)
	assert.Equal(t, []string{"fileinto"}, rules[0].Requires)
	assert.True(t, rules[0].Enabled)
	assert.Equal(t, "discard", rules[1].Action)
	assert.False(t, rules[1].Enabled)
}

func TestListTable(t *testing.T) {
	var out bytes.Buffer
	err := runList([]string{"--config", testConfig(t, ""), writeFile(t, "bad.sieve", badScript)}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "STATE")
	assert.Contains(t, out.String(), "error")
	assert.Contains(t, out.String(), "Forward")
}

func TestCapabilities(t *testing.T) {
	cfgPath := testConfig(t, "supported_extensions = [\"vacation\", \"fileinto\"]\n")

	var out bytes.Buffer
	require.NoError(t, runCapabilities([]string{"--config", cfgPath}, &out))
	assert.Equal(t, "fileinto\nvacation\n", out.String())

	out.Reset()
	require.NoError(t, runCapabilities([]string{"--config", cfgPath, "--all"}, &out))
	assert.Contains(t, out.String(), "GO-SIEVE")
	assert.Regexp(t, `vacation\s+yes\s+yes`, out.String())
	assert.Regexp(t, `reject\s+no\s+no`, out.String())
}
