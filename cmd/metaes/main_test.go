package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	path := writeFile(t, "metaes.yaml", "trace: true\ncolor: never\nlog_level: debug\nundeclared_assignment: global\n")
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Trace)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, "global", cfg.UndeclaredAssignment)
	assert.False(t, cfg.DumpAST)

	for _, bad := range []string{"color: sometimes\n", "undeclared_assignment: nowhere\n", "log_level: loud\n", "trace: [\n"} {
		_, err = loadConfig(writeFile(t, "bad.yaml", bad))
		assert.Error(t, err, bad)
	}
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunSource(t *testing.T) {
	var stdout, stderr bytes.Buffer
	src := writeFile(t, "main.js", "let total = 0;\nfor (const x of [1, 2, 3]) { total += x }\ntotal")
	require.NoError(t, run([]string{src}, &stdout, &stderr))
	assert.Equal(t, "6\n", stdout.String())
	assert.Contains(t, stderr.String(), "script evaluated")

	stdout.Reset()
	require.NoError(t, run([]string{writeFile(t, "print.js", "console.log('hi', 1)")}, &stdout, &stderr))
	assert.Equal(t, "hi 1\n", stdout.String())
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	conf := writeFile(t, "metaes.yaml", "undeclared_assignment: error\n")
	src := writeFile(t, "main.js", "created = 2; created * 2")

	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"-config", conf, src}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"-config", conf, "-undeclared", "global", "-trace", "-color", "never", src}, &stdout, &stderr))
	assert.Equal(t, "4\n", stdout.String())
	assert.Contains(t, stderr.String(), "enter Program")
}

func TestRunESTreeJSON(t *testing.T) {
	doc := `{"type": "Program", "body": [{"type": "ExpressionStatement",
		"expression": {"type": "BinaryExpression", "operator": "+",
			"left": {"type": "Literal", "value": 40}, "right": {"type": "Literal", "value": 2}}}]}`
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{writeFile(t, "tree.json", doc)}, &stdout, &stderr))
	assert.Equal(t, "42\n", stdout.String())
}

func TestRunDumpAST(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-dump-ast", writeFile(t, "main.js", "answer")}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Identifier")
	assert.Contains(t, stdout.String(), "answer")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(nil, &stdout, &stderr))
	assert.Error(t, run([]string{writeFile(t, "bad.js", "1 +")}, &stdout, &stderr))
	assert.Error(t, run([]string{writeFile(t, "throw.js", "throw 'x'")}, &stdout, &stderr))
	assert.Error(t, run([]string{"-color", "sometimes", writeFile(t, "ok.js", "1")}, &stdout, &stderr))
}
