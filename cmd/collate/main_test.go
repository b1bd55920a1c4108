package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestEncodeDecode(t *testing.T) {
	out, _, code := runCLI(t, "null\n\n\"foo\"\n[1,true]\n", "encode")
	require.Equal(t, 0, code)
	assert.Equal(t, "\"1\\x00\"\n\"4foo\\x00\"\n\"5323241\\x0021\\x00\\x00\"\n", out)

	back, _, code := runCLI(t, out, "decode")
	require.Equal(t, 0, code)
	assert.Equal(t, "null\n\"foo\"\n[1,true]\n", back)

	out, _, code = runCLI(t, `{"b":1,"a":"x"}`, "encode", "--hex")
	require.Equal(t, 0, code)
	back, _, code = runCLI(t, out, "decode", "--hex")
	require.Equal(t, 0, code)
	assert.Equal(t, "{\"b\":1,\"a\":\"x\"}\n", back)
}

func TestDecodeMalformed(t *testing.T) {
	_, stderr, code := runCLI(t, `"7\x00"`, "decode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "line 1")
	assert.Contains(t, stderr, "malformed encoding")
}

func TestNumkey(t *testing.T) {
	out, _, code := runCLI(t, "", "numkey", "67", "-1", "0")
	require.Equal(t, 0, code)
	assert.Equal(t, "23256.70000000000000017764\n03249\n1\n", out)

	_, _, code = runCLI(t, "", "numkey", "abc")
	assert.Equal(t, 1, code)
	_, _, code = runCLI(t, "", "numkey", "NaN")
	assert.Equal(t, 1, code)
	_, _, code = runCLI(t, "", "numkey")
	assert.Equal(t, 2, code)
}

func TestCompare(t *testing.T) {
	out, _, code := runCLI(t, "", "compare", `"a"`, `[]`)
	require.Equal(t, 0, code)
	assert.Equal(t, "-1\n", out)

	out, _, _ = runCLI(t, "", "compare", `{"a":1}`, `{"a":1.0}`)
	assert.Equal(t, "0\n", out)
}

func TestSortAndDump(t *testing.T) {
	input := strings.Join([]string{`"b"`, `10`, `null`, `[1]`, `true`, `2`, `"a"`, `{}`, `2.0`}, "\n")
	out, _, code := runCLI(t, input, "sort")
	require.Equal(t, 0, code)
	assert.Equal(t, "null\ntrue\n2\n2\n10\n\"a\"\n\"b\"\n[1]\n{}\n", out)

	keyfilePath := filepath.Join(t.TempDir(), "keys.ckf")
	out, _, code = runCLI(t, input, "sort", "--dedup", "--out", keyfilePath)
	require.Equal(t, 0, code)
	assert.Equal(t, "null\ntrue\n2\n10\n\"a\"\n\"b\"\n[1]\n{}\n", out)

	dumped, _, code := runCLI(t, "", "dump", keyfilePath)
	require.Equal(t, 0, code)
	assert.Equal(t, out, dumped)
}

func TestSortWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "collate.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("keyset:\n  workers: 2\nkeyfile:\n  compress: true\n  min_compress_size: 8\n"), 0o644))

	long := `"` + strings.Repeat("mozilla ", 50) + `"`
	keyfilePath := filepath.Join(dir, "keys.ckf")
	out, _, code := runCLI(t, long+"\n1\n", "--config", cfg, "sort", "--out", keyfilePath)
	require.Equal(t, 0, code)

	dumped, _, code := runCLI(t, "", "--config", cfg, "dump", keyfilePath)
	require.Equal(t, 0, code)
	assert.Equal(t, out, dumped)
}

func TestUsage(t *testing.T) {
	_, stderr, code := runCLI(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: collate")

	_, stderr, code = runCLI(t, "", "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command")

	_, _, code = runCLI(t, "", "compare", "1")
	assert.Equal(t, 2, code)

	out, _, code := runCLI(t, "", "version")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "collate "+version))
}
