package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_reinitialize_then_check(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("world"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	store := filepath.Join(t.TempDir(), "file_hashes.json")

	var out bytes.Buffer
	require.NoError(t, run(
		[]string{dir, "--reinitialize", "--store", store}, &out,
	))
	assert.Equal(
		t,
		"Skipping non-file: "+filepath.Join(dir, "archive")+"\n"+
			"Hashes re-initialized.\n",
		out.String(),
	)

	data, err := os.ReadFile(store)
	require.NoError(t, err)

	var stored map[string]string
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, map[string]string{
		filepath.Join(dir, "a.txt"): "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		filepath.Join(dir, "b.txt"): "486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7",
	}, stored)

	out.Reset()
	require.NoError(t, run([]string{"--store", store, dir}, &out))
	assert.Contains(t, out.String(), "No discrepancies found.\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("WORLD"), 0o600))

	out.Reset()
	require.NoError(t, run([]string{"--store", store, dir}, &out))
	assert.Contains(
		t,
		out.String(),
		"Discrepancies found in the following files:\n"+
			filepath.Join(dir, "b.txt")+"\n",
	)
	assert.NotContains(t, out.String(), filepath.Join(dir, "a.txt"))
}

func TestRun_config_file_and_flag_override(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(pa, []byte("boot\n"), 0o600))

	store := filepath.Join(t.TempDir(), "baseline.json")
	cfgPath := filepath.Join(t.TempDir(), "integrity.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"store_path: "+store+"\nformat: json\n",
	), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(
		[]string{"--config", cfgPath, "--reinitialize", pa}, &out,
	))
	assert.JSONEq(t, `{
		"reinitialized": true,
		"scanned": 1,
		"skipped": [],
		"discrepancies": [],
		"untracked": []
	}`, out.String())

	require.NoError(t, os.WriteFile(pa, []byte("tampered\n"), 0o600))

	out.Reset()
	require.NoError(t, run([]string{
		"--config", cfgPath,
		"--format", "template",
		"--template", "{status} {path}",
		pa,
	}, &out))
	assert.Equal(t, "modified "+pa+"\n", out.String())
}

func TestRun_argument_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no path", args: []string{"--reinitialize"}},
		{name: "two paths", args: []string{"a", "b"}},
		{name: "unknown flag", args: []string{"--bogus", "a"}},
		{name: "bad format", args: []string{"--format", "xml", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			err := run(tt.args, &out)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "running integrity_check")
		})
	}
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		reinit  bool
		wantErr bool
	}{
		{
			name: "flag before path",
			args: []string{"--reinitialize", "logs"},
			want: "logs", reinit: true,
		},
		{
			name: "flag after path",
			args: []string{"logs", "--reinitialize"},
			want: "logs", reinit: true,
		},
		{
			name: "dash path after terminator",
			args: []string{"--", "-odd.log"},
			want: "-odd.log",
		},
		{
			name:    "flag after terminator is positional",
			args:    []string{"--", "logs", "--reinitialize"},
			wantErr: true,
		},
		{
			name:    "terminator after path",
			args:    []string{"logs", "--", "--reinitialize"},
			wantErr: true,
		},
		{
			name: "flag then terminator",
			args: []string{"--reinitialize", "--", "--weird"},
			want: "--weird", reinit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			reinit := fs.Bool("reinitialize", false, "")

			got, err := parseArgs(fs, tt.args)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reinit, *reinit)
		})
	}
}

func TestRun_corrupt_baseline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(pa, []byte("boot\n"), 0o600))

	store := filepath.Join(t.TempDir(), "file_hashes.json")
	require.NoError(t, os.WriteFile(store, []byte("{oops"), 0o600))

	var out bytes.Buffer

	err := run([]string{"--store", store, pa}, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed snapshot record")
	assert.Empty(t, out.String())
}
