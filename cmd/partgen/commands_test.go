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

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPresets(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	assert.Equal(t, "separator\nsiding-wedge\n", out)
}

func TestScadPreset(t *testing.T) {
	out, err := run(t, "scad", "siding-wedge")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$fn=100;\n"))
	assert.Contains(t, out, "linear_extrude(")
	assert.Contains(t, out, "difference() {")
}

func TestScadUnknownPreset(t *testing.T) {
	_, err := run(t, "scad", "bookshelf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "separator, siding-wedge")
}

func TestScadScriptMatchesPreset(t *testing.T) {
	fromScript, err := run(t, "scad", "../../examples/siding-wedge.lisp")
	require.NoError(t, err)
	fromPreset, err := run(t, "scad", "siding-wedge")
	require.NoError(t, err)
	assert.Equal(t, fromPreset, fromScript)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "separator", "../../examples/faceplate.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "separator: ok")
}

func TestCheckInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := `name: bad
plate:
  width: 10
  height: 10
  thickness: 1
  corner_radius: 6
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := run(t, "check", path)
	require.Error(t, err)
}

func TestBuildScadOnly(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "build", "--scad-only", "--out", dir, "separator", "siding-wedge")
	require.NoError(t, err)
	assert.Contains(t, out, "separator: ")
	assert.FileExists(t, filepath.Join(dir, "separator.scad"))
	assert.FileExists(t, filepath.Join(dir, "siding-wedge.scad"))
	assert.NoFileExists(t, filepath.Join(dir, "separator.stl"))
}

func TestBuildWithKernel(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "openscad")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\ncp \"$3\" \"$2\"\n"), 0o755))
	dir := t.TempDir()

	_, err := run(t, "build", "--openscad", bin, "--out", dir, "separator")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "separator.stl"))
}

func TestBuildUnknownKernel(t *testing.T) {
	_, err := run(t, "build", "--kernel", "cgal", "separator")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
