package lsi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lsierrors "lsindex/src/internal/errors"
)

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestGetRangeContentsWholeFile(t *testing.T) {
	path := writeTempFile(t, "whole.txt", "line one\nline two\n")
	text, err := GetRangeContents(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func TestGetRangeContentsSubRange(t *testing.T) {
	path := writeTempFile(t, "sub.go", "package main\n\nfunc foo() {\n\treturn\n}\n")

	rng := makeRange(2, 0, 4, 1)
	text, err := GetRangeContents(path, &rng)
	require.NoError(t, err)
	assert.Equal(t, "func foo() {\n\treturn\n}", text)

	rng = makeRange(2, 5, 2, 8)
	text, err = GetRangeContents(path, &rng)
	require.NoError(t, err)
	assert.Equal(t, "foo", text)
}

func TestGetRangeContentsMultibyte(t *testing.T) {
	// Character offsets count runes, not bytes.
	path := writeTempFile(t, "utf8.txt", "héllo wörld\nsecond\n")
	rng := makeRange(0, 6, 0, 11)
	text, err := GetRangeContents(path, &rng)
	require.NoError(t, err)
	assert.Equal(t, "wörld", text)
}

func TestGetRangeContentsInvalid(t *testing.T) {
	path := writeTempFile(t, "short.txt", "only\ntwo\n")

	rng := makeRange(10, 0, 10, 1)
	_, err := GetRangeContents(path, &rng)
	assert.True(t, lsierrors.IsInvalidRangeError(err))

	rng = makeRange(0, 0, 0, 99)
	_, err = GetRangeContents(path, &rng)
	assert.True(t, lsierrors.IsInvalidRangeError(err))

	rng = makeRange(1, 2, 0, 0)
	_, err = GetRangeContents(path, &rng)
	assert.True(t, lsierrors.IsInvalidRangeError(err))
}

func TestGetRangeContentsCharacterPastLineEnd(t *testing.T) {
	// A character offset beyond the line must fail instead of spilling
	// into the following line.
	path := writeTempFile(t, "lines.txt", "ab\ncd\n")

	rng := makeRange(0, 0, 0, 3)
	_, err := GetRangeContents(path, &rng)
	assert.True(t, lsierrors.IsInvalidRangeError(err))

	// The line-end position itself is valid and addresses the newline.
	rng = makeRange(0, 2, 1, 0)
	text, err := GetRangeContents(path, &rng)
	require.NoError(t, err)
	assert.Equal(t, "\n", text)
}

func TestGetRangeContentsMissingFile(t *testing.T) {
	_, err := GetRangeContents(filepath.Join(t.TempDir(), "absent.txt"), nil)
	assert.True(t, lsierrors.IsIOError(err))
}

func TestReplaceRangeContents(t *testing.T) {
	path := writeTempFile(t, "replace.go", "package main\n\nfunc old() {}\n")

	rng := makeRange(2, 0, 2, 13)
	result, err := ReplaceRangeContents(path, rng, "func renamed() {}")
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc renamed() {}\n", result)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, result, string(onDisk))
}

func TestReplaceRangeContentsEmptyRange(t *testing.T) {
	// A zero-width range inserts without removing anything.
	path := writeTempFile(t, "insert.txt", "ab\n")
	rng := makeRange(0, 1, 0, 1)
	result, err := ReplaceRangeContents(path, rng, "XY")
	require.NoError(t, err)
	assert.Equal(t, "aXYb\n", result)
}

func TestReplaceRangeContentsInvalid(t *testing.T) {
	path := writeTempFile(t, "bad.txt", "abc\n")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	rng := makeRange(5, 0, 5, 1)
	_, err = ReplaceRangeContents(path, rng, "nope")
	assert.True(t, lsierrors.IsInvalidRangeError(err))

	// A rejected replace must leave the file untouched.
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRangeRoundTrip(t *testing.T) {
	contents := "alpha\nbeta\ngamma\n"
	path := writeTempFile(t, "round.txt", contents)

	rng := makeRange(1, 0, 1, 4)
	original, err := GetRangeContents(path, &rng)
	require.NoError(t, err)
	assert.Equal(t, "beta", original)

	result, err := ReplaceRangeContents(path, rng, original)
	require.NoError(t, err)
	assert.Equal(t, contents, result)
}
