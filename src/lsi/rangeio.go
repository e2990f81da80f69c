package lsi

import (
	"fmt"
	"os"
	"strings"

	lsierrors "lsindex/src/internal/errors"

	"go.lsp.dev/protocol"
)

// Range-addressed file text access. Positions are zero-based lines plus a
// character offset counted in runes from the line start, matching the
// coordinates document symbols carry. Ranges are half-open: the end
// position is excluded.

// GetRangeContents reads the text inside rng from the file at filePath.
// A nil range selects the whole file.
func GetRangeContents(filePath string, rng *protocol.Range) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", lsierrors.NewIOError("read", filePath, err)
	}
	text := string(data)
	if rng == nil {
		return text, nil
	}

	runes := []rune(text)
	start, err := runeOffset(runes, rng.Start, filePath)
	if err != nil {
		return "", err
	}
	end, err := runeOffset(runes, rng.End, filePath)
	if err != nil {
		return "", err
	}
	if start > end {
		return "", lsierrors.NewInvalidRangeError(filePath, fmt.Sprintf("start offset %d is after end offset %d", start, end))
	}
	return string(runes[start:end]), nil
}

// ReplaceRangeContents replaces the text inside rng with newText, writes
// the result back to disk, and returns the file's full new contents. The
// caller owns re-synchronizing any index built over the old text.
func ReplaceRangeContents(filePath string, rng protocol.Range, newText string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", lsierrors.NewIOError("read", filePath, err)
	}

	runes := []rune(string(data))
	start, err := runeOffset(runes, rng.Start, filePath)
	if err != nil {
		return "", err
	}
	end, err := runeOffset(runes, rng.End, filePath)
	if err != nil {
		return "", err
	}
	if start > end {
		return "", lsierrors.NewInvalidRangeError(filePath, fmt.Sprintf("start offset %d is after end offset %d", start, end))
	}

	var sb strings.Builder
	sb.WriteString(string(runes[:start]))
	sb.WriteString(newText)
	sb.WriteString(string(runes[end:]))
	result := sb.String()

	mode := os.FileMode(0644)
	if info, statErr := os.Stat(filePath); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(filePath, []byte(result), mode); err != nil {
		return "", lsierrors.NewIOError("write", filePath, err)
	}
	return result, nil
}

// runeOffset resolves a line/character position to an absolute rune
// offset into runes
func runeOffset(runes []rune, pos protocol.Position, filePath string) (int, error) {
	i := 0
	for line := uint32(0); line < pos.Line; line++ {
		for i < len(runes) && runes[i] != '\n' {
			i++
		}
		if i == len(runes) {
			return 0, lsierrors.NewInvalidRangeError(filePath, fmt.Sprintf("line %d exceeds file line count", pos.Line))
		}
		i++ // consume the newline
	}
	lineLen := 0
	for i+lineLen < len(runes) && runes[i+lineLen] != '\n' {
		lineLen++
	}
	if int(pos.Character) > lineLen {
		return 0, lsierrors.NewInvalidRangeError(filePath, fmt.Sprintf("character %d exceeds length of line %d", pos.Character, pos.Line))
	}
	return i + int(pos.Character), nil
}
