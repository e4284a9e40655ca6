package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileID is a compact identity for a file within one engine session.
// IDs are assigned on first observation and never reused.
type FileID uint32

// InvalidFileID marks "no file".
const InvalidFileID FileID = 0

// Dialect selects the grammar used to parse a file.
type Dialect uint8

const (
	DialectUnknown Dialect = iota
	DialectPHP
	DialectBlade
)

func (d Dialect) String() string {
	switch d {
	case DialectPHP:
		return "php"
	case DialectBlade:
		return "blade"
	default:
		return "unknown"
	}
}

// DialectForPath picks the dialect from a file path. Blade templates use the
// compound ".blade.php" suffix, so the check must run before the plain ".php"
// extension check.
func DialectForPath(path string) Dialect {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".blade.php") {
		return DialectBlade
	}
	switch filepath.Ext(name) {
	case ".php", ".phtml":
		return DialectPHP
	}
	return DialectUnknown
}

// Span is a half-open byte range plus its line/column projection.
// Rows and columns are zero-based; EndCol points one past the last character.
type Span struct {
	StartByte uint
	EndByte   uint
	Row       uint
	Col       uint
	EndRow    uint
	EndCol    uint
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Row+1, s.Col+1)
}

// Contains reports whether the zero-based position (row, col) falls inside
// the span.
func (s Span) Contains(row, col uint) bool {
	if row < s.Row || row > s.EndRow {
		return false
	}
	if row == s.Row && col < s.Col {
		return false
	}
	if row == s.EndRow && col >= s.EndCol {
		return false
	}
	return true
}
