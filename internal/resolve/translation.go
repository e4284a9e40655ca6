package resolve

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/standardbeagle/larnav/internal/types"
)

// jsonKeySpan reports whether a flat locale JSON file defines a phrase
// key, and where. The span points at the key including its quotes so an
// editor lands on the definition.
func jsonKeySpan(absPath, key string) (types.Span, bool) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return types.Span{}, false
	}

	var phrases map[string]json.RawMessage
	if err := json.Unmarshal(content, &phrases); err != nil {
		return types.Span{}, false
	}
	if _, ok := phrases[key]; !ok {
		return types.Span{}, false
	}

	quoted, err := json.Marshal(key)
	if err != nil {
		return types.Span{}, true
	}
	offset := bytes.Index(content, quoted)
	if offset < 0 {
		return types.Span{}, true
	}

	row, col := uint(0), uint(0)
	for _, b := range content[:offset] {
		if b == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return types.Span{
		StartByte: uint(offset),
		EndByte:   uint(offset + len(quoted)),
		Row:       row,
		Col:       col,
		EndRow:    row,
		EndCol:    col + uint(len(quoted)),
	}, true
}
