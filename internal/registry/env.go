package registry

import (
	"os"
	"strings"

	"github.com/standardbeagle/larnav/internal/types"
)

// Env file precedence, weakest first. Later files overwrite earlier
// entries, so .env beats .env.local beats .env.example.
var envFilesByPriority = []string{".env.example", ".env.local", ".env"}

func (s *Scanner) scanEnv(snap *Snapshot) {
	for _, name := range envFilesByPriority {
		data, err := os.ReadFile(s.proj.Abs(name))
		if err != nil {
			continue
		}
		snap.Stats.FilesScanned++
		for _, entry := range parseEnvFile(name, data) {
			// Priority comes from file order, not tiers, so overwrite
			// unconditionally.
			snap.Env[entry.Name] = entry
		}
	}
}

// parseEnvFile parses dotenv content, tracking the position of each key.
// Quoting rules: single or double quotes wrap values that may contain #;
// an unquoted # starts an inline comment; empty values are legal.
func parseEnvFile(path string, data []byte) []types.Registration {
	var out []types.Registration

	var offset uint
	for row, line := range strings.Split(string(data), "\n") {
		lineStart := offset
		offset += uint(len(line)) + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		work := trimmed
		if rest, ok := strings.CutPrefix(work, "export "); ok {
			work = strings.TrimSpace(rest)
		}

		eq := strings.IndexByte(work, '=')
		if eq <= 0 {
			continue
		}

		key := strings.TrimSpace(work[:eq])
		if !validEnvKey(key) {
			continue
		}
		value := parseEnvValue(work[eq+1:])

		keyCol := uint(strings.Index(line, key))
		out = append(out, types.Registration{
			Name:  key,
			Value: value,
			Path:  path,
			Tier:  types.TierApplication,
			Span: types.Span{
				StartByte: lineStart + keyCol,
				EndByte:   lineStart + keyCol + uint(len(key)),
				Row:       uint(row),
				Col:       keyCol,
				EndRow:    uint(row),
				EndCol:    keyCol + uint(len(key)),
			},
		})
	}

	return out
}

func validEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}

func parseEnvValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	quote := raw[0]
	if quote == '"' || quote == '\'' {
		if end := strings.IndexByte(raw[1:], quote); end >= 0 {
			return raw[1 : 1+end]
		}
		// Unterminated quote: take the rest verbatim.
		return raw[1:]
	}

	// Unquoted: an inline comment starts at the first #.
	if hash := strings.IndexByte(raw, '#'); hash >= 0 {
		raw = raw[:hash]
	}
	return strings.TrimSpace(raw)
}
