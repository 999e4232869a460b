package extract

import "strings"

// defaultImageDir is where bare image filenames are assumed to live.
const defaultImageDir = "assets/images"

// NormalizeHeader lowercases a header cell and strips every
// non-alphanumeric rune, so superficial spelling variants ("Project IDs",
// "project_ids", "ProjectIds") land on the same alias. Normalizing twice
// changes nothing.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseIDList splits a delimited id cell on ';', ',' and newlines, trims
// each fragment, drops empties, and de-duplicates preserving first-seen
// order.
func ParseIDList(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	})
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// IsImageURL reports whether the value is an absolute, protocol-relative,
// or data URL. Such values pass through the pipeline untouched and are
// never existence-checked.
func IsImageURL(s string) bool {
	lowered := strings.ToLower(s)
	return strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		strings.HasPrefix(lowered, "//") ||
		strings.HasPrefix(lowered, "data:")
}

// NormalizeImage cleans an image cell value. URLs pass through unchanged;
// local paths lose leading "./" and "/"; a bare filename (no directory
// separator) is placed under the default images directory. Already
// normalized paths come back unchanged.
func NormalizeImage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if IsImageURL(raw) {
		return raw
	}
	cleaned := raw
	for strings.HasPrefix(cleaned, "./") {
		cleaned = cleaned[2:]
	}
	cleaned = strings.TrimLeft(cleaned, "/")
	if !strings.Contains(cleaned, "/") {
		cleaned = defaultImageDir + "/" + cleaned
	}
	return cleaned
}
