package envfile

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SignatureKey is the front-matter key carrying the file's ECDSA signature.
const SignatureKey = "sign"

// isFrontMatterDelim reports whether a line opens or closes the
// front-matter block.
func isFrontMatterDelim(line string) bool {
	return strings.HasPrefix(line, "# ---") || strings.HasPrefix(line, "#---")
}

func isSignatureLine(line string) bool {
	return strings.HasPrefix(line, "# "+SignatureKey+":") || strings.HasPrefix(line, "#"+SignatureKey+":")
}

// extractFrontMatter reads the fenced metadata block at the top of the
// file. Each inner line is "# key: value"; the block as a whole parses as
// YAML once the comment markers are stripped.
func extractFrontMatter(content string) map[string]string {
	metadata := map[string]string{}
	lines := splitLines(content)
	if len(lines) == 0 || !isFrontMatterDelim(lines[0]) {
		return metadata
	}
	var block []string
	for _, line := range lines[1:] {
		if isFrontMatterDelim(line) {
			break
		}
		block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, "#"), " "))
	}
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &metadata); err != nil {
		// Not YAML-shaped; fall back to plain "key: value" splitting.
		metadata = map[string]string{}
		for _, line := range block {
			if key, value, ok := strings.Cut(line, ":"); ok {
				metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return metadata
}

// Signature returns the "# sign:" value from the front-matter block.
func Signature(content string) (string, bool) {
	for _, line := range splitLines(content) {
		if isSignatureLine(line) {
			_, value, _ := strings.Cut(line, ":")
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// RemoveSignature strips any "# sign:" line. The result is the exact
// message that was signed (after trimming).
func RemoveSignature(content string) string {
	lines := splitLines(content)
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isSignatureLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	if strings.HasSuffix(content, "\n") && out != "" {
		out += "\n"
	}
	return out
}

// EnsureFrontMatter prepends an empty front-matter block when the content
// has none, so a signature always has a home inside the fence.
func EnsureFrontMatter(content string) string {
	lines := splitLines(content)
	if len(lines) > 0 && isFrontMatterDelim(lines[0]) {
		return content
	}
	return "# ---\n# ---\n\n" + content
}

// WithSignature removes any previous signature and inserts the new one
// immediately after the opening front-matter delimiter, synthesizing the
// block when the file has none. Signatures never go at the bottom of the
// file: trailing blank lines differ across editors.
func WithSignature(content, signature string) string {
	content = RemoveSignature(content)
	signLine := "# " + SignatureKey + ": " + signature
	lines := splitLines(content)
	if len(lines) > 0 && isFrontMatterDelim(lines[0]) {
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[0], signLine)
		out = append(out, lines[1:]...)
		joined := strings.Join(out, "\n")
		if strings.HasSuffix(content, "\n") {
			joined += "\n"
		}
		return joined
	}
	return "# ---\n" + signLine + "\n# ---\n\n" + content
}
