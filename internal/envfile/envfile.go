// Package envfile parses dotenv and Java-properties files into an ordered
// entry view plus a preserved-layout view, so values can be rewritten
// without disturbing comments, blank lines or ordering.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

// LineKind classifies one physical line of a dotenv file.
type LineKind int

const (
	KindBlank LineKind = iota
	KindComment
	KindEntry
	KindRaw
)

// Line is one physical line. Entry lines additionally carry the parsed key,
// the decoded value, and the text left of '=' so a rewrite can reproduce
// prefixes like "export " byte-for-byte.
type Line struct {
	Kind    LineKind
	Raw     string
	Key     string
	Value   string
	keyText string
	edited  bool
	quoted  bool
}

// Entry is a key/value pair in file order.
type Entry struct {
	Key   string
	Value string
}

// Document is the parsed form of one dotenv or properties file.
type Document struct {
	Name       string
	Path       string
	Profile    string
	Properties bool
	Metadata   map[string]string

	lines           []Line
	index           map[string]int
	trailingNewline bool
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(filepath.Base(path), string(content))
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		doc.Path = abs
	}
	return doc, nil
}

// Parse parses content under the given file name. The name selects the
// syntax (.properties vs dotenv) and the profile.
func Parse(name, content string) (*Document, error) {
	doc := &Document{
		Name:            name,
		Profile:         ProfileFromFileName(name),
		Properties:      IsProperties(name),
		Metadata:        extractFrontMatter(content),
		index:           make(map[string]int),
		trailingNewline: strings.HasSuffix(content, "\n"),
	}
	var propsValues *properties.Properties
	if doc.Properties {
		var err error
		propsValues, err = properties.LoadString(content)
		if err != nil {
			return nil, fmt.Errorf("dotenvx: failed to parse %s: %w", name, err)
		}
	}
	for _, raw := range splitLines(content) {
		doc.appendLine(raw, propsValues)
	}
	return doc, nil
}

func (d *Document) appendLine(raw string, propsValues *properties.Properties) {
	trimmed := strings.TrimSpace(raw)
	line := Line{Kind: KindRaw, Raw: raw}
	switch {
	case trimmed == "":
		line.Kind = KindBlank
	case strings.HasPrefix(trimmed, "#"), d.Properties && strings.HasPrefix(trimmed, "!"):
		line.Kind = KindComment
	case strings.Contains(raw, "="):
		keyText, valueText, _ := strings.Cut(raw, "=")
		key := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(keyText), "export "))
		if key != "" {
			line.Kind = KindEntry
			line.Key = key
			line.keyText = keyText
			if d.Properties && propsValues != nil {
				line.Value = propsValues.GetString(key, strings.TrimSpace(valueText))
			} else {
				line.Value = decodeEnvValue(valueText)
			}
		}
	}
	d.lines = append(d.lines, line)
	if line.Kind == KindEntry {
		d.index[line.Key] = len(d.lines) - 1
	}
}

// Get returns the decoded value of key.
func (d *Document) Get(key string) (string, bool) {
	i, ok := d.index[key]
	if !ok {
		return "", false
	}
	return d.lines[i].Value, true
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.index[key]
	return ok
}

// Keys returns all entry keys in file order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.index))
	for _, line := range d.lines {
		if line.Kind == KindEntry {
			keys = append(keys, line.Key)
		}
	}
	return keys
}

// Entries returns all key/value pairs in file order.
func (d *Document) Entries() []Entry {
	entries := make([]Entry, 0, len(d.index))
	for _, line := range d.lines {
		if line.Kind == KindEntry {
			entries = append(entries, Entry{Key: line.Key, Value: line.Value})
		}
	}
	return entries
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.index)
}

// Set replaces the value of key, or appends a new entry at the bottom when
// the key is absent. Only the value span of an existing line changes; the
// text left of '=' is preserved as written.
func (d *Document) Set(key, value string) bool {
	if i, ok := d.index[key]; ok {
		if d.lines[i].Value == value {
			return false
		}
		d.lines[i].Value = value
		d.lines[i].edited = true
		return true
	}
	d.lines = append(d.lines, Line{
		Kind:    KindEntry,
		Key:     key,
		keyText: key,
		Value:   value,
		edited:  true,
	})
	d.index[key] = len(d.lines) - 1
	return true
}

// SetQuoted behaves like Set but always emits the value double-quoted, the
// convention for public-key lines.
func (d *Document) SetQuoted(key, value string) bool {
	changed := d.Set(key, value)
	d.lines[d.index[key]].quoted = true
	return changed
}

// String serializes the document, reproducing untouched lines verbatim.
func (d *Document) String() string {
	var sb strings.Builder
	for i, line := range d.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if line.Kind == KindEntry && line.edited {
			sb.WriteString(line.keyText)
			sb.WriteByte('=')
			if line.quoted {
				sb.WriteString(quoteDouble(line.Value))
			} else {
				sb.WriteString(d.encodeValue(line.Value))
			}
		} else {
			sb.WriteString(line.Raw)
		}
	}
	if d.trailingNewline && len(d.lines) > 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Write serializes the document to path with a secrets-appropriate mode.
func (d *Document) Write(path string) error {
	return os.WriteFile(path, []byte(d.String()), 0o600)
}

func (d *Document) encodeValue(value string) string {
	if d.Properties {
		return encodePropertiesValue(value)
	}
	return encodeEnvValue(value)
}

// PublicKeyName returns the name under which this file stores its public
// key: DOTENV_PUBLIC_KEY[_<PROFILE>] for dotenv files, dotenv.public.key
// for properties files.
func (d *Document) PublicKeyName() string {
	if d.Properties {
		return PropertiesPublicKeyName
	}
	return PublicKeyNameFor(d.Profile)
}

// PublicKey returns the declared public key, if any. A profile file that
// only carries the unsuffixed DOTENV_PUBLIC_KEY line still resolves.
func (d *Document) PublicKey() (string, bool) {
	if v, ok := d.Get(d.PublicKeyName()); ok && v != "" {
		return v, true
	}
	if !d.Properties {
		if v, ok := d.Get(PublicKeyName); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// UUID returns the front-matter uuid, if any.
func (d *Document) UUID() string {
	return d.Metadata["uuid"]
}

// splitLines splits on '\n' without producing a phantom final line for
// newline-terminated content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
