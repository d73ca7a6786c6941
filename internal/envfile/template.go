package envfile

import (
	"strings"

	"github.com/google/uuid"
)

// publicKeyBanner is the comment block written above a freshly inserted
// public-key line.
var publicKeyBanner = []string{
	"#/-------------------[DOTENV_PUBLIC_KEY]--------------------/",
	"#/            public-key encryption for .env files          /",
	"#/       [how to use](https://dotenvx.com/encryption)       /",
	"#/----------------------------------------------------------/",
}

// privateKeysBanner heads generated .env.keys files.
var privateKeysBanner = []string{
	"#/------------------!DOTENV_PRIVATE_KEYS!-------------------/",
	"#/ private decryption keys. DO NOT commit to source control /",
	"#/     [how it works](https://dotenvx.com/encryption)       /",
	"#/----------------------------------------------------------/",
}

// PrivateKeysHeader returns the banner for a new .env.keys file.
func PrivateKeysHeader() string {
	return strings.Join(privateKeysBanner, "\n") + "\n"
}

// NewFileContent builds the content of a fresh dotenv file named fileName:
// a front-matter block with a time-ordered uuid and the project name, the
// public-key banner and line, and optional seed entries.
func NewFileContent(fileName, projectName, publicKeyHex string, seed []Entry) string {
	properties := IsProperties(fileName)
	publicKeyLine := PublicKeyNameFor(ProfileFromFileName(fileName)) + "=" + quoteDouble(publicKeyHex)
	if properties {
		publicKeyLine = PropertiesPublicKeyName + "=" + publicKeyHex
	}
	var sb strings.Builder
	sb.WriteString("# ---\n")
	sb.WriteString("# uuid: " + newFileUUID() + "\n")
	if projectName != "" {
		sb.WriteString("# name: " + projectName + "\n")
	}
	sb.WriteString("# ---\n\n")
	for _, line := range publicKeyBanner {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(publicKeyLine + "\n")
	for _, entry := range seed {
		value := encodeEnvValue(entry.Value)
		if properties {
			value = encodePropertiesValue(entry.Value)
		}
		sb.WriteString("\n" + entry.Key + "=" + value + "\n")
	}
	return sb.String()
}

// InsertPublicKey declares the public key in the document: in place when
// the line already exists, otherwise as a banner-plus-line block inserted
// after the front matter (or at the very top).
func (d *Document) InsertPublicKey(publicKeyHex string) bool {
	name := d.PublicKeyName()
	if d.Has(name) {
		return d.SetQuoted(name, publicKeyHex)
	}
	block := make([]Line, 0, len(publicKeyBanner)+2)
	for _, text := range publicKeyBanner {
		block = append(block, Line{Kind: KindComment, Raw: text})
	}
	block = append(block, Line{
		Kind:    KindEntry,
		Key:     name,
		keyText: name,
		Value:   publicKeyHex,
		edited:  true,
		quoted:  true,
	})
	block = append(block, Line{Kind: KindBlank})

	at := d.frontMatterEnd()
	rest := make([]Line, len(d.lines[at:]))
	copy(rest, d.lines[at:])
	d.lines = append(append(d.lines[:at:at], block...), rest...)
	d.reindex()
	if len(d.lines) > 0 {
		d.trailingNewline = true
	}
	return true
}

// frontMatterEnd returns the line offset just past the front-matter block,
// or 0 when the file has none.
func (d *Document) frontMatterEnd() int {
	if len(d.lines) == 0 || !isFrontMatterDelim(d.lines[0].Raw) {
		return 0
	}
	for i := 1; i < len(d.lines); i++ {
		if isFrontMatterDelim(d.lines[i].Raw) {
			// Include one trailing blank line in the block.
			if i+1 < len(d.lines) && d.lines[i+1].Kind == KindBlank {
				return i + 2
			}
			return i + 1
		}
	}
	return len(d.lines)
}

func (d *Document) reindex() {
	d.index = make(map[string]int, len(d.index))
	for i, line := range d.lines {
		if line.Kind == KindEntry {
			d.index[line.Key] = i
		}
	}
}

func newFileUUID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
