package envfile

import (
	"strings"
)

// Key names for the per-file public key.
const (
	PublicKeyName           = "DOTENV_PUBLIC_KEY"
	PrivateKeyName          = "DOTENV_PRIVATE_KEY"
	PropertiesPublicKeyName = "dotenv.public.key"
)

// PublicKeyNameFor returns DOTENV_PUBLIC_KEY[_<PROFILE>].
func PublicKeyNameFor(profile string) string {
	if profile == "" {
		return PublicKeyName
	}
	return PublicKeyName + "_" + strings.ToUpper(profile)
}

// PrivateKeyNameFor returns DOTENV_PRIVATE_KEY[_<PROFILE>].
func PrivateKeyNameFor(profile string) string {
	if profile == "" {
		return PrivateKeyName
	}
	return PrivateKeyName + "_" + strings.ToUpper(profile)
}

// IsPublicKeyName reports whether a key names a public-key entry of any
// profile, which encryption must always leave alone.
func IsPublicKeyName(key string) bool {
	return strings.HasPrefix(key, PublicKeyName) || key == PropertiesPublicKeyName
}

// IsProperties reports whether a file name selects Java-properties syntax.
func IsProperties(name string) bool {
	return strings.HasSuffix(name, ".properties")
}

// ProfileFromFileName derives the profile tag from a file name:
// ".env.prod" -> "prod", "app_dev.properties" -> "dev". The bare ".env"
// and unsuffixed properties files map to the default profile.
func ProfileFromFileName(name string) string {
	if strings.HasPrefix(name, ".env.") {
		return strings.TrimPrefix(name, ".env.")
	}
	if IsProperties(name) && strings.Contains(name, "_") {
		base := strings.TrimSuffix(name, ".properties")
		return base[strings.LastIndex(base, "_")+1:]
	}
	return ""
}

// NormalizeKey adjusts a user-supplied key for the target file: dotenv
// files uppercase it and map '-'/'.' to '_'; properties files take the key
// verbatim.
func NormalizeKey(key, fileName string) string {
	if IsProperties(fileName) {
		return key
	}
	key = strings.ToUpper(key)
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, ".", "_")
}

// decodeEnvValue decodes the text right of '=' on a dotenv line: bare
// values end at whitespace or an inline comment, double quotes honor
// \n, \r, \t, \", \\ escapes, single quotes are literal.
func decodeEnvValue(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	switch s[0] {
	case '"':
		var sb strings.Builder
		escaped := false
		for _, r := range s[1:] {
			if escaped {
				switch r {
				case 'n':
					sb.WriteByte('\n')
				case 'r':
					sb.WriteByte('\r')
				case 't':
					sb.WriteByte('\t')
				default:
					sb.WriteRune(r)
				}
				escaped = false
				continue
			}
			if r == '\\' {
				escaped = true
				continue
			}
			if r == '"' {
				break
			}
			sb.WriteRune(r)
		}
		return sb.String()
	case '\'':
		if end := strings.IndexByte(s[1:], '\''); end >= 0 {
			return s[1 : 1+end]
		}
		return s[1:]
	default:
		if i := strings.Index(s, " #"); i >= 0 {
			s = s[:i]
		}
		if i := strings.IndexAny(s, " \t"); i >= 0 {
			s = s[:i]
		}
		return s
	}
}

// encodeEnvValue emits a value for a dotenv line, quoting only when the
// bare form would not survive a re-parse.
func encodeEnvValue(value string) string {
	if bareSafe(value) {
		return value
	}
	return quoteDouble(value)
}

// encodePropertiesValue emits a value for a properties line. Backslashes,
// newlines and carriage returns are escaped; properties values run to end
// of line.
func encodePropertiesValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	return strings.ReplaceAll(value, "\r", "\\r")
}

func bareSafe(value string) bool {
	if value == "" {
		return true
	}
	return !strings.ContainsAny(value, " \t\n\r\"'#\\")
}

func quoteDouble(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\r", "\\r")
	return "\"" + value + "\""
}

// WrapShellValue makes a value safe for `KEY=VALUE` lines fed to shell
// eval: values with whitespace, quotes or newlines get single-quoted with
// embedded quotes escaped, everything else passes through.
func WrapShellValue(value string) string {
	if !strings.ContainsAny(value, " \t\n\r\"'") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
