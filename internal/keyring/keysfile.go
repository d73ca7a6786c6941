package keyring

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/linux-china/dotenvx-go/internal/envfile"
)

// KeysFileName is the sibling file carrying private keys.
const KeysFileName = ".env.keys"

// FindUp walks from startDir toward the filesystem root looking for name.
// The walk stops at the root or just past the first directory containing a
// .git entry, so a resolver never wanders out of the repository.
func FindUp(startDir, name string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ReadKeysFile parses a .env.keys file into name -> hex key.
func ReadKeysFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// WritePrivateKey appends or updates one DOTENV_PRIVATE_KEY[_P] line in the
// keys file at path, creating the file with its warning banner when absent.
func WritePrivateKey(path, keyName, privateKeyHex string) error {
	line := keyName + "=\"" + privateKeyHex + "\""
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte(envfile.PrivateKeysHeader()+line+"\n"), 0o600)
	}
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	updated := false
	for i, existing := range lines {
		if strings.HasPrefix(existing, keyName+"=") {
			lines[i] = line
			updated = true
			break
		}
	}
	if !updated {
		lines = append(lines, line)
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}
