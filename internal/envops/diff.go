package envops

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// DiffRow holds one file's decrypted values for the compared keys.
type DiffRow struct {
	Profile string
	File    string
	Values  []string
}

// Diff compares the given keys across every dotenv file in dir, excluding
// .env.keys and .env.vault. Values are decrypted; a key missing from a
// file yields an empty cell.
func Diff(r *keyring.Resolver, dir string, keys []string) ([]DiffRow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == keyring.KeysFileName || name == ".env.vault" {
			continue
		}
		if name == ".env" || strings.HasPrefix(name, ".env.") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	rows := make([]DiffRow, 0, len(names))
	for _, name := range names {
		decrypted, err := ReadDecrypted(r, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		byKey := make(map[string]string, len(decrypted))
		for _, entry := range decrypted {
			byKey[entry.Key] = entry.Value
		}
		row := DiffRow{
			Profile: profileLabel(envfile.ProfileFromFileName(name)),
			File:    name,
			Values:  make([]string, 0, len(keys)),
		}
		for _, key := range keys {
			row.Values = append(row.Values, byKey[envfile.NormalizeKey(key, name)])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func profileLabel(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
