package keyring

import (
	"os"
	"path/filepath"
	"strings"
)

var ignoreFileNames = []string{".gitignore", ".dockerignore", ".aiignore"}

// SyncIgnoreFiles makes sure .env.keys never leaves the machine: every
// ignore file present in dir gains a .env.keys entry, and a .gitignore is
// created when dir is a git repository without one.
func SyncIgnoreFiles(dir string) error {
	for _, name := range ignoreFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if name == ".gitignore" && dirExists(filepath.Join(dir, ".git")) {
				if err := os.WriteFile(path, []byte(KeysFileName+"\n"), 0o644); err != nil {
					return err
				}
			}
			continue
		}
		if err := appendIgnoreEntry(path); err != nil {
			return err
		}
	}
	return nil
}

func appendIgnoreEntry(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == KeysFileName {
			return nil
		}
	}
	text := string(content)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return os.WriteFile(path, []byte(text+KeysFileName+"\n"), 0o644)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
