package envops

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// FileInfo is one row of the ls table.
type FileInfo struct {
	Path      string
	UUID      string
	Entries   int
	PublicKey string
	Signed    bool
	Verified  bool
}

// defaultListDepth bounds the ls walk so a home-directory listing does not
// crawl the whole disk.
const defaultListDepth = 3

// ListFiles enumerates the dotenv files under dir (depth-limited),
// optionally filtered by profile, with signature status per file.
func ListFiles(r *keyring.Resolver, dir, profile string, maxDepth int) ([]FileInfo, error) {
	if maxDepth <= 0 {
		maxDepth = defaultListDepth
	}
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if strings.Count(rel, string(filepath.Separator)) >= maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if name == keyring.KeysFileName || name == ".env.vault" {
			return nil
		}
		if name != ".env" && !strings.HasPrefix(name, ".env.") {
			return nil
		}
		if profile != "" && name != ".env."+profile {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	infos := make([]FileInfo, 0, len(paths))
	for _, path := range paths {
		doc, err := envfile.Load(path)
		if err != nil {
			continue
		}
		info := FileInfo{
			Path:    strings.TrimPrefix(path, "./"),
			UUID:    doc.UUID(),
			Entries: doc.Len(),
		}
		if publicKey, ok := doc.PublicKey(); ok {
			info.PublicKey = shortKey(publicKey)
		}
		if _, ok := envfile.Signature(readAll(path)); ok {
			info.Signed = true
			info.Verified = VerifyFile(r, path) == nil
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func shortKey(publicKey string) string {
	if len(publicKey) > 8 {
		return publicKey[:8] + "..."
	}
	return publicKey
}

func readAll(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}
