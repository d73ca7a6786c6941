package envops

import (
	"os"
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// SetMode selects how a new value is stored.
type SetMode int

const (
	// SetAuto infers the mode from the file: encrypted when the file
	// already stores encrypted entries (or does not exist yet).
	SetAuto SetMode = iota
	SetEncrypted
	SetPlain
)

// Set adds or replaces one entry, preserving layout. A missing file is
// created with the standard header and a fresh key pair.
func Set(r *keyring.Resolver, path, key, value string, mode SetMode, opts Options) (*Result, error) {
	name := filepath.Base(path)
	key = envfile.NormalizeKey(key, name)
	if err := validateKeyName(key, name); err != nil {
		return nil, err
	}

	doc, err := envfile.Load(path)
	if os.IsNotExist(err) {
		return setInNewFile(r, path, key, value, mode, opts)
	}
	if err != nil {
		return nil, err
	}

	encrypt := mode == SetEncrypted
	if mode == SetAuto {
		for _, entry := range doc.Entries() {
			if crypto.IsEncrypted(entry.Value) {
				encrypt = true
				break
			}
		}
	}
	stored := value
	if encrypt {
		publicKey, created, err := ensureFilePair(r, doc)
		if err != nil {
			return nil, err
		}
		if created {
			doc.InsertPublicKey(publicKey)
		}
		if stored, err = crypto.EncryptValue(publicKey, []byte(value)); err != nil {
			return nil, err
		}
	}
	changed := doc.Set(key, stored)
	// An unchanged plain value is a no-op; encrypted tokens always differ
	// because of the fresh ephemeral key, so Set reports changed.
	return finish(doc, doc.String(), changed, opts.Stdout)
}

// setInNewFile creates the dotenv file with header, key pair and the one
// entry.
func setInNewFile(r *keyring.Resolver, path, key, value string, mode SetMode, opts Options) (*Result, error) {
	pair, err := keyring.Generate(envfile.ProfileFromFileName(filepath.Base(path)))
	if err != nil {
		return nil, err
	}
	stored := value
	if mode != SetPlain {
		if stored, err = crypto.EncryptValue(pair.PublicKey, []byte(value)); err != nil {
			return nil, err
		}
	}
	content := envfile.NewFileContent(
		filepath.Base(path),
		filepath.Base(filepath.Dir(absPath(path))),
		pair.PublicKey,
		[]envfile.Entry{{Key: key, Value: stored}},
	)
	doc, err := envfile.Parse(filepath.Base(path), content)
	if err != nil {
		return nil, err
	}
	doc.Path = absPath(path)
	if !opts.Stdout {
		pair.Path = doc.Path
		pair.Name = filepath.Base(filepath.Dir(doc.Path))
		if err := r.Persist(pair, nil); err != nil {
			return nil, err
		}
	}
	return finish(doc, content, true, opts.Stdout)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
