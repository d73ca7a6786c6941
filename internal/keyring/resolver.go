package keyring

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
)

// Resolver locates key material for a profile. The zero value is not
// usable; construct with NewResolver and override fields in tests.
type Resolver struct {
	// Dir is the directory the upward walks start from.
	Dir string
	// Home is the user's home directory, owner of the global key files.
	Home string
	// Getenv looks up process environment variables.
	Getenv func(string) string
	// SyncIgnore controls whether writing .env.keys also maintains the
	// repository ignore files.
	SyncIgnore bool

	store *Store
}

// NewResolver builds a resolver rooted at the working directory.
func NewResolver() *Resolver {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = dir
	}
	return &Resolver{
		Dir:        dir,
		Home:       home,
		Getenv:     os.Getenv,
		SyncIgnore: true,
	}
}

// Store returns the global JSON keystore.
func (r *Resolver) Store() *Store {
	if r.store == nil {
		r.store = NewStore(r.Home)
	}
	return r.store
}

// PrivateKey resolves the private key for a profile, trying in order: the
// global keystore when a public-key hint is given, the process
// environment, and the reachable .env.keys file.
func (r *Resolver) PrivateKey(profile, publicKeyHint string) (string, error) {
	if publicKeyHint != "" {
		if pair, ok := r.Store().Lookup(publicKeyHint); ok {
			return pair.PrivateKey, nil
		}
	}
	keyName := envfile.PrivateKeyNameFor(profile)
	if value := r.Getenv(keyName); value != "" {
		return value, nil
	}
	if keysPath, ok := r.keysFilePath(profile); ok {
		entries, err := ReadKeysFile(keysPath)
		if err != nil {
			return "", err
		}
		if value, ok := entries[keyName]; ok && value != "" {
			return value, nil
		}
		if value, ok := entries[envfile.PrivateKeyName]; ok && value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w (profile %q)", ErrMissingPrivateKey, profileLabel(profile))
}

// PublicKey resolves the public key for a profile, trying in order: the
// matching dotenv file found by upward walk, the process environment, and
// derivation from the resolvable private key.
func (r *Resolver) PublicKey(profile string) (string, error) {
	if doc, err := r.envDocument(profile); err == nil {
		if publicKey, ok := doc.PublicKey(); ok {
			return publicKey, nil
		}
	}
	keyName := envfile.PublicKeyNameFor(profile)
	if value := r.Getenv(keyName); value != "" {
		return value, nil
	}
	if privateKey, err := r.PrivateKey(profile, ""); err == nil {
		return crypto.DerivePublicKey(privateKey)
	}
	return "", fmt.Errorf("%w (profile %q)", ErrMissingPublicKey, profileLabel(profile))
}

// Pair resolves both halves for a profile and re-asserts the pair
// invariant. A mismatch is fatal to the calling operation.
func (r *Resolver) Pair(profile string) (KeyPair, error) {
	privateKey, err := r.PrivateKey(profile, "")
	if err != nil {
		return KeyPair{}, err
	}
	publicKey, err := r.PublicKey(profile)
	if err != nil {
		return KeyPair{}, err
	}
	pair := KeyPair{PublicKey: publicKey, PrivateKey: privateKey, Profile: profile}
	if err := pair.Validate(); err != nil {
		return KeyPair{}, err
	}
	return pair, nil
}

// PrivateKeyForFile resolves the private key for the profile encoded in a
// dotenv file name.
func (r *Resolver) PrivateKeyForFile(path string) (string, error) {
	return r.PrivateKey(envfile.ProfileFromFileName(filepath.Base(path)), "")
}

// Persist writes a newly created pair everywhere the resolution tiers
// look: the dotenv file's public-key line, the .env.keys private-key line,
// and the global JSON keystore.
func (r *Resolver) Persist(pair KeyPair, doc *envfile.Document) error {
	if doc != nil {
		doc.InsertPublicKey(pair.PublicKey)
		if doc.Path != "" {
			if err := doc.Write(doc.Path); err != nil {
				return err
			}
			pair.Path = doc.Path
			if pair.Name == "" {
				pair.Name = filepath.Base(filepath.Dir(doc.Path))
			}
		}
	}
	keysPath := r.keysFileWritePath(pair.Profile)
	keyName := envfile.PrivateKeyNameFor(pair.Profile)
	if err := WritePrivateKey(keysPath, keyName, pair.PrivateKey); err != nil {
		return err
	}
	if r.SyncIgnore && !IsGlobalProfile(pair.Profile) {
		if err := SyncIgnoreFiles(filepath.Dir(keysPath)); err != nil {
			return err
		}
	}
	return r.Store().Record(pair)
}

// keysFilePath finds the keys file a read should consult.
func (r *Resolver) keysFilePath(profile string) (string, bool) {
	if IsGlobalProfile(profile) {
		path := filepath.Join(r.Home, KeysFileName)
		_, err := os.Stat(path)
		return path, err == nil
	}
	return FindUp(r.Dir, KeysFileName)
}

// keysFileWritePath picks where a new private key is persisted: the
// nearest existing .env.keys, or a new one in the working directory.
func (r *Resolver) keysFileWritePath(profile string) string {
	if IsGlobalProfile(profile) {
		return filepath.Join(r.Home, KeysFileName)
	}
	if path, ok := FindUp(r.Dir, KeysFileName); ok {
		return path
	}
	return filepath.Join(r.Dir, KeysFileName)
}

// envDocument loads the dotenv file matching a profile via upward walk.
func (r *Resolver) envDocument(profile string) (*envfile.Document, error) {
	name := ".env"
	if profile != "" {
		name = ".env." + profile
	}
	path, ok := FindUp(r.Dir, name)
	if !ok {
		return nil, os.ErrNotExist
	}
	return envfile.Load(path)
}

func profileLabel(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
