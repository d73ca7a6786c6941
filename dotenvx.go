package dotenvx

import (
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/envops"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// profileEnvVars are checked in order to pick the active profile; the
// first non-empty one wins.
var profileEnvVars = []string{"NODE_ENV", "RUN_ENV", "APP_ENV", "SPRING_PROFILES_ACTIVE", "STELA_ENV"}

// Fetcher retrieves the content of a remote dotenv file. Set Fetch to let
// Load and Read accept http:// and https:// paths; the core never dials
// the network itself.
type Fetcher func(url string) (string, error)

// Fetch is the injected remote-file port. Nil rejects remote paths.
var Fetch Fetcher

// Load reads the given dotenv files (or the profile-selected default),
// decrypts encrypted values, and sets each variable that is not already
// present in the process environment.
func Load(filenames ...string) error {
	return loadAll(defaultResolver(), false, filenames)
}

// Overload is Load with the precedence inverted: file values replace
// existing environment variables.
func Overload(filenames ...string) error {
	return loadAll(defaultResolver(), true, filenames)
}

// Read returns the merged, decrypted key/value set of the given files (or
// the profile-selected default) without mutating the environment.
func Read(filenames ...string) (map[string]string, error) {
	r := defaultResolver()
	values := map[string]string{}
	for _, path := range resolvePaths(r, filenames) {
		entries, err := fileEntries(r, path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			values[entry.Key] = entry.Value
		}
	}
	return values, nil
}

// Entries returns the decrypted (key, value) pairs of one file in file
// order, without mutating the environment.
func Entries(path string) (iter.Seq2[string, string], error) {
	entries, err := fileEntries(defaultResolver(), path)
	if err != nil {
		return nil, err
	}
	return func(yield func(string, string) bool) {
		for _, entry := range entries {
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}, nil
}

// LoadInto merges the decrypted files into env instead of the process
// environment, with the same per-key precedence rule. Tests and sandboxed
// callers use this to keep the real environment untouched.
func LoadInto(env map[string]string, override bool, filenames ...string) error {
	r := defaultResolver()
	lookup := func(key string) bool { _, ok := env[key]; return ok }
	set := func(key, value string) { env[key] = value }
	return loadWith(r, override, filenames, lookup, set)
}

func loadAll(r *keyring.Resolver, override bool, filenames []string) error {
	lookup := func(key string) bool { _, ok := os.LookupEnv(key); return ok }
	set := func(key, value string) { os.Setenv(key, value) }
	return loadWith(r, override, filenames, lookup, set)
}

// loadWith is the single write path into an environment: decryption is
// all-or-nothing per file, so no value is ever injected half-decrypted.
func loadWith(r *keyring.Resolver, override bool, filenames []string, present func(string) bool, set func(string, string)) error {
	for _, path := range resolvePaths(r, filenames) {
		entries, err := fileEntries(r, path)
		if err != nil {
			if os.IsNotExist(err) && len(filenames) == 0 {
				continue
			}
			return err
		}
		for _, entry := range entries {
			if !override && present(entry.Key) {
				continue
			}
			set(entry.Key, entry.Value)
		}
	}
	return nil
}

// resolvePaths expands an empty file list to the profile-selected default
// found by upward walk.
func resolvePaths(r *keyring.Resolver, filenames []string) []string {
	if len(filenames) > 0 {
		return filenames
	}
	name := ".env"
	if profile := activeProfile(r.Getenv); profile != "" {
		name = ".env." + profile
	}
	if path, ok := keyring.FindUp(r.Dir, name); ok {
		return []string{path}
	}
	return []string{name}
}

func activeProfile(getenv func(string) string) string {
	for _, name := range profileEnvVars {
		if value := getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// fileEntries loads and decrypts one file, local or remote.
func fileEntries(r *keyring.Resolver, path string) ([]envfile.Entry, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if Fetch == nil {
			return nil, os.ErrNotExist
		}
		content, err := Fetch(path)
		if err != nil {
			return nil, err
		}
		doc, err := envfile.Parse(filepath.Base(path), content)
		if err != nil {
			return nil, err
		}
		return envops.DecryptDocument(r, doc)
	}
	return envops.ReadDecrypted(r, path)
}

func defaultResolver() *keyring.Resolver {
	return keyring.NewResolver()
}
