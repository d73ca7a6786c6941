package keyring

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store layout under the user's home directory.
const (
	StoreDirName  = ".dotenvx"
	StoreFileName = ".env.keys.json"
	StoreVersion  = "0.1.0"
)

// Store is the global JSON keystore mapping public-key hex to full key
// pair records, so private keys can be found later by public key or by the
// owning file's path.
type Store struct {
	path string
}

type storeDocument struct {
	Version  string             `json:"version"`
	Metadata map[string]string  `json:"metadata"`
	Keys     map[string]KeyPair `json:"keys"`
}

// NewStore returns the keystore at <home>/.dotenvx/.env.keys.json.
func NewStore(home string) *Store {
	return &Store{path: filepath.Join(home, StoreDirName, StoreFileName)}
}

// Path returns the keystore file location.
func (s *Store) Path() string {
	return s.path
}

// load reads the keystore, accepting both the current versioned document
// and the legacy bare {public_key: pair} form.
func (s *Store) load() (*storeDocument, error) {
	doc := &storeDocument{
		Version:  StoreVersion,
		Metadata: map[string]string{"uuid": uuid.NewString()},
		Keys:     map[string]KeyPair{},
	}
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	var parsed storeDocument
	if err := json.Unmarshal(content, &parsed); err == nil && parsed.Keys != nil {
		if parsed.Version == "" {
			parsed.Version = StoreVersion
		}
		if parsed.Metadata == nil {
			parsed.Metadata = doc.Metadata
		}
		return &parsed, nil
	}
	legacy := map[string]KeyPair{}
	if err := json.Unmarshal(content, &legacy); err != nil {
		return nil, err
	}
	doc.Keys = map[string]KeyPair{}
	for publicKey, pair := range legacy {
		if pair.PrivateKey != "" {
			doc.Keys[publicKey] = pair
		}
	}
	return doc, nil
}

// Lookup finds a pair by public-key hex.
func (s *Store) Lookup(publicKeyHex string) (KeyPair, bool) {
	doc, err := s.load()
	if err != nil {
		return KeyPair{}, false
	}
	pair, ok := doc.Keys[publicKeyHex]
	return pair, ok
}

// LookupByPath finds the pair owned by the dotenv file at path.
func (s *Store) LookupByPath(path string) (KeyPair, bool) {
	doc, err := s.load()
	if err != nil {
		return KeyPair{}, false
	}
	for _, pair := range doc.Keys {
		if pair.Path != "" && pair.Path == path {
			return pair, true
		}
	}
	return KeyPair{}, false
}

// Record upserts a pair. A pair for the same file path replaces the old
// record instead of accumulating next to it.
func (s *Store) Record(pair KeyPair) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if pair.Path != "" {
		for publicKey, existing := range doc.Keys {
			if existing.Path == pair.Path {
				delete(doc.Keys, publicKey)
			}
		}
	}
	doc.Keys[pair.PublicKey] = pair
	return s.save(doc)
}

func (s *Store) save(doc *storeDocument) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(content, '\n'), 0o600)
}
