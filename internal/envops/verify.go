package envops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// VerifyFile checks the front-matter signature against the file's public
// key. The signed message is the file content with the signature line
// removed.
func VerifyFile(r *keyring.Resolver, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(raw)
	doc, err := envfile.Parse(filepath.Base(path), content)
	if err != nil {
		return err
	}
	publicKey, ok := doc.PublicKey()
	if !ok {
		return fmt.Errorf("%w: %s", keyring.ErrMissingPublicKey, path)
	}
	signature, ok := envfile.Signature(content)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSignatureMissing, path)
	}
	valid, err := crypto.VerifyMessage(publicKey, envfile.RemoveSignature(content), signature)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("%w: %s", ErrSignatureInvalid, path)
	}
	return nil
}
