package envops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

func testResolver(t *testing.T) *keyring.Resolver {
	t.Helper()
	env := map[string]string{}
	return &keyring.Resolver{
		Dir:        t.TempDir(),
		Home:       t.TempDir(),
		Getenv:     func(key string) string { return env[key] },
		SyncIgnore: true,
	}
}

// seedFile writes a dotenv file with a known pair already persisted.
func seedFile(t *testing.T, r *keyring.Resolver, name, body string) (string, keyring.KeyPair) {
	t.Helper()
	pair, err := keyring.Generate(envfile.ProfileFromFileName(name))
	require.NoError(t, err)
	path := filepath.Join(r.Dir, name)
	content := "DOTENV_PUBLIC_KEY"
	if pair.Profile != "" {
		content += "_" + strings.ToUpper(pair.Profile)
	}
	content += "=\"" + pair.PublicKey + "\"\n\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, keyring.WritePrivateKey(
		filepath.Join(r.Dir, keyring.KeysFileName),
		envfile.PrivateKeyNameFor(pair.Profile),
		pair.PrivateKey,
	))
	return path, pair
}

func TestEncryptDecryptFile(t *testing.T) {
	r := testResolver(t)
	path, pair := seedFile(t, r, ".env", "# greeting\nHELLO=World\n\nTOKEN=abc\n")

	res, err := EncryptFile(r, path, Options{})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	encrypted, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(encrypted)

	t.Run("values are encrypted, layout preserved", func(t *testing.T) {
		assert.Contains(t, content, "# greeting\n")
		assert.Contains(t, content, "HELLO=encrypted:")
		assert.Contains(t, content, "TOKEN=encrypted:")
		assert.NotContains(t, content, "HELLO=World")
		assert.Contains(t, content, "DOTENV_PUBLIC_KEY=\""+pair.PublicKey+"\"")
		doc, err := envfile.Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"DOTENV_PUBLIC_KEY", "HELLO", "TOKEN"}, doc.Keys())
	})

	t.Run("encrypt is idempotent", func(t *testing.T) {
		res, err := EncryptFile(r, path, Options{})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(after))
	})

	t.Run("decrypt restores the original values", func(t *testing.T) {
		res, err := DecryptFile(r, path, Options{})
		require.NoError(t, err)
		assert.True(t, res.Changed)
		restored, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(restored), "HELLO=World\n")
		assert.Contains(t, string(restored), "TOKEN=abc\n")
		assert.Contains(t, string(restored), "# greeting\n")
	})

	t.Run("decrypt is idempotent", func(t *testing.T) {
		res, err := DecryptFile(r, path, Options{})
		require.NoError(t, err)
		assert.False(t, res.Changed)
	})
}

func TestEncryptGeneratesPairOnFirstUse(t *testing.T) {
	r := testResolver(t)
	path := filepath.Join(r.Dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HELLO=World\n"), 0o600))

	res, err := EncryptFile(r, path, Options{})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	doc, err := envfile.Load(path)
	require.NoError(t, err)
	publicKey, ok := doc.PublicKey()
	require.True(t, ok)

	entries, err := keyring.ReadKeysFile(filepath.Join(r.Dir, keyring.KeysFileName))
	require.NoError(t, err)
	derived, err := crypto.DerivePublicKey(entries["DOTENV_PRIVATE_KEY"])
	require.NoError(t, err)
	assert.Equal(t, publicKey, derived)

	_, ok = r.Store().Lookup(publicKey)
	assert.True(t, ok)
}

func TestEncryptGlobSelectivity(t *testing.T) {
	r := testResolver(t)
	path, _ := seedFile(t, r, ".env", "API_TOKEN=secret\nHELLO=World\nGITHUB_TOKEN=gh\n")

	_, err := EncryptFile(r, path, Options{Keys: []string{"*TOKEN*"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "API_TOKEN=encrypted:")
	assert.Contains(t, string(content), "GITHUB_TOKEN=encrypted:")
	assert.Contains(t, string(content), "HELLO=World\n")
}

func TestSignAndVerify(t *testing.T) {
	r := testResolver(t)
	path, _ := seedFile(t, r, ".env", "HELLO=World\n")

	_, err := EncryptFile(r, path, Options{Sign: true})
	require.NoError(t, err)

	t.Run("signature lives in front matter", func(t *testing.T) {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(string(content), "\n")
		require.Greater(t, len(lines), 2)
		assert.True(t, strings.HasPrefix(lines[0], "# ---"))
		assert.True(t, strings.HasPrefix(lines[1], "# sign: "))
	})

	t.Run("verify passes", func(t *testing.T) {
		assert.NoError(t, VerifyFile(r, path))
	})

	t.Run("signing is idempotent", func(t *testing.T) {
		before, err := os.ReadFile(path)
		require.NoError(t, err)
		res, err := EncryptFile(r, path, Options{Sign: true})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("tampering fails verification", func(t *testing.T) {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		_, err = f.WriteString("EXTRA=1\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		err = VerifyFile(r, path)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
		assert.Contains(t, err.Error(), "signature is invalid")
	})

	t.Run("missing signature is its own error", func(t *testing.T) {
		plain, _ := seedFile(t, r, ".env.stage", "A=1\n")
		assert.ErrorIs(t, VerifyFile(r, plain), ErrSignatureMissing)
	})
}

func TestRotate(t *testing.T) {
	r := testResolver(t)
	path, oldPair := seedFile(t, r, ".env", "TOKEN=tok-123\nPLAIN=keep\n")
	_, err := EncryptFile(r, path, Options{Keys: []string{"TOKEN"}})
	require.NoError(t, err)

	oldDoc, err := envfile.Load(path)
	require.NoError(t, err)
	oldToken, _ := oldDoc.Get("TOKEN")

	res, err := Rotate(r, path, Options{})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	doc, err := envfile.Load(path)
	require.NoError(t, err)
	newPublicKey, ok := doc.PublicKey()
	require.True(t, ok)
	newToken, _ := doc.Get("TOKEN")

	t.Run("public key and token changed", func(t *testing.T) {
		assert.NotEqual(t, oldPair.PublicKey, newPublicKey)
		assert.NotEqual(t, oldToken, newToken)
		assert.True(t, crypto.IsEncrypted(newToken))
	})

	t.Run("plain entries stay plain", func(t *testing.T) {
		v, _ := doc.Get("PLAIN")
		assert.Equal(t, "keep", v)
	})

	t.Run("new private key decrypts, old one does not", func(t *testing.T) {
		entries, err := keyring.ReadKeysFile(filepath.Join(r.Dir, keyring.KeysFileName))
		require.NoError(t, err)
		newPrivateKey := entries["DOTENV_PRIVATE_KEY"]
		require.NotEqual(t, oldPair.PrivateKey, newPrivateKey)

		plaintext, err := crypto.DecryptValue(newPrivateKey, newToken)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", string(plaintext))

		_, err = crypto.DecryptValue(oldPair.PrivateKey, newToken)
		assert.ErrorIs(t, err, crypto.ErrBadCiphertext)
	})

	t.Run("keystore records the new pair", func(t *testing.T) {
		found, ok := r.Store().Lookup(newPublicKey)
		require.True(t, ok)
		assert.Equal(t, doc.Path, found.Path)
	})
}

func TestGet(t *testing.T) {
	r := testResolver(t)
	path, pair := seedFile(t, r, ".env", "HELLO=World\n")
	_, err := EncryptFile(r, path, Options{})
	require.NoError(t, err)

	t.Run("decrypts an entry", func(t *testing.T) {
		value, err := Get(r, path, "HELLO")
		require.NoError(t, err)
		assert.Equal(t, "World", value)
	})

	t.Run("normalizes the key", func(t *testing.T) {
		value, err := Get(r, path, "hello")
		require.NoError(t, err)
		assert.Equal(t, "World", value)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := Get(r, path, "ABSENT")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("decrypts a literal token", func(t *testing.T) {
		token, err := crypto.EncryptValue(pair.PublicKey, []byte("direct"))
		require.NoError(t, err)
		value, err := DecryptToken(r, "", token)
		require.NoError(t, err)
		assert.Equal(t, "direct", value)
	})

	t.Run("whole decrypted set in order", func(t *testing.T) {
		entries, err := ReadDecrypted(r, path)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "HELLO", entries[1].Key)
		assert.Equal(t, "World", entries[1].Value)
	})
}

func TestSet(t *testing.T) {
	t.Run("plain file stays plain by default", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "HELLO=World\n")
		_, err := Set(r, path, "NEW_KEY", "plain-value", SetAuto, Options{})
		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "NEW_KEY=plain-value\n")
	})

	t.Run("encrypted file encrypts by default", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "HELLO=World\n")
		_, err := EncryptFile(r, path, Options{})
		require.NoError(t, err)
		_, err = Set(r, path, "NEW_KEY", "secret", SetAuto, Options{})
		require.NoError(t, err)

		doc, err := envfile.Load(path)
		require.NoError(t, err)
		v, _ := doc.Get("NEW_KEY")
		assert.True(t, crypto.IsEncrypted(v))
		value, err := Get(r, path, "NEW_KEY")
		require.NoError(t, err)
		assert.Equal(t, "secret", value)
	})

	t.Run("explicit flags win over inference", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "HELLO=World\n")
		_, err := Set(r, path, "SECRET", "v", SetEncrypted, Options{})
		require.NoError(t, err)
		doc, err := envfile.Load(path)
		require.NoError(t, err)
		v, _ := doc.Get("SECRET")
		assert.True(t, crypto.IsEncrypted(v))

		_, err = Set(r, path, "VISIBLE", "v", SetPlain, Options{})
		require.NoError(t, err)
		doc, err = envfile.Load(path)
		require.NoError(t, err)
		v, _ = doc.Get("VISIBLE")
		assert.Equal(t, "v", v)
	})

	t.Run("replaces in place preserving order", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "A=1\nB=2\nC=3\n")
		_, err := Set(r, path, "B", "two", SetPlain, Options{})
		require.NoError(t, err)
		doc, err := envfile.Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"DOTENV_PUBLIC_KEY", "A", "B", "C"}, doc.Keys())
		v, _ := doc.Get("B")
		assert.Equal(t, "two", v)
	})

	t.Run("key is normalized and validated", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "A=1\n")
		_, err := Set(r, path, "db-url", "x", SetPlain, Options{})
		require.NoError(t, err)
		doc, err := envfile.Load(path)
		require.NoError(t, err)
		assert.True(t, doc.Has("DB_URL"))

		_, err = Set(r, path, "1BAD", "x", SetPlain, Options{})
		assert.ErrorIs(t, err, ErrBadKeyName)
	})

	t.Run("creates a missing file with header", func(t *testing.T) {
		r := testResolver(t)
		path := filepath.Join(r.Dir, ".env")
		_, err := Set(r, path, "FIRST", "secret", SetAuto, Options{})
		require.NoError(t, err)

		doc, err := envfile.Load(path)
		require.NoError(t, err)
		_, ok := doc.PublicKey()
		assert.True(t, ok)
		assert.NotEmpty(t, doc.UUID())
		value, err := Get(r, path, "FIRST")
		require.NoError(t, err)
		assert.Equal(t, "secret", value)
	})
}

func TestInitFile(t *testing.T) {
	t.Run("fresh directory", func(t *testing.T) {
		r := testResolver(t)
		require.NoError(t, os.MkdirAll(filepath.Join(r.Dir, ".git"), 0o755))
		path := filepath.Join(r.Dir, ".env")

		pair, err := InitFile(r, path)
		require.NoError(t, err)

		doc, err := envfile.Load(path)
		require.NoError(t, err)
		assert.NotEmpty(t, doc.UUID())
		publicKey, ok := doc.PublicKey()
		require.True(t, ok)
		assert.Len(t, publicKey, 66)
		v, ok := doc.Get("KEY1")
		require.True(t, ok)
		assert.Equal(t, "value1", v)

		entries, err := keyring.ReadKeysFile(filepath.Join(r.Dir, keyring.KeysFileName))
		require.NoError(t, err)
		privateKey := entries["DOTENV_PRIVATE_KEY"]
		assert.Len(t, privateKey, 64)
		derived, err := crypto.DerivePublicKey(privateKey)
		require.NoError(t, err)
		assert.Equal(t, publicKey, derived)
		assert.Equal(t, pair.PublicKey, publicKey)

		gitignore, err := os.ReadFile(filepath.Join(r.Dir, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(gitignore), ".env.keys")
	})

	t.Run("refuses a file with a public key", func(t *testing.T) {
		r := testResolver(t)
		path, _ := seedFile(t, r, ".env", "A=1\n")
		_, err := InitFile(r, path)
		assert.ErrorIs(t, err, ErrPublicKeyExists)
	})

	t.Run("inserts a header into a plain file", func(t *testing.T) {
		r := testResolver(t)
		path := filepath.Join(r.Dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("HELLO=World\n"), 0o600))
		_, err := InitFile(r, path)
		require.NoError(t, err)
		doc, err := envfile.Load(path)
		require.NoError(t, err)
		_, ok := doc.PublicKey()
		assert.True(t, ok)
		v, _ := doc.Get("HELLO")
		assert.Equal(t, "World", v)
	})
}

func TestInitGlobal(t *testing.T) {
	r := testResolver(t)
	created, err := InitGlobal(r)
	require.NoError(t, err)
	assert.Len(t, created, len(CanonicalProfiles)+1)

	entries, err := keyring.ReadKeysFile(filepath.Join(r.Home, keyring.KeysFileName))
	require.NoError(t, err)
	for _, profile := range CanonicalProfiles {
		assert.Contains(t, entries, "DOTENV_PRIVATE_KEY_"+strings.ToUpper(profile))
	}
	assert.Contains(t, entries, "DOTENV_PRIVATE_KEY_CLOUD")

	t.Run("idempotent", func(t *testing.T) {
		again, err := InitGlobal(r)
		require.NoError(t, err)
		assert.Empty(t, again)
	})
}

func TestListFiles(t *testing.T) {
	r := testResolver(t)
	seedFile(t, r, ".env", "A=1\n")
	path2, _ := seedFile(t, r, ".env.prod", "B=2\nC=3\n")
	_, err := EncryptFile(r, path2, Options{Sign: true})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "README.md"), []byte("x"), 0o644))

	infos, err := ListFiles(r, r.Dir, "", 0)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byName := map[string]FileInfo{}
	for _, info := range infos {
		byName[filepath.Base(info.Path)] = info
	}
	assert.Equal(t, 2, byName[".env"].Entries)
	assert.False(t, byName[".env"].Signed)
	prod := byName[".env.prod"]
	assert.Equal(t, 3, prod.Entries)
	assert.True(t, prod.Signed)
	assert.True(t, prod.Verified)
	assert.True(t, strings.HasSuffix(prod.PublicKey, "..."))

	t.Run("profile filter", func(t *testing.T) {
		infos, err := ListFiles(r, r.Dir, "prod", 0)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, ".env.prod", filepath.Base(infos[0].Path))
	})
}

func TestDiff(t *testing.T) {
	r := testResolver(t)
	path, _ := seedFile(t, r, ".env", "HELLO=World\nTOKEN=t0\n")
	_, err := EncryptFile(r, path, Options{})
	require.NoError(t, err)
	seedFile(t, r, ".env.prod", "HELLO=Prod\n")

	rows, err := Diff(r, r.Dir, []string{"HELLO", "TOKEN"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "default", rows[0].Profile)
	assert.Equal(t, []string{"World", "t0"}, rows[0].Values)
	assert.Equal(t, "prod", rows[1].Profile)
	assert.Equal(t, []string{"Prod", ""}, rows[1].Values)
}
