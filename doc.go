// Package dotenvx loads dotenv files whose values may be encrypted in
// place, decrypting them transparently before they reach the process
// environment.
//
// A dotenv file encrypted with the dotenvx CLI keeps its layout and
// carries values of the form "encrypted:<base64>". Load parses the file,
// resolves the matching private key (environment variable, .env.keys, or
// the global keystore), decrypts every encrypted value, and injects the
// results:
//
//	if err := dotenvx.Load(); err != nil {
//	    log.Fatal(err)
//	}
//
// Existing environment variables win over file values; Overload inverts
// that, per key. Read and Entries return the decrypted values without
// touching the environment:
//
//	entries, err := dotenvx.Entries(".env.prod")
//	if err != nil { ... }
//	for key, value := range entries {
//	    fmt.Println(key, value)
//	}
//
// With no file name, Load picks ".env.<profile>" when one of NODE_ENV,
// RUN_ENV, APP_ENV, SPRING_PROFILES_ACTIVE or STELA_ENV is set, and ".env"
// otherwise, walking parent directories up to the repository root.
package dotenvx
