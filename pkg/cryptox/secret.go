package cryptox

import (
	"os"
	"path/filepath"
)

// LoadOrGenerateSecret returns the secret stored at path, generating and
// persisting a fresh 256-bit secret if the file does not exist. The secret
// survives restarts so issued session tokens stay verifiable.
func LoadOrGenerateSecret(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		secret, err := GenerateToken(TokenSize256)
		if err != nil {
			return "", err
		}

		if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
			return "", err
		}
		return secret, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
