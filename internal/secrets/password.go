package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"layoffs-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "layoffs-engine"

	// PasswordEnv is consulted when the keychain has no entry, for headless hosts.
	PasswordEnv = "WARN_SMTP_PASSWORD"
)

var ErrNoPassword = errors.New("SMTP password not found (set it in keychain or via " + PasswordEnv + ")")

func GetSMTPPassword(keyringAccount string) (string, error) {
	// keychain first
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := os.Getenv(PasswordEnv); strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", ErrNoPassword
}

func SetSMTPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteSMTPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// SMTPKeyringAccount names the keychain entry for an SMTP login.
func SMTPKeyringAccount(em config.EmailConfig) string {
	user := em.Username
	if user == "" {
		user = em.From
	}
	return fmt.Sprintf("warn:smtp:%s@%s", user, em.SMTPHost)
}
