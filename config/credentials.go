package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// CredentialsFile is the file name looked up in the home directory
const CredentialsFile = ".zaius_api"

// ErrCredentials is returned when credentials cannot be loaded
var ErrCredentials = errors.New("invalid credentials")

// Credentials authenticate against the export API and result storage
type Credentials struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	APIKey             string
}

// DefaultCredentialsPath returns $HOME/.zaius_api
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, CredentialsFile), nil
}

// LoadCredentials reads the [auth] section of an INI file:
//
//	[auth]
//	aws_access_key_id = ...
//	aws_secret_access_key = ...
//	zaius_secret_key = ...
//
// The AWS keys may both be omitted to use the default AWS credential chain.
func LoadCredentials(path string) (*Credentials, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	section, err := file.GetSection("auth")
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no [auth] section", ErrCredentials, path)
	}

	creds := &Credentials{
		AWSAccessKeyID:     strings.TrimSpace(section.Key("aws_access_key_id").String()),
		AWSSecretAccessKey: strings.TrimSpace(section.Key("aws_secret_access_key").String()),
		APIKey:             strings.TrimSpace(section.Key("zaius_secret_key").String()),
	}

	if creds.APIKey == "" {
		return nil, fmt.Errorf("%w: %s has no auth.zaius_secret_key", ErrCredentials, path)
	}
	if (creds.AWSAccessKeyID == "") != (creds.AWSSecretAccessKey == "") {
		return nil, fmt.Errorf("%w: %s must set both aws_access_key_id and aws_secret_access_key", ErrCredentials, path)
	}
	return creds, nil
}
