package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgentry/go-netrc/netrc"
	"github.com/m-mizutani/goerr/v2"
)

// BasicAuth is a login/password pair. A nil *BasicAuth means anonymous access.
type BasicAuth struct {
	Machine  string
	Login    string
	Password string `masq:"secret"`
}

// TeamCityCredentialPath returns the TeamCity credential file location:
// $TEAMCITY_CREDENTIALS, else ~/.teamcitycredentials.txt.
func TeamCityCredentialPath() string {
	if p := os.Getenv("TEAMCITY_CREDENTIALS"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".teamcitycredentials.txt")
}

// NetrcPath returns the netrc file location used for LabKey credentials:
// $NETRC, else ~/.netrc.
func NetrcPath() string {
	if p := os.Getenv("NETRC"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".netrc")
}

// LoadTeamCityCredentials reads the TeamCity credential file, a netrc style
// machine/login/password entry for the TeamCity host. A missing file yields
// nil (guest access); an unreadable or incomplete one is an error.
func LoadTeamCityCredentials(path, host string) (*BasicAuth, error) {
	rc, err := netrc.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "there was a problem reading the TeamCity credential file", goerr.V("path", path))
	}

	m := findMachine(rc, host)
	if m == nil || m.Login == "" || m.Password == "" {
		return nil, goerr.New("TeamCity credential file must contain machine, login and password lines",
			goerr.V("path", path),
			goerr.V("host", host),
		)
	}
	return &BasicAuth{Machine: m.Name, Login: m.Login, Password: m.Password}, nil
}

// LoadNetrcCredentials returns the entry of path whose machine matches host
// (with or without port), or nil when the file or entry does not exist.
func LoadNetrcCredentials(path, host string) (*BasicAuth, error) {
	rc, err := netrc.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read netrc file", goerr.V("path", path))
	}

	m := findMachine(rc, host)
	if m == nil {
		return nil, nil
	}
	return &BasicAuth{Machine: m.Name, Login: m.Login, Password: m.Password}, nil
}

// findMachine looks host up with its port first, then without. The default
// entry is used when neither matches.
func findMachine(rc *netrc.Netrc, host string) *netrc.Machine {
	hostname, _, _ := strings.Cut(host, ":")
	if m := rc.FindMachine(host); m != nil && !m.IsDefault() {
		return m
	}
	return rc.FindMachine(hostname)
}

// StorageCredentials are the object storage access keys.
type StorageCredentials struct {
	AccessKeyID string
	SecretKey   string `masq:"secret"`
}

// LoadStorageCredentials reads AWSAccessKeyId=/AWSSecretKey= lines.
func LoadStorageCredentials(path string) (*StorageCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "storage credential file is not available", goerr.V("path", path))
	}

	var creds StorageCredentials
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch {
		case strings.Contains(key, "AWSAccessKeyId"):
			creds.AccessKeyID = strings.TrimSpace(value)
		case strings.Contains(key, "AWSSecretKey"):
			creds.SecretKey = strings.TrimSpace(value)
		}
	}

	if creds.AccessKeyID == "" || creds.SecretKey == "" {
		return nil, goerr.New("storage credential file must define AWSAccessKeyId and AWSSecretKey", goerr.V("path", path))
	}
	return &creds, nil
}

// Export publishes the keys as AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY for the SDK.
func (x *StorageCredentials) Export() error {
	if err := os.Setenv("AWS_ACCESS_KEY_ID", x.AccessKeyID); err != nil {
		return goerr.Wrap(err, "failed to set AWS_ACCESS_KEY_ID")
	}
	if err := os.Setenv("AWS_SECRET_ACCESS_KEY", x.SecretKey); err != nil {
		return goerr.Wrap(err, "failed to set AWS_SECRET_ACCESS_KEY")
	}
	return nil
}
