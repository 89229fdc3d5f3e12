package sql

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Credentials are the database login details.
type Credentials struct {
	User     string
	Password string
}

// LoadCredentials reads user and password from the [client] section of a
// MySQL option file. An empty path yields empty credentials.
func LoadCredentials(path string) (Credentials, error) {
	if path == "" {
		return Credentials{}, nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
		IgnoreInlineComment:     true,
	}, path)
	if err != nil {
		return Credentials{}, fmt.Errorf("loading option file %s: %w", path, err)
	}

	client := cfg.Section("client")
	creds := Credentials{
		User:     client.Key("user").String(),
		Password: client.Key("password").String(),
	}
	if creds.User == "" {
		return Credentials{}, fmt.Errorf("option file %s: no user in [client] section", path)
	}
	return creds, nil
}
