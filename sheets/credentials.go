package sheets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials is the subset of a Google service account key the service
// needs to authenticate against the Sheets API.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentials reads a service account key file in the JSON format
// Google issues for service accounts.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := ParseCredentials(data)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return creds, nil
}

// ParseCredentials decodes a service account key from JSON.
func ParseCredentials(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

// Validate checks that the fields needed for signing token requests are present.
func (c *Credentials) Validate() error {
	if c.ClientEmail == "" {
		return fmt.Errorf("sheets credentials: client_email is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("sheets credentials: private_key is required")
	}
	return nil
}
