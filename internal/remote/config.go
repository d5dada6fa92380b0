// Package remote implements the external-sync collaborator: the session
// configuration, the HTTP client that pushes single-cell deltas to the sheet
// host, the adapter that plugs into the document store, and the websocket
// stream on which the host pushes authoritative full-document refreshes.
package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Config describes one remote sheet session. Credential acquisition is out of
// scope; the config file carries an already-issued bearer token.
type Config struct {
	BaseURL   string `json:"baseUrl"`
	Token     string `json:"token"`
	SheetID   string `json:"sheetId"`
	StreamURL string `json:"streamUrl,omitempty"`
}

const configSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["baseUrl", "token", "sheetId"],
	"properties": {
		"baseUrl": {"type": "string", "minLength": 1},
		"token": {"type": "string", "minLength": 1},
		"sheetId": {"type": "string", "minLength": 1},
		"streamUrl": {"type": "string"}
	},
	"additionalProperties": false
}`

var compileConfigSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("config.schema.json")
})

// LoadConfig reads and validates a session config file. The path may be
// absolute, ~-prefixed, or relative to the working directory.
func LoadConfig(path string) (Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig validates raw JSON against the session schema before decoding,
// so a typo in a field name fails loudly instead of silently dropping the
// credential.
func ParseConfig(data []byte) (Config, error) {
	schema, err := compileConfigSchema()
	if err != nil {
		return Config{}, err
	}
	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return Config{}, fmt.Errorf("config is not valid JSON: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return Config{}, fmt.Errorf("config does not match schema: %w", err)
	}
	object, ok := instance.(map[string]any)
	if !ok {
		return Config{}, fmt.Errorf("config must be a JSON object")
	}
	cfg := Config{
		BaseURL:   strings.TrimRight(strings.TrimSpace(asString(object["baseUrl"])), "/"),
		Token:     strings.TrimSpace(asString(object["token"])),
		SheetID:   strings.TrimSpace(asString(object["sheetId"])),
		StreamURL: strings.TrimSpace(asString(object["streamUrl"])),
	}
	return cfg, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// ExpandPath resolves ~-prefixed and relative paths against the home and
// working directories respectively.
func ExpandPath(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty path")
	}
	switch {
	case strings.HasPrefix(input, "~"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(input, "~"), string(filepath.Separator))), nil
	case filepath.IsAbs(input):
		return filepath.Clean(input), nil
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, input), nil
	}
}
