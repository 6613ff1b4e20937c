package universe

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed nifty50.yaml
var defaultYAML []byte

// Universe is the fixed, ordered ticker list the fetcher walks
// ⭐ SSOT: 종목 목록은 여기서만 정의
type Universe struct {
	Name     string   `yaml:"name" json:"name"`
	Exchange string   `yaml:"exchange" json:"exchange"`
	Symbols  []string `yaml:"symbols" json:"symbols"`
}

// Default returns the embedded NIFTY 50 list
func Default() *Universe {
	u, err := Parse(defaultYAML)
	if err != nil {
		// embedded file is validated by tests
		panic(fmt.Sprintf("embedded universe is invalid: %v", err))
	}
	return u
}

// Load reads a universe YAML file
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Resolve returns the override at path, or the default when path is empty
func Resolve(path string) (*Universe, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates universe YAML
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func Parse(data []byte) (*Universe, error) {
	var u Universe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode universe: %w", err)
	}

	if err := Validate(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Hash identifies the universe content (canonical JSON, SHA256)
func (u *Universe) Hash() (string, error) {
	jsonBytes, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Len returns the number of symbols
func (u *Universe) Len() int {
	return len(u.Symbols)
}
