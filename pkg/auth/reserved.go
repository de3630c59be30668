package auth

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reserved.yaml
var defaultReservedYAML []byte

// ReservedNames lists values that cannot be claimed at signup.
type ReservedNames struct {
	nicknames    map[string]bool
	addresses    map[string]bool
	emailDomains map[string]bool
}

type reservedFile struct {
	Nicknames    []string `yaml:"nicknames"`
	Addresses    []string `yaml:"addresses"`
	EmailDomains []string `yaml:"email_domains"`
}

// DefaultReservedNames returns the built-in list.
func DefaultReservedNames() *ReservedNames {
	r, err := ParseReservedNames(defaultReservedYAML)
	if err != nil {
		panic(fmt.Sprintf("auth: invalid built-in reserved.yaml: %v", err))
	}
	return r
}

// LoadReservedNames reads a YAML file with nicknames, addresses and
// email_domains lists.
func LoadReservedNames(path string) (*ReservedNames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reserved names: %w", err)
	}
	return ParseReservedNames(data)
}

// ParseReservedNames decodes the YAML form of the list.
func ParseReservedNames(data []byte) (*ReservedNames, error) {
	var f reservedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse reserved names: %w", err)
	}
	return &ReservedNames{
		nicknames:    toSet(f.Nicknames),
		addresses:    toSet(f.Addresses),
		emailDomains: toSet(f.EmailDomains),
	}, nil
}

// IsReservedNickname reports whether nickname is reserved, ignoring case.
func (r *ReservedNames) IsReservedNickname(nickname string) bool {
	return r != nil && r.nicknames[strings.ToLower(nickname)]
}

// IsReservedAddress reports whether an address slug is reserved.
func (r *ReservedNames) IsReservedAddress(slug string) bool {
	return r != nil && r.addresses[strings.ToLower(slug)]
}

// IsBlockedEmailDomain reports whether domain is a blocked e-mail provider.
func (r *ReservedNames) IsBlockedEmailDomain(domain string) bool {
	return r != nil && r.emailDomains[strings.ToLower(domain)]
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = true
		}
	}
	return set
}
