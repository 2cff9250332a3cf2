// internal/app/system/diff/messages.go
package diff

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var messagesYAML []byte

type message struct {
	EN string `yaml:"en"`
	FR string `yaml:"fr"`
}

var catalog = mustLoadCatalog(messagesYAML)

func mustLoadCatalog(b []byte) map[string]message {
	m, err := loadCatalog(b)
	if err != nil {
		panic(err)
	}
	return m
}

func loadCatalog(b []byte) (map[string]message, error) {
	var m map[string]message
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("diff: parse messages: %w", err)
	}
	for key, msg := range m {
		if msg.EN == "" || msg.FR == "" {
			return nil, fmt.Errorf("diff: message %q is missing a translation", key)
		}
	}
	return m, nil
}

// render formats one catalog entry. An empty value renders as "(none)" in
// the matching language.
func render(key, value string) (en, fr string) {
	msg, ok := catalog[key]
	if !ok {
		return value, value
	}
	enVal, frVal := value, value
	if strings.TrimSpace(value) == "" {
		enVal, frVal = catalog["none"].EN, catalog["none"].FR
	}
	return fmt.Sprintf(msg.EN, enVal), fmt.Sprintf(msg.FR, frVal)
}
