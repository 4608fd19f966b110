package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// LoadYAML decodes the YAML file at filePath into out after replacing
// ${VAR_NAME} references with environment values.
func LoadYAML(filePath string, out interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), out); err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}
	return nil
}

// SaveYAML encodes value as YAML into filePath.
func SaveYAML(filePath string, value interface{}) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", filePath)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unset variables become empty.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
