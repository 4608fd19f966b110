package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/compression"
	jsonpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/json"
)

// Definition file formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatForPath picks the definition format from a file extension, looking
// past a compression suffix such as .gz or .zst.
func FormatForPath(path string) (string, error) {
	base := path
	if a := compression.DetectAlgorithm(path); a != compression.None {
		base = path[:len(path)-len(compression.Extension(a))]
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", commonerrors.Newf(commonerrors.ErrorTypeFile, "unsupported definition file: %s", path)
	}
}

// LoadFile reads and validates a definition file. Files with a compression
// suffix are decompressed first.
func LoadFile(path string) (*Definition, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "failed to read definition file").
			WithDetail("file", path)
	}
	if a := compression.DetectAlgorithm(path); a != compression.None {
		if data, err = compression.Decompress(data, a); err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "failed to decompress definition file").
				WithDetail("file", path)
		}
	}

	d, err := Parse(data, format)
	if err != nil {
		var e *commonerrors.Error
		if errors.As(err, &e) {
			e.WithDetail("file", path)
		}
		return nil, err
	}
	return d, nil
}

// Parse decodes and validates a definition.
func Parse(data []byte, format string) (*Definition, error) {
	var d Definition

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to parse YAML definition")
		}
	case FormatJSON:
		if err := jsonpool.Unmarshal(data, &d); err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to parse JSON definition")
		}
	default:
		return nil, commonerrors.Newf(commonerrors.ErrorTypeArgument, "unsupported definition format: %s", format)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes a definition.
func Marshal(d *Definition, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to encode YAML definition")
		}
		return data, nil
	case FormatJSON:
		data, err := jsonpool.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeData, "failed to encode JSON definition")
		}
		return data, nil
	default:
		return nil, commonerrors.Newf(commonerrors.ErrorTypeArgument, "unsupported definition format: %s", format)
	}
}

// SaveFile writes a definition in the format its extension names,
// compressed when the name carries a compression suffix.
func SaveFile(path string, d *Definition) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(d, format)
	if err != nil {
		return err
	}
	if a := compression.DetectAlgorithm(path); a != compression.None {
		if data, err = compression.Compress(data, a, compression.Default); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeFile, "failed to write definition file").
			WithDetail("file", path)
	}
	return nil
}
