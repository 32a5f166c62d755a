package reader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tosih/motor-curve-tool/pkg/models"
)

// ErrUnknownFormat is returned for file extensions other than .json, .yaml
// and .yml.
var ErrUnknownFormat = errors.New("unknown motor file format")

// Format is a motor file encoding.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatOf picks the encoding from the file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return JSON, fmt.Errorf("%s: %w", filename, ErrUnknownFormat)
}

// ReadMotor loads and validates a motor definition file.
func ReadMotor(filename string) (*models.Motor, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// Decode parses and validates a motor definition.
func Decode(data []byte, format Format) (*models.Motor, error) {
	m := &models.Motor{}
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, m); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(m); err != nil {
			return nil, err
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.ShowAll()
	return m, nil
}
