package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"rangecss/fluid"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	RangeConfig struct {
		RootRem   float64 `yaml:"root_rem" validate:"gt=0"`
		Prefix    string  `yaml:"prefix" validate:"required,printascii"`
		ScreenMin string  `yaml:"screen_min" validate:"required"`
		ScreenMax string  `yaml:"screen_max" validate:"required"`
		Clamp     bool    `yaml:"clamp"`
	}

	OutputConfig struct {
		Suffix                string `yaml:"suffix" validate:"excludesall=/\\"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Range     RangeConfig    `yaml:"range"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Options returns resolver options described by range section.
func (conf *RangeConfig) Options() fluid.Options {
	return fluid.Options{
		RootRem:   conf.RootRem,
		Prefix:    conf.Prefix,
		ScreenMin: conf.ScreenMin,
		ScreenMax: conf.ScreenMax,
		Clamp:     conf.Clamp,
	}
}

// checkRange makes sure default screen sizes are unit bearing dimensions and
// prefix could be used as function name.
func checkRange(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	for _, f := range []struct {
		name, value string
	}{
		{"ScreenMin", cfg.Range.ScreenMin},
		{"ScreenMax", cfg.Range.ScreenMax},
	} {
		if d, err := fluid.ParseDimension(f.value); err != nil || d.IsRatio() {
			sl.ReportError(f.value, f.name, f.name, "dimension", "")
		}
	}
	if strings.ContainsAny(cfg.Range.Prefix, "() \t,") {
		sl.ReportError(cfg.Range.Prefix, "Prefix", "Prefix", "function_name", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkRange)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults,
// overlays values from the file at path (if any) and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
