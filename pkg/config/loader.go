package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override settings
const EnvPrefix = "STOWAWAY_"

// LoadOptions selects the files Load reads
type LoadOptions struct {
	// UserConfig overrides the default user config location. A missing file is not an error.
	UserConfig string
	// Descriptor is the deployment descriptor. Empty loads settings only.
	Descriptor string
}

// UserConfigPath returns where the user config file lives
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "stowaway", "config.toml")
}

// Load merges every configuration source. The descriptor is nil when
// opts.Descriptor is empty.
func Load(opts LoadOptions) (*Config, *Descriptor, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	userConfig := opts.UserConfig
	if userConfig == "" {
		userConfig = UserConfigPath()
	}
	if _, err := os.Stat(userConfig); err == nil {
		if err := k.Load(file.Provider(userConfig), toml.Parser()); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load user config").WithDetail("path", userConfig)
		}
		logger.Debug().Str("path", userConfig).Msg("Loaded user config")
	}

	// 3. Deployment descriptor
	if opts.Descriptor != "" {
		parser, err := parserFor(opts.Descriptor)
		if err != nil {
			return nil, nil, err
		}
		if _, err := os.Stat(opts.Descriptor); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot read descriptor").WithDetail("path", opts.Descriptor)
		}
		if err := k.Load(file.Provider(opts.Descriptor), parser); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load descriptor").WithDetail("path", opts.Descriptor)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	var cfg Config
	if err := unmarshal(k, &cfg); err != nil {
		return nil, nil, err
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, nil, err
	}

	if opts.Descriptor == "" {
		return &cfg, nil, nil
	}

	var desc Descriptor
	if err := unmarshal(k, &desc); err != nil {
		return nil, nil, err
	}
	resolvePaths(&desc, filepath.Dir(opts.Descriptor))
	if err := Validate(&desc); err != nil {
		return nil, nil, err
	}

	logger.Debug().
		Str("descriptor", opts.Descriptor).
		Str("bundle", desc.Bundle.Name).
		Str("dest", desc.Destination).
		Msg("Loaded descriptor")
	return &cfg, &desc, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.New(errors.ErrConfigParse, "descriptor must be a .toml, .yaml or .yml file").WithDetail("path", path)
	}
}

// envKey maps STOWAWAY_STORE_BACKEND to store.backend. Only the first
// underscore separates the section so field names keep theirs.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

func unmarshal(k *koanf.Koanf, out interface{}) error {
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", out, conf); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.BadgerPath == "" {
		cfg.Store.BadgerPath = filepath.Join(xdg.DataHome, "stowaway", "db")
	}
	if cfg.Store.BackupRoot == "" {
		cfg.Store.BackupRoot = filepath.Join(xdg.DataHome, "stowaway", "backups")
	}
}

// resolvePaths makes descriptor paths relative to the descriptor's directory
func resolvePaths(d *Descriptor, base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	d.Destination = abs(d.Destination)
	for i := range d.Archives {
		d.Archives[i].Path = abs(d.Archives[i].Path)
	}
	for i := range d.RawFiles {
		d.RawFiles[i].Source = abs(d.RawFiles[i].Source)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks struct tags of a Config or Descriptor
func Validate(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		wrapped := errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			wrapped = wrapped.WithDetail("field", fieldErrs[0].Namespace()).WithDetail("rule", fieldErrs[0].Tag())
		}
		return wrapped
	}
	return nil
}
