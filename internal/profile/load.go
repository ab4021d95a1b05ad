package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load reads a profile file in any format viper understands (YAML, TOML,
// JSON). The profile is normalised and validated before it is returned.
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("profile: reading %s: %w", path, err)
	}
	return decode(v, path)
}

// Parse decodes a profile held in memory. typ is the format name
// as accepted by viper.SetConfigType, eg. "yaml".
func Parse(typ string, content string) (*Profile, error) {
	v := viper.New()
	v.SetConfigType(typ)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return decode(v, "")
}

func decode(v *viper.Viper, path string) (*Profile, error) {
	var p Profile
	err := v.Unmarshal(&p, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("profile: decoding %s: %w", path, err)
	}

	if p.Name == "" && path != "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	p.Normalise()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %s: %w", p.Name, err)
	}
	return &p, nil
}
