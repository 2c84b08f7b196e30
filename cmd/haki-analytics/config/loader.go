package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/securefile"
)

const EnvPrefix = "HAKI"

type ServerSettings struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type ChainSettings struct {
	Name             string
	ChainID          uint64
	RPCURL           string
	CurrencyName     string
	CurrencySymbol   string
	CurrencyDecimals int
}

type WalletSettings struct {
	ProviderURL  string
	PollInterval time.Duration
}

type ContractSettings struct {
	Organization string
	User         string
}

type EndpointSettings struct {
	BaseURL string
	Timeout time.Duration
}

type DisplaySettings struct {
	DateLayout string
	TimeZone   string
}

type Config struct {
	Server    ServerSettings
	Chain     ChainSettings
	Wallet    WalletSettings
	Contracts ContractSettings
	Registry  EndpointSettings
	HakiLens  EndpointSettings `mapstructure:"HakiLens"`
	Display   DisplaySettings
}

// SearchPaths lists the directories searched for config.yaml, in priority order:
// the per-user config dirs (with the HAKI_ENV subfolder), ~/config, then ".".
func SearchPaths() ([]string, error) {
	candidates, err := securefile.ConfigPathCandidates(constants.AppName, constants.ConfigFile)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(candidates)+2)
	for _, c := range candidates {
		paths = append(paths, filepath.Dir(c))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "config"))
	}
	return append(paths, "."), nil
}

// Load reads the embedded defaults, merges the first config.yaml found on the search
// paths and applies HAKI_* environment overrides.
func Load() (*Config, error) {
	paths, err := SearchPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

func LoadFrom(paths []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	v.SetConfigName(strings.TrimSuffix(constants.ConfigFile, filepath.Ext(constants.ConfigFile)))
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("merge config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize trims every field, fills the registry endpoints from the built-in defaults
// when empty, puts contract addresses into checksummed form and validates the rest.
func (c *Config) Normalize() error {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Server.Port = strings.TrimSpace(c.Server.Port)
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == "" {
		c.Server.Port = constants.DefaultPort
	}

	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	for _, o := range c.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.AllowedOrigins = origins

	c.Chain.Name = strings.TrimSpace(c.Chain.Name)
	c.Chain.RPCURL = strings.TrimSpace(c.Chain.RPCURL)
	if c.Chain.ChainID == 0 {
		return fmt.Errorf("Chain.ChainID must be set")
	}
	if err := requireURL("Chain.RPCURL", c.Chain.RPCURL); err != nil {
		return err
	}

	c.Wallet.ProviderURL = strings.TrimSpace(c.Wallet.ProviderURL)
	if c.Wallet.PollInterval < 0 {
		return fmt.Errorf("Wallet.PollInterval must not be negative")
	}

	var err error
	if c.Contracts.Organization, err = canonicalAddress("Contracts.Organization", c.Contracts.Organization, constants.OrgRegistryAddr); err != nil {
		return err
	}
	if c.Contracts.User, err = canonicalAddress("Contracts.User", c.Contracts.User, constants.UserRegistryAddr); err != nil {
		return err
	}

	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = constants.RegistryBaseURL
	}
	if err := requireURL("Registry.BaseURL", c.Registry.BaseURL); err != nil {
		return err
	}
	// HakiLens is optional; an empty base disables the case commands.
	c.HakiLens.BaseURL = strings.TrimRight(strings.TrimSpace(c.HakiLens.BaseURL), "/")
	if c.HakiLens.BaseURL != "" {
		if err := requireURL("HakiLens.BaseURL", c.HakiLens.BaseURL); err != nil {
			return err
		}
	}

	c.Display.DateLayout = strings.TrimSpace(c.Display.DateLayout)
	if c.Display.DateLayout == "" {
		c.Display.DateLayout = constants.DateLayout
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Display.TimeZone. "" and "Local" mean the machine's zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Display.TimeZone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("Display.TimeZone %q: %w", tz, err)
	}
	return loc, nil
}

func (c *Config) OrganizationContract() common.Address {
	return common.HexToAddress(c.Contracts.Organization)
}

func (c *Config) UserContract() common.Address {
	return common.HexToAddress(c.Contracts.User)
}

func canonicalAddress(field, raw, def string) (string, error) {
	a := strings.TrimSpace(raw)
	if a == "" {
		a = def
	}
	if !strings.HasPrefix(a, "0x") && !strings.HasPrefix(a, "0X") {
		a = "0x" + a
	}
	if !common.IsHexAddress(a) {
		return "", fmt.Errorf("%s invalid address: %q", field, raw)
	}
	// canonical form: checksummed hex string
	return common.HexToAddress(a).Hex(), nil
}

func requireURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
