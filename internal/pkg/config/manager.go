package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
	"github.com/commitpilot/commitpilot/internal/pkg/security"
)

const (
	// DefaultConfigFileName is the ini file looked up next to the executable.
	DefaultConfigFileName = "config.ini"
	// DefaultEnvFileName is the dotenv file looked up in the working directory.
	DefaultEnvFileName = ".env"
	// ConfigPathEnv overrides the config file location.
	ConfigPathEnv = "COMMITPILOT_CONFIG"
)

// Default values.
const (
	DefaultProvider          = ProviderAITunnel
	DefaultBranch            = "master"
	DefaultMaxDiffSize       = 7000
	DefaultHistoryMaxEntries = 100

	DefaultAITunnelBaseURL    = "https://api.aitunnel.ru/v1/"
	DefaultAITunnelModel      = "gpt-4.1"
	DefaultOpenAIModel        = "gpt-4o-mini"
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models/"
	DefaultHuggingFaceModel   = "mistralai/Mixtral-8x7B-Instruct-v0.1"
)

// envBindings maps config keys to environment variables, first match wins.
var envBindings = map[string][]string{
	KeyProvider:         {"COMMITPILOT_PROVIDER"},
	KeyBranch:           {"COMMITPILOT_BRANCH"},
	KeyMaxDiffSize:      {"COMMITPILOT_MAX_DIFF_SIZE"},
	KeyPushFailureFatal: {"COMMITPILOT_PUSH_FAILURE_FATAL"},
	KeyHistoryEnabled:   {"COMMITPILOT_HISTORY_ENABLED"},
	KeyHistoryFile:      {"COMMITPILOT_HISTORY_FILE"},

	"aitunnel_token":    {"AI_TUNNEL", "AITUNNEL_TOKEN"},
	"aitunnel_base_url": {"AITUNNEL_BASE_URL"},
	"aitunnel_model":    {"AITUNNEL_MODEL"},

	"openai_token":    {"OPENAI_API_KEY", "OPENAI_TOKEN"},
	"openai_base_url": {"OPENAI_BASE_URL"},
	"openai_model":    {"OPENAI_MODEL"},

	"huggingface_token":    {"HUGGINGFACE_TOKEN", "HF_TOKEN"},
	"huggingface_base_url": {"HUGGINGFACE_BASE_URL"},
	"huggingface_model":    {"HUGGINGFACE_MODEL"},
}

// ViperManager implements Manager on top of viper. The ini file is parsed
// with go-ini and merged into viper's config layer, so precedence is
// overrides > env > file > defaults.
type ViperManager struct {
	v          *viper.Viper
	configPath string
	envFile    string
}

// NewManager creates a configuration manager.
// If configPath is empty, COMMITPILOT_CONFIG or config.ini next to the
// executable is used.
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		configPath = os.Getenv(ConfigPathEnv)
	}
	if configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
		envFile:    DefaultEnvFileName,
	}, nil
}

// DefaultConfigPath returns config.ini in the directory of the running binary.
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to locate executable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultConfigFileName), nil
}

// bindEnvVars binds every config key to its environment variables.
func bindEnvVars(v *viper.Viper) {
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
}

// setDefaults sets the built-in configuration values.
func setDefaults(v *viper.Viper) {
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		KeyProvider:          DefaultProvider,
		KeyBranch:            DefaultBranch,
		KeyMaxDiffSize:       DefaultMaxDiffSize,
		KeyPushFailureFatal:  false,
		KeyHistoryEnabled:    false,
		KeyHistoryFile:       "",
		KeyHistoryMaxEntries: DefaultHistoryMaxEntries,
		KeyColor:             true,

		"aitunnel_token":    "",
		"aitunnel_base_url": DefaultAITunnelBaseURL,
		"aitunnel_model":    DefaultAITunnelModel,

		"openai_token":    "",
		"openai_base_url": "",
		"openai_model":    DefaultOpenAIModel,

		"huggingface_token":    "",
		"huggingface_base_url": DefaultHuggingFaceBaseURL,
		"huggingface_model":    DefaultHuggingFaceModel,
	}
}

// SetEnvFile changes the dotenv file read by Load. An empty path disables it.
func (m *ViperManager) SetEnvFile(path string) {
	m.envFile = path
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// Load resolves the effective settings and validates them.
func (m *ViperManager) Load() (*Settings, error) {
	if err := m.resolve(); err != nil {
		return nil, err
	}

	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to decode configuration")
	}

	s.ProviderName = strings.ToLower(strings.TrimSpace(s.ProviderName))
	s.Branch = strings.TrimSpace(s.Branch)
	s.Providers = make(map[string]ProviderSettings, len(KnownProviders))
	for _, name := range KnownProviders {
		s.Providers[name] = ProviderSettings{
			Name:    name,
			Token:   strings.TrimSpace(m.v.GetString(ProviderKey(name, "token"))),
			BaseURL: strings.TrimSpace(m.v.GetString(ProviderKey(name, "base_url"))),
			Model:   strings.TrimSpace(m.v.GetString(ProviderKey(name, "model"))),
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// resolve reads .env and the config file into viper. Load, Get and List
// all see the same sources.
func (m *ViperManager) resolve() error {
	if err := m.loadEnvFile(); err != nil {
		return err
	}
	return m.readConfigFile()
}

// loadEnvFile loads .env into the process environment. Variables that are
// already set keep their values.
func (m *ViperManager) loadEnvFile() error {
	if m.envFile == "" {
		return nil
	}
	if err := godotenv.Load(m.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, fmt.Sprintf("failed to read %s", m.envFile))
	}
	apperrors.Debug("loaded environment from %s", m.envFile)
	return nil
}

// readConfigFile merges the [DEFAULT] section of the ini file into viper.
// A missing file is not an error.
func (m *ViperManager) readConfigFile() error {
	values, err := readIniFile(m.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			apperrors.Debug("config file %s not found, using defaults", m.configPath)
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, fmt.Sprintf("failed to read config file %s", m.configPath))
	}
	if err := m.v.MergeConfigMap(values); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to merge config file")
	}
	return nil
}

func readIniFile(path string) (map[string]interface{}, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]interface{})
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		values[strings.ToLower(key.Name())] = key.Value()
	}
	return values, nil
}

// Init writes a config file populated with defaults.
// The file is created with mode 0600 since it may hold tokens.
func (m *ViperManager) Init() error {
	if m.ConfigExists() {
		return apperrors.New(apperrors.ErrInvalidArguments, fmt.Sprintf("config file already exists at %s", m.configPath))
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create config directory")
	}

	file := ini.Empty()
	section := file.Section(ini.DefaultSection)
	for _, key := range fileKeys() {
		if _, err := section.NewKey(key, fmt.Sprintf("%v", defaultValues()[key])); err != nil {
			return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to build config file")
		}
	}

	return m.writeIni(file)
}

// fileKeys lists the keys written by Init, in file order.
func fileKeys() []string {
	return []string{
		KeyProvider,
		"aitunnel_token", "aitunnel_base_url", "aitunnel_model",
		"openai_token", "openai_base_url", "openai_model",
		"huggingface_token", "huggingface_base_url", "huggingface_model",
		KeyBranch,
		KeyMaxDiffSize,
		KeyPushFailureFatal,
		KeyHistoryEnabled,
		KeyHistoryMaxEntries,
	}
}

func (m *ViperManager) writeIni(file *ini.File) error {
	f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write config file")
	}
	defer f.Close()

	if _, err := file.WriteTo(f); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write config file")
	}
	return nil
}

// Set writes one key to the [DEFAULT] section of the config file, creating
// the file if needed. Other keys and comments are preserved.
func (m *ViperManager) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := defaultValues()[key]; !ok {
		return apperrors.New(apperrors.ErrInvalidArguments, fmt.Sprintf("unknown config key: %s", key)).
			WithSuggestion("Run 'commitpilot config list' to see available keys")
	}
	if key == KeyProvider && !IsKnownProvider(strings.ToLower(value)) {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider %q", value))
	}

	file := ini.Empty()
	if m.ConfigExists() {
		loaded, err := ini.Load(m.configPath)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to read config file")
		}
		file = loaded
	} else if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to create config directory")
	}

	file.Section(ini.DefaultSection).Key(key).SetValue(value)
	if err := m.writeIni(file); err != nil {
		return err
	}

	m.v.Set(key, value)
	return nil
}

// Get returns the effective value of a key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.resolve(); err != nil {
		return "", err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if !m.v.IsSet(key) {
		return "", apperrors.New(apperrors.ErrInvalidArguments, fmt.Sprintf("key not found: %s", key))
	}
	return m.v.GetString(key), nil
}

// List returns all effective configuration values. Tokens are masked.
func (m *ViperManager) List() (map[string]interface{}, error) {
	if err := m.resolve(); err != nil {
		return nil, err
	}

	all := make(map[string]interface{})
	for _, key := range m.v.AllKeys() {
		value := m.v.Get(key)
		if strings.HasSuffix(key, "_token") {
			if s := fmt.Sprintf("%v", value); s != "" {
				value = security.MaskAPIKey(s)
			}
		}
		all[key] = value
	}
	return all, nil
}

// SortedKeys returns the keys of a List result in stable order.
func SortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetOverride sets a temporary override for a configuration key.
// This is used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}
