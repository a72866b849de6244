package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// clearEnv unsets every variable the manager reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envBindings {
		for _, name := range names {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

// newTestManager returns a manager for a config file in a temp dir with
// .env loading disabled.
func newTestManager(t *testing.T) (*ViperManager, string) {
	t.Helper()
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.ini")
	mgr, err := NewManager(configPath)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr.SetEnvFile("")
	return mgr, configPath
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	mgr, _ := newTestManager(t)

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.ProviderName != ProviderAITunnel {
		t.Errorf("provider = %q, want aitunnel", s.ProviderName)
	}
	if s.Branch != "master" {
		t.Errorf("branch = %q, want master", s.Branch)
	}
	if s.MaxDiffSize != 7000 {
		t.Errorf("max_diff_size = %d, want 7000", s.MaxDiffSize)
	}
	if s.PushFailureFatal {
		t.Error("push failures should be non-fatal by default")
	}
	if s.HistoryEnabled {
		t.Error("history should be disabled by default")
	}

	p := s.Provider()
	if p.BaseURL != DefaultAITunnelBaseURL || p.Model != DefaultAITunnelModel {
		t.Errorf("aitunnel settings = %+v", p)
	}
	if p.HasToken() {
		t.Error("no token should be configured by default")
	}
}

func TestLoad_IniFile(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, `[DEFAULT]
api_provider = openai
openai_token = sk-file-token
openai_model = gpt-4o
branch = main
max_diff_size = 1200
push_failure_fatal = true
`)

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.ProviderName != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", s.ProviderName)
	}
	if s.Branch != "main" || s.MaxDiffSize != 1200 || !s.PushFailureFatal {
		t.Errorf("unexpected settings: %+v", s)
	}
	p := s.Provider()
	if p.Token != "sk-file-token" || p.Model != "gpt-4o" {
		t.Errorf("openai settings = %+v", p)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "[DEFAULT]\naitunnel_token = file-token\nbranch = main\n")

	t.Setenv("AI_TUNNEL", "env-token")
	t.Setenv("COMMITPILOT_BRANCH", "develop")

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Provider().Token; got != "env-token" {
		t.Errorf("token = %q, want env-token", got)
	}
	if s.Branch != "develop" {
		t.Errorf("branch = %q, want develop", s.Branch)
	}
}

func TestLoad_AlternateEnvNames(t *testing.T) {
	mgr, _ := newTestManager(t)
	t.Setenv("COMMITPILOT_PROVIDER", "huggingface")
	t.Setenv("HF_TOKEN", "hf_secret")

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ProviderName != ProviderHuggingFace {
		t.Errorf("provider = %q", s.ProviderName)
	}
	if got := s.Provider().Token; got != "hf_secret" {
		t.Errorf("token = %q, want hf_secret", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeConfig(t, envPath, "AI_TUNNEL=dotenv-token\nAITUNNEL_MODEL=gpt-4.1-mini\n")

	mgr, err := NewManager(filepath.Join(dir, "config.ini"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr.SetEnvFile(envPath)

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := s.Provider()
	if p.Token != "dotenv-token" || p.Model != "gpt-4.1-mini" {
		t.Errorf("aitunnel settings = %+v", p)
	}
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeConfig(t, envPath, "AI_TUNNEL=dotenv-token\n")
	t.Setenv("AI_TUNNEL", "process-token")

	mgr, err := NewManager(filepath.Join(dir, "config.ini"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr.SetEnvFile(envPath)

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Provider().Token; got != "process-token" {
		t.Errorf("token = %q, want process-token", got)
	}
}

func TestLoad_MissingDotEnvIsNotAnError(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))

	if _, err := mgr.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "[DEFAULT]\napi_provider = gemini\n"},
		{"zero diff size", "[DEFAULT]\nmax_diff_size = 0\n"},
		{"negative diff size", "[DEFAULT]\nmax_diff_size = -5\n"},
		{"empty branch", "[DEFAULT]\nbranch =\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, path := newTestManager(t)
			writeConfig(t, path, tt.body)

			_, err := mgr.Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperrors.HasCode(err, apperrors.ErrInvalidConfig) {
				t.Errorf("expected config error, got %v", err)
			}
			if apperrors.GetExitCode(err) == 0 {
				t.Error("config errors must exit non-zero")
			}
		})
	}
}

func TestLoad_ProviderNameNormalized(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "[DEFAULT]\napi_provider =  OpenAI \n")

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ProviderName != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", s.ProviderName)
	}
}

func TestInit(t *testing.T) {
	mgr, path := newTestManager(t)

	if err := mgr.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config mode = %o, want 0600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"api_provider", "aitunnel_base_url", "max_diff_size"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}

	if err := mgr.Init(); err == nil {
		t.Error("second Init should fail when the file exists")
	}

	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	if s.ProviderName != ProviderAITunnel || s.MaxDiffSize != DefaultMaxDiffSize {
		t.Errorf("unexpected settings after Init: %+v", s)
	}
}

func TestSetAndGet(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "# managed by hand\n[DEFAULT]\nbranch = main\n")

	if err := mgr.Set("openai_model", "gpt-4o"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := mgr.Get("openai_model")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "gpt-4o" {
		t.Errorf("Get = %q, want gpt-4o", got)
	}

	fresh, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	fresh.SetEnvFile("")
	s, err := fresh.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Branch != "main" {
		t.Errorf("existing key lost, branch = %q", s.Branch)
	}
	if s.Providers[ProviderOpenAI].Model != "gpt-4o" {
		t.Errorf("openai model = %q", s.Providers[ProviderOpenAI].Model)
	}
}

func TestSet_RejectsUnknown(t *testing.T) {
	mgr, _ := newTestManager(t)

	if err := mgr.Set("no_such_key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := mgr.Set(KeyProvider, "gemini"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestList_MasksTokens(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "[DEFAULT]\nopenai_token = sk-abcdefghijklmnop\n")

	all, err := mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := all["openai_token"]; got != "***************mnop" {
		t.Errorf("openai_token = %v, want masked", got)
	}
	if got := all["aitunnel_token"]; got != "" {
		t.Errorf("empty token should stay empty, got %v", got)
	}

	keys := SortedKeys(all)
	if len(keys) == 0 || keys[0] > keys[len(keys)-1] {
		t.Errorf("keys not sorted: %v", keys)
	}
}

func TestList_MalformedConfig(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "[DEFAULT\nbranch = main\n")

	_, err := mgr.List()
	if !apperrors.HasCode(err, apperrors.ErrInvalidConfig) {
		t.Fatalf("List error = %v, want invalid config", err)
	}
	if _, err := mgr.Get(KeyBranch); !apperrors.HasCode(err, apperrors.ErrInvalidConfig) {
		t.Errorf("Get error = %v, want invalid config", err)
	}
}

func TestGetAndList_ReadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeConfig(t, envPath, "OPENAI_MODEL=gpt-from-dotenv\n")

	mgr, err := NewManager(filepath.Join(dir, "config.ini"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr.SetEnvFile(envPath)

	got, err := mgr.Get("openai_model")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "gpt-from-dotenv" {
		t.Errorf("Get = %q, want gpt-from-dotenv", got)
	}

	all, err := mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all["openai_model"] != "gpt-from-dotenv" {
		t.Errorf("List openai_model = %v", all["openai_model"])
	}
}

// TestSetOverrideDoesNotPersist verifies that SetOverride doesn't persist to the config file.
func TestSetOverrideDoesNotPersist(t *testing.T) {
	mgr, path := newTestManager(t)
	writeConfig(t, path, "[DEFAULT]\napi_provider = openai\n")

	mgr.SetOverride(KeyProvider, "huggingface")
	s, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ProviderName != ProviderHuggingFace {
		t.Errorf("override not applied, got %q", s.ProviderName)
	}

	mgr2, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	mgr2.SetEnvFile("")
	s2, err := mgr2.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s2.ProviderName != ProviderOpenAI {
		t.Errorf("Override persisted to file! Expected openai, got %q", s2.ProviderName)
	}
}

func TestNewManager_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.ini")
	t.Setenv(ConfigPathEnv, path)

	mgr, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if mgr.GetConfigPath() != path {
		t.Errorf("config path = %q, want %q", mgr.GetConfigPath(), path)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if filepath.Base(path) != DefaultConfigFileName {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

// genBranchName generates lowercase branch names.
func genBranchName() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.Rune()).Map(func(runes []rune) string {
			for i := range runes {
				runes[i] = 'a' + (runes[i] % 26)
			}
			return string(runes)
		})
	}, reflect.TypeOf(""))
}

// Property: for a key set at several levels the highest level wins:
// flags > env > file > defaults.
func TestConfigPrecedence_Property(t *testing.T) {
	clearEnv(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	load := func(path string, override string) (*Settings, error) {
		mgr, err := NewManager(path)
		if err != nil {
			return nil, err
		}
		mgr.SetEnvFile("")
		if override != "" {
			mgr.SetOverride(KeyBranch, override)
		}
		return mgr.Load()
	}

	properties.Property("file beats defaults, env beats file, flag beats env", prop.ForAll(
		func(fileBranch, envBranch, flagBranch string, size int) bool {
			path := filepath.Join(t.TempDir(), "config.ini")
			body := "[DEFAULT]\nbranch = " + fileBranch + "\nmax_diff_size = " + strconv.Itoa(size) + "\n"
			if err := os.WriteFile(path, []byte(body), 0600); err != nil {
				return false
			}

			s, err := load(path, "")
			if err != nil || s.Branch != fileBranch || s.MaxDiffSize != size {
				return false
			}

			os.Setenv("COMMITPILOT_BRANCH", envBranch)
			defer os.Unsetenv("COMMITPILOT_BRANCH")

			s, err = load(path, "")
			if err != nil || s.Branch != envBranch {
				return false
			}

			s, err = load(path, flagBranch)
			return err == nil && s.Branch == flagBranch
		},
		genBranchName(),
		genBranchName(),
		genBranchName(),
		gen.IntRange(1, 100000),
	))

	properties.TestingRun(t)
}
