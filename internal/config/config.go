package config

import (
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Telegram TelegramConfig `koanf:"telegram"`
	Store    StoreConfig    `koanf:"store"`
	Ingress  IngressConfig  `koanf:"ingress"`
	Relay    RelayConfig    `koanf:"relay"`
}

type ServerConfig struct {
	LogLevel string `koanf:"log_level"`
}

type TelegramConfig struct {
	BotToken      string `koanf:"bot_token"`
	UpdateTimeout int    `koanf:"update_timeout"`
}

type StoreConfig struct {
	DataDir      string `koanf:"data_dir"`
	LockTimeout  string `koanf:"lock_timeout"`
	LockRetry    string `koanf:"lock_retry"`
	LockMaxRetry int    `koanf:"lock_max_retry"`
}

type IngressConfig struct {
	QueueSize     int    `koanf:"queue_size"`
	SubmitTimeout string `koanf:"submit_timeout"`
}

type RelayConfig struct {
	OversightRole  string                `koanf:"oversight_role"`
	AdminRoles     []string              `koanf:"admin_roles"`
	Roles          map[string]RoleConfig `koanf:"roles"`
	Targets        map[string][]string   `koanf:"targets"`
	Triggers       map[string][]string   `koanf:"triggers"`
	InteractionTTL string                `koanf:"interaction_ttl"`
	SweepInterval  string                `koanf:"sweep_interval"`
	SendTimeout    string                `koanf:"send_timeout"`
}

type RoleConfig struct {
	DisplayName string  `koanf:"display_name"`
	Members     []int64 `koanf:"members"`
}

const (
	DefaultServerLogLevel        = "info"
	DefaultTelegramUpdateTimeout = 60
	DefaultStoreLockTimeout      = "10s"
	DefaultStoreLockRetry        = "100ms"
	DefaultStoreLockMaxRetry     = 100
	DefaultIngressQueueSize      = 100
	DefaultIngressSubmitTimeout  = "500ms"
	DefaultOversightRole         = "tara_team"
	DefaultInteractionTTL        = "15m"
	DefaultSweepInterval         = "1m"
	DefaultSendTimeout           = "10s"
)

// DefaultRoles returns the compiled-in role membership. Role membership is
// configuration, never mutated at runtime; a member may appear in more than
// one role, which triggers the disambiguation workflow.
func DefaultRoles() map[string]RoleConfig {
	return map[string]RoleConfig{
		"writer": {
			DisplayName: "Writer Team",
			Members: []int64{
				7491629866, 7030185248, 1414370194, 585812065,
				6969704654, 1162719050, 6377619159, 935602501,
				6702007291, 6554665,
			},
		},
		"mcqs_team": {
			DisplayName: "MCQs Team",
			Members:     []int64{6690281336, 11111, 65456664},
		},
		"checker_team": {
			DisplayName: "Editor Team",
			Members:     []int64{591536381, 1414370194, 65556765, 523278185, 933155332},
		},
		"word_team": {
			DisplayName: "Digital Writers",
			Members:     []int64{7491629866, 758645645, 65557544},
		},
		"design_team": {
			DisplayName: "Design Team",
			Members:     []int64{7030185248, 7354567, 65445},
		},
		"king_team": {
			DisplayName: "Admin Team",
			Members:     []int64{56676, 73545678, 6898449897},
		},
		"tara_team": {
			DisplayName: "Tara Team",
			Members:     []int64{137745730, 6177929931, 333135898, 6898449897},
		},
		"mind_map_form_creator": {
			DisplayName: "Mind Map & Form Creation Team",
			Members:     []int64{1703780092, 7655565},
		},
	}
}

// DefaultTargets returns the default routing edges: sending role -> roles
// that receive its traffic.
func DefaultTargets() map[string][]string {
	return map[string][]string{
		"writer":       {"mcqs_team", "checker_team", "tara_team"},
		"mcqs_team":    {"design_team", "tara_team"},
		"checker_team": {"tara_team", "word_team"},
		"word_team":    {"tara_team"},
		"design_team":  {"tara_team", "king_team"},
		"king_team":    {"tara_team"},
		"tara_team": {
			"writer", "mcqs_team", "checker_team", "word_team",
			"design_team", "king_team", "tara_team", "mind_map_form_creator",
		},
		"mind_map_form_creator": {"design_team", "tara_team"},
	}
}

// DefaultTriggers returns the trigger prefixes available to oversight-role
// senders for directed messages outside default routing.
func DefaultTriggers() map[string][]string {
	return map[string][]string{
		"-w":   {"writer"},
		"-e":   {"checker_team"},
		"-mcq": {"mcqs_team"},
		"-d":   {"word_team"},
		"-de":  {"design_team"},
		"-mf":  {"mind_map_form_creator"},
		"-c":   {"checker_team"},
	}
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.log_level":        DefaultServerLogLevel,
		"telegram.update_timeout": DefaultTelegramUpdateTimeout,
		"store.data_dir":          filepath.Join(os.Getenv("HOME"), ".relaybot"),
		"store.lock_timeout":      DefaultStoreLockTimeout,
		"store.lock_retry":        DefaultStoreLockRetry,
		"store.lock_max_retry":    DefaultStoreLockMaxRetry,
		"ingress.queue_size":      DefaultIngressQueueSize,
		"ingress.submit_timeout":  DefaultIngressSubmitTimeout,
		"relay.oversight_role":    DefaultOversightRole,
		"relay.admin_roles":       []string{"tara_team", "king_team"},
		"relay.roles":             DefaultRoles(),
		"relay.targets":           DefaultTargets(),
		"relay.triggers":          DefaultTriggers(),
		"relay.interaction_ttl":   DefaultInteractionTTL,
		"relay.sweep_interval":    DefaultSweepInterval,
		"relay.send_timeout":      DefaultSendTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".relaybot", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	k.Load(env.Provider("RELAY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RELAY_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// BOT_TOKEN is the conventional env var for the transport credential.
	if cfg.Telegram.BotToken == "" {
		cfg.Telegram.BotToken = os.Getenv("BOT_TOKEN")
	}

	return &cfg, nil
}
