package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const defaultConfigPath = "mcp_config.json"

// Config mirrors the layout of mcp_config.json. A missing file is not an
// error; every field is optional and the zero value is a usable empty config.
type Config struct {
	GitHub        GitHubConfig        `json:"github"`
	Agent         AgentConfig         `json:"agent"`
	Actions       ActionsConfig       `json:"actions"`
	Notifications NotificationsConfig `json:"notifications,omitempty"`
}

type GitHubConfig struct {
	Repository      string          `json:"repository,omitempty"`
	Token           string          `json:"token,omitempty"`
	IssuePriorities IssuePriorities `json:"issue_priorities,omitempty"`
}

type IssuePriorities struct {
	High   []string `json:"high,omitempty"`
	Medium []string `json:"medium,omitempty"`
}

type AgentConfig struct {
	UserExpertise []string `json:"user_expertise,omitempty"`
}

type ActionsConfig struct {
	ContributionPreferences ContributionPreferences `json:"contribution_preferences,omitempty"`
}

type ContributionPreferences struct {
	IssueTypes []string `json:"issue_types,omitempty"`
}

type NotificationsConfig struct {
	TelegramBotToken string `json:"telegram_bot_token,omitempty"`
	TelegramChatID   int64  `json:"telegram_chat_id,omitempty"`
}

type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return &Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	if path == "" {
		path = defaultConfigPath
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.GitHub.Repository != "" {
		parts := strings.Split(c.GitHub.Repository, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return ConfigValidationError{Field: "github.repository", Message: "must be in owner/repo format"}
		}
	}

	return nil
}

// ResolveToken picks the token to use: explicit flag, then config file, then
// the GITHUB_TOKEN environment variable. Empty means unauthenticated calls.
func (c *Config) ResolveToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}
