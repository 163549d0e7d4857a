package models

import (
	"fmt"

	"github.com/pillarlog/pillarlog/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	UserName             string `json:"user_name" yaml:"user_name"`
	NotificationsEnabled bool   `json:"notifications_enabled" yaml:"notifications_enabled"`
	SpecialRollOver      bool   `json:"special_roll_over" yaml:"special_roll_over"`   // carry unfinished special items to the next occurrence
	ChartType            string `json:"chart_type" yaml:"chart_type"`                 // preferred stats rendering, e.g. "bar"
	Timezone             string `json:"timezone" yaml:"timezone"`                     // IANA timezone name or "Local"
	UndoGraceSec         int    `json:"undo_grace_sec" yaml:"undo_grace_sec"`         // window in which a completion can be undone
	TelegramChatID       int64  `json:"telegram_chat_id" yaml:"telegram_chat_id"`     // target chat for the telegram notifier, 0 = unset
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.ChartType == "" {
		settings.ChartType = constants.DefaultChartType
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.UndoGraceSec == 0 {
		settings.UndoGraceSec = constants.DefaultUndoGraceSec
	}
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingUserName:             settings.UserName,
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingSpecialRollOver:      fmt.Sprintf("%v", settings.SpecialRollOver),
		constants.SettingChartType:            settings.ChartType,
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingUndoGraceSec:         fmt.Sprintf("%d", settings.UndoGraceSec),
		constants.SettingTelegramChatID:       fmt.Sprintf("%d", settings.TelegramChatID),
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingUserName:
			settings.UserName = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingSpecialRollOver:
			settings.SpecialRollOver = value == "true"
		case constants.SettingChartType:
			settings.ChartType = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingUndoGraceSec:
			if _, err := fmt.Sscanf(value, "%d", &settings.UndoGraceSec); err != nil {
				return Settings{}, fmt.Errorf("parsing undo_grace_sec: %w", err)
			}
		case constants.SettingTelegramChatID:
			if _, err := fmt.Sscanf(value, "%d", &settings.TelegramChatID); err != nil {
				return Settings{}, fmt.Errorf("parsing telegram_chat_id: %w", err)
			}
		}
	}
	return settings, nil
}
