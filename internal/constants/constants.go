package constants

const (
	// DateFormat is the canonical calendar-date layout (YYYY-MM-DD).
	DateFormat = "2006-01-02"
	// TimeFormat is the canonical time-of-day layout (HH:MM).
	TimeFormat = "15:04"

	// AppName is used for config paths, log prefixes and notification titles.
	AppName = "pillarlog"
)

// Default settings values, applied by models.ApplyDefaultSettings.
const (
	DefaultChartType    = "bar"
	DefaultTimezone     = "Local"
	DefaultUndoGraceSec = 300
)

// Settings keys used by the key-value settings tables and `settings set`.
const (
	SettingUserName             = "user_name"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingSpecialRollOver      = "special_roll_over"
	SettingChartType            = "chart_type"
	SettingTimezone             = "timezone"
	SettingUndoGraceSec         = "undo_grace_sec"
	SettingTelegramChatID       = "telegram_chat_id"
)

// Notifier constants for the tray adapter.
const (
	TrayAppIdentifier      = "pillarlog-tray"
	NotifierLockfileName   = "notifier.lock"
	NotificationDurationMs = 8000
)

// BestWorstDayWindowMax is the widest range (in days, inclusive) for which
// best/worst periods are computed per day; wider ranges group by ISO week.
const BestWorstDayWindowMax = 14
