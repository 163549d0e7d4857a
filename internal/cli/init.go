package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
)

type InitCmd struct {
	NoInput bool `help:"Skip the onboarding form and use defaults."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	if !c.NoInput {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return err
		}

		chatID := ""
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("What should we call you?").
					Value(&settings.UserName),
				huh.NewConfirm().
					Title("Enable reminders for timed tasks?").
					Value(&settings.NotificationsEnabled),
				huh.NewInput().
					Title("Telegram chat id for reminders (leave empty to skip)").
					Validate(func(s string) error {
						if s == "" {
							return nil
						}
						_, err := strconv.ParseInt(s, 10, 64)
						return err
					}).
					Value(&chatID),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("onboarding aborted: %w", err)
		}

		if chatID != "" {
			settings.TelegramChatID, _ = strconv.ParseInt(chatID, 10, 64)
		}
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return err
		}
	}

	fmt.Printf("Initialized pillarlog storage at: %s\n", ctx.Store.GetConfigPath())
	fmt.Println("Add a pillar next: pillarlog pillar add \"Health\"")
	return nil
}
