package cli

import (
	"fmt"
	"sort"

	"github.com/pillarlog/pillarlog/internal/constants"
	"github.com/pillarlog/pillarlog/internal/models"
)

type SettingsGetCmd struct {
	Key string `arg:"" optional:"" help:"Setting key; omit to show all."`
}

func (c *SettingsGetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	kv := models.SettingsToMap(settings)

	if c.Key != "" {
		value, ok := kv[c.Key]
		if !ok {
			return fmt.Errorf("unknown setting %q", c.Key)
		}
		fmt.Println(value)
		return nil
	}

	keys := make([]string, 0, len(kv))
	for key := range kv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%-22s = %s\n", key, kv[key])
	}
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key (e.g. timezone)."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	kv := models.SettingsToMap(settings)
	if _, ok := kv[c.Key]; !ok {
		return fmt.Errorf("unknown setting %q", c.Key)
	}
	kv[c.Key] = c.Value

	updated, err := models.MapToSettings(kv)
	if err != nil {
		return err
	}
	models.ApplyDefaultSettings(&updated)

	// The notifications toggle also drives the timer table, so route it
	// through the tracker instead of a plain save.
	if c.Key == constants.SettingNotificationsEnabled {
		if err := ctx.Tracker.SetNotificationsEnabled(updated.NotificationsEnabled); err != nil {
			return err
		}
	} else if err := ctx.Store.SaveSettings(updated); err != nil {
		return err
	}

	fmt.Printf("%s = %s\n", c.Key, c.Value)
	return nil
}
