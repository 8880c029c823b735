package config

import (
	"github.com/Veraticus/glassline/internal/notify"
	"github.com/spf13/viper"
)

// DefaultSMTPPort is the submission port.
const DefaultSMTPPort = 587

// NotifyConfigured reports whether a mail relay is configured.
func NotifyConfigured(v *viper.Viper) bool {
	return v.GetString("notify.smtp_host") != ""
}

// LoadNotifyConfig reads the notify.* keys. notify.to accepts a list or a
// comma separated string.
func LoadNotifyConfig(v *viper.Viper) (notify.SMTPConfig, error) {
	port := DefaultSMTPPort
	if v.IsSet("notify.smtp_port") {
		port = v.GetInt("notify.smtp_port")
	}

	config := notify.SMTPConfig{
		Host:     v.GetString("notify.smtp_host"),
		Port:     port,
		Username: v.GetString("notify.username"),
		Password: v.GetString("notify.password"),
		From:     v.GetString("notify.from"),
		Subject:  v.GetString("notify.subject"),
		To:       splitList(v.GetStringSlice("notify.to")),
	}

	if err := config.Validate(); err != nil {
		return notify.SMTPConfig{}, err
	}
	return config, nil
}
