package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("PORT", "9090")
    t.Setenv("BASE_URL", "")

    cfg := Load()

    assert.Equal(t, "9090", cfg.Port)
    assert.Equal(t, "http://localhost:9090", cfg.BaseURL)
    assert.Equal(t, "http://localhost:9090/api/v1/spotify/callback", cfg.SpotifyRedirectURL)
    assert.Equal(t, 5, cfg.GroupAgeThreshold)
    assert.Equal(t, 1, cfg.GroupMaxSkillGap)
    assert.Equal(t, 2, cfg.GroupMinSharedInterest)
    assert.Equal(t, 3, cfg.GroupMinSize)
    assert.Equal(t, 4, cfg.GroupMaxSize)
    assert.Equal(t, 10, cfg.GroupDifficultySpan)
    assert.Equal(t, 24*time.Hour, cfg.GroupFormationInterval)
    assert.Equal(t, "messages", cfg.BroadcastChannel)
    require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
    t.Setenv("GROUP_AGE_THRESHOLD", "8")
    t.Setenv("GROUP_FORMATION_INTERVAL", "90m")
    t.Setenv("USE_S3", "true")
    t.Setenv("GROUP_MIN_SIZE", "not-a-number")

    cfg := Load()

    assert.Equal(t, 8, cfg.GroupAgeThreshold)
    assert.Equal(t, 90*time.Minute, cfg.GroupFormationInterval)
    assert.True(t, cfg.UseS3)
    assert.Equal(t, 3, cfg.GroupMinSize)
}

func TestValidate(t *testing.T) {
    tests := []struct {
        name    string
        mutate  func(c *Config)
        wantErr string
    }{
        {
            name:    "default secret in production",
            mutate:  func(c *Config) { c.Environment = "production" },
            wantErr: "JWT secret",
        },
        {
            name:    "group sizes inverted",
            mutate:  func(c *Config) { c.GroupMinSize = 4; c.GroupMaxSize = 3 },
            wantErr: "group size",
        },
        {
            name:    "unknown strategy",
            mutate:  func(c *Config) { c.GroupFormationStrategy = "random" },
            wantErr: "strategy",
        },
        {
            name:    "sendgrid without key",
            mutate:  func(c *Config) { c.EmailProvider = "sendgrid"; c.EnableEmailNotifications = true },
            wantErr: "SendGrid",
        },
        {
            name:    "twilio incomplete",
            mutate:  func(c *Config) { c.SMSProvider = "twilio"; c.EnableSMSNotifications = true },
            wantErr: "Twilio",
        },
        {
            name:    "unknown sms provider",
            mutate:  func(c *Config) { c.SMSProvider = "pigeon" },
            wantErr: "invalid SMS provider",
        },
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            cfg := Load()
            tt.mutate(cfg)
            err := cfg.Validate()
            require.Error(t, err)
            assert.Contains(t, err.Error(), tt.wantErr)
        })
    }
}
