package utils_test

import (
	"slices"
	"teamcal/src-server/utils"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("DISCORD_APP_TOKEN", "token")
	t.Setenv("DISCORD_CLIENT_ID", "client")
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DIGEST_CRON", "30 7 * * 1-5")
	t.Setenv("SESSION_TTL", "1h")

	c := utils.NewConfig()
	if c.GetPort() != "9090" {
		t.Errorf("port %q", c.GetPort())
	}
	if c.GetLocation() != time.UTC {
		t.Errorf("location %v", c.GetLocation())
	}
	if got := c.GetCorsAllowedOrigins(); !slices.Equal(got, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("origins %v", got)
	}
	if c.GetDigestCron() != "30 7 * * 1-5" {
		t.Errorf("digest cron %q", c.GetDigestCron())
	}
	if c.GetSessionTTL() != time.Hour {
		t.Errorf("session ttl %v", c.GetSessionTTL())
	}
	if c.GetMetricCollectionInterval() != 15*time.Second {
		t.Errorf("metric interval %v", c.GetMetricCollectionInterval())
	}

	// defaults are not shared between configs
	if d := utils.DefaultConfig().GetCorsAllowedOrigins(); !slices.Equal(d, []string{"http://localhost:3000"}) {
		t.Errorf("default origins changed to %v", d)
	}
}
