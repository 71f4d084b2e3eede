package timeouts

import (
	"testing"
	"time"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer Reset()
	t.Setenv("TIMEOUT_LONG", "45s")
	t.Setenv("TIMEOUT_PING", "not-a-duration")
	t.Setenv("TIMEOUT_SHORT", "-1s")

	n := ConfigureFromEnv()

	if n != 1 {
		t.Errorf("configured = %d, want 1", n)
	}
	cur := Current()
	if cur.Long != 45*time.Second {
		t.Errorf("Long = %v, want 45s", cur.Long)
	}
	if cur.Ping != DefaultPing || cur.Short != DefaultShort {
		t.Errorf("invalid values should be ignored, got %+v", cur)
	}
}
