package resilience

import "time"

// CooldownPolicy builds the rate-limit policy: wait cooldown before the
// first retry, double it on each further retry up to maxCooldown, and give
// up after maxAttempts total attempts. No jitter is applied so every wait is
// at least the configured cooldown.
func CooldownPolicy(maxAttempts int, cooldown, maxCooldown time.Duration) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if cooldown > 0 {
		cfg.InitialBackoff = cooldown
	}
	cfg.MaxBackoff = cfg.InitialBackoff
	if maxCooldown > cfg.InitialBackoff {
		cfg.MaxBackoff = maxCooldown
	}
	cfg.Multiplier = 2.0
	cfg.JitterFraction = 0
	return cfg
}
