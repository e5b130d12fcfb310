package reconciler

import "time"

const (
	defaultSlowInterval      = 30 * time.Second
	defaultFastInterval      = 5 * time.Second
	defaultRedisplayInterval = 500 * time.Millisecond
	defaultPassTimeout       = 20 * time.Second
	defaultPropagationDelay  = 3 * time.Second
	defaultDecimals          = 18
	defaultWatchBuffer       = 4
	defaultTriggerWorkers    = 16
)

// Config tunes the timers and token settings of every session.
type Config struct {
	SlowInterval      time.Duration
	FastInterval      time.Duration
	RedisplayInterval time.Duration
	PassTimeout       time.Duration
	PropagationDelay  time.Duration
	// Decimals is the reward token precision used for live estimates.
	Decimals       int32
	PaymentToken   string
	RewardToken    string
	WatchBuffer    int
	TriggerWorkers int
}

func (c Config) withDefaults() Config {
	if c.SlowInterval <= 0 {
		c.SlowInterval = defaultSlowInterval
	}
	if c.FastInterval <= 0 {
		c.FastInterval = defaultFastInterval
	}
	if c.RedisplayInterval <= 0 {
		c.RedisplayInterval = defaultRedisplayInterval
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = defaultPassTimeout
	}
	if c.PropagationDelay <= 0 {
		c.PropagationDelay = defaultPropagationDelay
	}
	if c.Decimals < 0 {
		c.Decimals = defaultDecimals
	}
	if c.WatchBuffer <= 0 {
		c.WatchBuffer = defaultWatchBuffer
	}
	if c.TriggerWorkers <= 0 {
		c.TriggerWorkers = defaultTriggerWorkers
	}
	return c
}
