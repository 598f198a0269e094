package kessoku

import "log/slog"

// Option configures a World.
type Option func(*worldConfig)

type worldConfig struct {
	logger *slog.Logger
	events *EventBus
}

// WithLogger sets the logger used for archetype and lifecycle diagnostics. If
// not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *worldConfig) { c.logger = l }
}

// WithEventBus makes the world publish its events on bus instead of a private
// bus.
func WithEventBus(bus *EventBus) Option {
	return func(c *worldConfig) { c.events = bus }
}

func newWorldConfig(opts []Option) worldConfig {
	c := worldConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.events == nil {
		c.events = &EventBus{}
	}
	return c
}
