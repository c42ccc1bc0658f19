package strategic

import (
	"flag"
	"time"
)

const (
	defaultTickInterval  = time.Second
	defaultMailboxBuffer = 256
	minMailboxBuffer     = 1
)

// Config configures the strategic agent's loop, following the teacher's
// RegisterFlagsAndApplyDefaults convention.
type Config struct {
	// TickInterval is how long the agent sleeps between iterations when it
	// has no forced ExecuteIteration request pending.
	TickInterval time.Duration `yaml:"tick_interval"`

	// EmitSnapshots gates whether the agent publishes an outbound snapshot
	// after each iteration. Tests that only care about ExecuteIteration side
	// effects on the optimized-plan table can disable this. Named
	// explicitly rather than left as an unexplained positional bool, per
	// the design note on SchedulerAgentAlgorithm::new's trailing argument.
	EmitSnapshots bool `yaml:"emit_snapshots"`

	// MailboxBuffer sizes the inbound request channel.
	MailboxBuffer int `yaml:"mailbox_buffer"`
}

// RegisterFlagsAndApplyDefaults registers flags under prefix and fills in
// default values.
func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	c.TickInterval = defaultTickInterval
	c.EmitSnapshots = true
	c.MailboxBuffer = defaultMailboxBuffer

	if f == nil {
		return
	}
	f.DurationVar(&c.TickInterval, prefix+"tick-interval", defaultTickInterval, "interval between placement iterations")
	f.BoolVar(&c.EmitSnapshots, prefix+"emit-snapshots", true, "publish an outbound snapshot after each iteration")
	f.IntVar(&c.MailboxBuffer, prefix+"mailbox-buffer", defaultMailboxBuffer, "inbound mailbox channel buffer size")
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return errConfig("tick_interval must be positive")
	}
	if c.MailboxBuffer < minMailboxBuffer {
		return errConfig("mailbox_buffer must be at least 1")
	}
	return nil
}

type errConfig string

func (e errConfig) Error() string {
	return "strategic: invalid config: " + string(e)
}
