package config

// RelayConfig tunes the two message pipelines.
// Example YAML:
// relay:
//   transport: udp
//   recv_buffer_bytes: 2048
//   outbound_capacity: 0   # 0 = unbounded; when full, console input waits
//   inbound_capacity: 0    # 0 = unbounded; when full, datagrams are dropped
//   send_rate_bytes: 0     # outbound bytes per second, 0 = unlimited
type RelayConfig struct {
	Transport        string `mapstructure:"transport"`
	RecvBufferBytes  int    `mapstructure:"recv_buffer_bytes"`
	OutboundCapacity int    `mapstructure:"outbound_capacity"`
	InboundCapacity  int    `mapstructure:"inbound_capacity"`
	SendRateBytes    int    `mapstructure:"send_rate_bytes"`
}

// ConsoleConfig controls how chat lines are rendered.
type ConsoleConfig struct {
	RewriteEcho bool `mapstructure:"rewrite_echo"` // erase the typed line before echoing it
	Color       bool `mapstructure:"color"`        // colourise the [user-...] prefixes
}

// ReportConfig controls the end-of-session statistics report.
type ReportConfig struct {
	Path   string `mapstructure:"path"`   // empty disables the report
	Format string `mapstructure:"format"` // json, cbor or proto
}
