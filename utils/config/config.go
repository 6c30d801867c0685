package config

// RuntimeConfig is the process-wide configuration snapshot, built once
// at startup from the YAML file/flag.
type RuntimeConfig struct {
	All Config
	C   Control
}

// NewRuntimeConfig wraps a parsed Config into a RuntimeConfig,
// defaulting LaneChangeSpeedKph to 30 when it is zero. FileSource
// applies no such default: a zero speed there is a zero minimum
// lane-change speed.
func NewRuntimeConfig(cfg Config) *RuntimeConfig {
	rc := &RuntimeConfig{All: cfg, C: cfg.Control}
	if rc.C.LaneChangeSpeedKph == 0 {
		rc.C.LaneChangeSpeedKph = 30
	}
	return rc
}
