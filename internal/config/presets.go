package config

import "sort"

// Presets are ready-made run configurations, layered over DefaultConfig.
var Presets = map[string]func(*Config){
	// Manual lock of the modulation loop with a slow triangle scan.
	"ms_control": func(c *Config) {
		c.Kp, c.Ki, c.Kd = -0.1, -100, -2e-05
		c.YOffset, c.YMin, c.YMax = 0, -2, 2
		c.StreamLength, c.StreamUnit = 500, "frames"
		c.StreamDecimation = 1
		c.Plots = []string{"ErrMod", "Mod", "ErrDemod", "CtrlDac"}
		c.XType = "time_ms"
		c.XLim, c.YLim = nil, nil
		c.Tolerance, c.RefreshYLim = 0.2, true
		c.SigCtrlSignal = "triangle"
		c.SigCtrlFrequency = 7.335956280048077
		c.SigCtrlAmplitude = 0.1
		c.SigCtrlOffset = 0
		c.TelemetryPeriod = 1
	},
	// Integrating lock without derivative action, half a second of data.
	"pi_lock": func(c *Config) {
		c.Kp, c.Ki, c.Kd = -0.05, -50, 0
		c.StreamLength, c.StreamUnit = 500, "ms"
		c.StreamTargetPoints = 400
		c.Plots = []string{"ErrDemod", "CtrlDac"}
		c.SigCtrlSignal = "none"
	},
	// Open loop, plotting the demodulated error against the scan frequency.
	"open_loop_scan": func(c *Config) {
		c.Kp, c.Ki, c.Kd = 0, 0, 0
		c.StreamLength, c.StreamUnit = 1, "seconds"
		c.StreamTargetPoints = 1000
		c.Plots = []string{"ErrDemod"}
		c.XType = "frequency"
		c.RefreshYLim = false
		c.SigCtrlSignal = "sine"
		c.SigCtrlAmplitude = 0.5
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
