package config

import "github.com/AndreyAkinshin/credo/internal/check"

// Default configuration values.
const (
	DefaultCheckKind   = CheckKindField
	DefaultOutputIndex = -1
	DefaultNProc       = 1
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Suite) {
	applyModelDefaults(cfg)
	applyCheckDefaults(cfg)
}

func applyModelDefaults(cfg *Suite) {
	for i := range cfg.Models {
		m := &cfg.Models[i]
		if m.NProc == 0 {
			m.NProc = DefaultNProc
		}
		// Models inherit the suite timeout
		if m.MaxRunTime.Duration == 0 {
			m.MaxRunTime = cfg.Timeout
		}
	}
}

func applyCheckDefaults(cfg *Suite) {
	for i := range cfg.Checks {
		c := &cfg.Checks[i]
		if c.Kind == "" {
			c.Kind = DefaultCheckKind
		}
		if c.Tolerance == nil {
			tol := check.DefaultTolerance
			c.Tolerance = &tol
		}
		if c.OutputIndex == nil {
			idx := DefaultOutputIndex
			c.OutputIndex = &idx
		}
		if c.EnforceLogic == nil {
			enforce := true
			c.EnforceLogic = &enforce
		}
	}
}
