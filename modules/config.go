// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/swaprouter/contract"
	"github.com/luxfi/swaprouter/precompileconfig"
)

var (
	ErrUnknownModule = errors.New("unknown precompile module")
	ErrNotActive     = errors.New("precompile not active")
)

// LoadConfig decodes the raw JSON config of the module registered under
// [key] and verifies it.
func LoadConfig(key string, raw json.RawMessage, chainConfig precompileconfig.ChainConfig) (precompileconfig.Config, error) {
	module, ok := GetPrecompileModule(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, key)
	}
	cfg := module.MakeConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s config: %w", key, err)
	}
	if err := cfg.Verify(chainConfig); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", key, err)
	}
	return cfg, nil
}

// IsActive reports whether [cfg] is in effect at block [time].
func IsActive(cfg precompileconfig.Config, time uint64) bool {
	if cfg.IsDisabled() {
		return false
	}
	ts := cfg.Timestamp()
	return ts != nil && *ts <= time
}

// Activate loads every config in [configs], keyed by module config key,
// and configures the modules active at the block in [blockContext].
// Modules are visited in address order. It returns the activated keys.
func Activate(
	configs map[string]json.RawMessage,
	chainConfig precompileconfig.ChainConfig,
	state contract.StateDB,
	blockContext contract.BlockContext,
) ([]string, error) {
	for key := range configs {
		if _, ok := GetPrecompileModule(key); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModule, key)
		}
	}

	var activated []string
	for _, module := range RegisteredModules() {
		raw, ok := configs[module.ConfigKey]
		if !ok {
			continue
		}
		cfg, err := LoadConfig(module.ConfigKey, raw, chainConfig)
		if err != nil {
			return activated, err
		}
		if !IsActive(cfg, blockContext.Timestamp()) {
			continue
		}
		if err := module.Configure(chainConfig, cfg, state, blockContext); err != nil {
			return activated, fmt.Errorf("failed to configure %s: %w", module.ConfigKey, err)
		}
		activated = append(activated, module.ConfigKey)
	}
	return activated, nil
}
