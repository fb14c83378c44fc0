// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/swaprouter/contract"
	"github.com/luxfi/swaprouter/precompileconfig"
)

type noopContract struct{}

func (noopContract) Run(contract.AccessibleState, common.Address, common.Address, []byte, uint64, bool) ([]byte, uint64, error) {
	return nil, 0, nil
}

type stubConfig struct {
	precompileconfig.Upgrade
	Limit uint64 `json:"limit"`
}

var errZeroLimit = errors.New("limit must be positive")

func (*stubConfig) Key() string          { return "stubConfig" }
func (c *stubConfig) IsDisabled() bool   { return c.Disable }
func (c *stubConfig) Timestamp() *uint64 { return c.Upgrade.Timestamp() }
func (c *stubConfig) Equal(other precompileconfig.Config) bool {
	o, ok := other.(*stubConfig)
	return ok && c.Upgrade.Equal(&o.Upgrade) && c.Limit == o.Limit
}

func (c *stubConfig) Verify(precompileconfig.ChainConfig) error {
	if !c.Disable && c.Limit == 0 {
		return errZeroLimit
	}
	return nil
}

type stubConfigurator struct {
	configured []*stubConfig
}

func (*stubConfigurator) MakeConfig() precompileconfig.Config { return new(stubConfig) }

func (s *stubConfigurator) Configure(_ precompileconfig.ChainConfig, cfg precompileconfig.Config, _ contract.StateDB, _ contract.BlockContext) error {
	s.configured = append(s.configured, cfg.(*stubConfig))
	return nil
}

func stubModule(key string, addr string, configurator Configurator) Module {
	return Module{
		ConfigKey:    key,
		Address:      common.HexToAddress(addr),
		Contract:     noopContract{},
		Configurator: configurator,
	}
}

func TestReservedAddress(t *testing.T) {
	tests := []struct {
		addr     string
		reserved bool
	}{
		{addr: "0x0000000000000000000000000000000000009000", reserved: true},
		{addr: "0x0000000000000000000000000000000000009012", reserved: true},
		{addr: "0x0000000000000000000000000000000000009fff", reserved: true},
		{addr: "0x0000000000000000000000000000000000008fff", reserved: false},
		{addr: "0x000000000000000000000000000000000000a000", reserved: false},
		{addr: "0x0100000000000000000000000000000000000000", reserved: false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			require.Equal(t, tt.reserved, ReservedAddress(common.HexToAddress(tt.addr)))
		})
	}
}

func TestRegisterModuleRejects(t *testing.T) {
	require.NoError(t, RegisterModule(stubModule("registerA", "0x0000000000000000000000000000000000009a01", &stubConfigurator{})))

	tests := []struct {
		name   string
		module Module
	}{
		{name: "duplicate key", module: stubModule("registerA", "0x0000000000000000000000000000000000009a02", &stubConfigurator{})},
		{name: "duplicate address", module: stubModule("registerB", "0x0000000000000000000000000000000000009a01", &stubConfigurator{})},
		{name: "outside reserved range", module: stubModule("registerC", "0x0000000000000000000000000000000000000001", &stubConfigurator{})},
		{name: "blackhole", module: Module{ConfigKey: "registerD", Address: BlackholeAddr, Contract: noopContract{}, Configurator: &stubConfigurator{}}},
		{name: "empty key", module: stubModule("", "0x0000000000000000000000000000000000009a03", &stubConfigurator{})},
		{name: "no configurator", module: stubModule("registerE", "0x0000000000000000000000000000000000009a04", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, RegisterModule(tt.module))
		})
	}
}

func TestRegisteredModulesSorted(t *testing.T) {
	require.NoError(t, RegisterModule(stubModule("sortHigh", "0x0000000000000000000000000000000000009b02", &stubConfigurator{})))
	require.NoError(t, RegisterModule(stubModule("sortLow", "0x0000000000000000000000000000000000009b01", &stubConfigurator{})))

	mods := RegisteredModules()
	for i := 1; i < len(mods); i++ {
		require.Negative(t, mods[i-1].Address.Cmp(mods[i].Address))
	}

	m, ok := GetPrecompileModule("sortLow")
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x0000000000000000000000000000000000009b01"), m.Address)

	m, ok = GetPrecompileModuleByAddress(common.HexToAddress("0x0000000000000000000000000000000000009b02"))
	require.True(t, ok)
	require.Equal(t, "sortHigh", m.ConfigKey)

	_, ok = GetPrecompileModule("missing")
	require.False(t, ok)
}

func TestLoadConfig(t *testing.T) {
	require.NoError(t, RegisterModule(stubModule("stubConfig", "0x0000000000000000000000000000000000009c01", &stubConfigurator{})))

	cfg, err := LoadConfig("stubConfig", json.RawMessage(`{"blockTimestamp": 3, "limit": 9}`), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(9), cfg.(*stubConfig).Limit)

	_, err = LoadConfig("stubConfig", json.RawMessage(`{"limit": 0}`), nil)
	require.ErrorIs(t, err, errZeroLimit)

	_, err = LoadConfig("stubConfig", json.RawMessage(`{"limit": "x"}`), nil)
	require.Error(t, err)

	_, err = LoadConfig("nope", json.RawMessage(`{}`), nil)
	require.ErrorIs(t, err, ErrUnknownModule)
}

func TestActivate(t *testing.T) {
	early := &stubConfigurator{}
	late := &stubConfigurator{}
	require.NoError(t, RegisterModule(stubModule("activateEarly", "0x0000000000000000000000000000000000009d01", early)))
	require.NoError(t, RegisterModule(stubModule("activateLate", "0x0000000000000000000000000000000000009d02", late)))

	block := &contract.BlockTime{BlockNumber: big.NewInt(1), Time: 100}
	activated, err := Activate(map[string]json.RawMessage{
		"activateEarly": json.RawMessage(`{"blockTimestamp": 100, "limit": 1}`),
		"activateLate":  json.RawMessage(`{"blockTimestamp": 101, "limit": 1}`),
	}, nil, nil, block)
	require.NoError(t, err)
	require.Equal(t, []string{"activateEarly"}, activated)
	require.Len(t, early.configured, 1)
	require.Empty(t, late.configured)

	_, err = Activate(map[string]json.RawMessage{"unregistered": json.RawMessage(`{}`)}, nil, nil, block)
	require.ErrorIs(t, err, ErrUnknownModule)
}

func TestIsActive(t *testing.T) {
	ts := uint64(10)
	tests := []struct {
		name   string
		cfg    *stubConfig
		time   uint64
		active bool
	}{
		{name: "before", cfg: &stubConfig{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &ts}}, time: 9},
		{name: "at", cfg: &stubConfig{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &ts}}, time: 10, active: true},
		{name: "never", cfg: &stubConfig{}, time: 100},
		{name: "disabled", cfg: &stubConfig{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &ts, Disable: true}}, time: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.active, IsActive(tt.cfg, tt.time))
		})
	}
}
