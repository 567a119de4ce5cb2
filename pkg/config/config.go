// BikeLink Core
// Copyright (c) 2026 The BikeLink Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of BikeLink Core.
//
// BikeLink Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BikeLink Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BikeLink Core.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/BikeLinkProject/bikelink-core/pkg/helpers/syncutil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "BIKELINK_CFG"
)

type Values struct {
	Serial       Serial  `toml:"serial,omitempty"`
	Uplink       Uplink  `toml:"uplink,omitempty"`
	Links        Links   `toml:"links,omitempty"`
	Service      Service `toml:"service,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

// Serial holds settings shared by all serial controller links. Durations are
// expressed in seconds, matching the units the controllers were tuned with.
type Serial struct {
	ExcludedDevices []string `toml:"excluded_devices,omitempty,multiline"`
	BaudRate        int      `toml:"baud_rate,omitempty" validate:"gte=0"`
	PollInterval    float32  `toml:"poll_interval,omitempty" validate:"gte=0"`
	ResetSettle     float32  `toml:"reset_settle,omitempty" validate:"gte=0"`
	RebootWait      float32  `toml:"reboot_wait,omitempty" validate:"gte=0"`
}

// Uplink is the remote TCP consumer telemetry is relayed to.
type Uplink struct {
	Host        string  `toml:"host,omitempty" validate:"omitempty,hostname|ip"`
	Port        int     `toml:"port,omitempty" validate:"gte=0,lte=65535"`
	DialTimeout float32 `toml:"dial_timeout,omitempty" validate:"gte=0"`
	ReadTimeout float32 `toml:"read_timeout,omitempty" validate:"gte=0"`
	Enabled     bool    `toml:"enabled"`
}

type Links struct {
	Connect    []LinksConnect `toml:"connect,omitempty"`
	AutoDetect bool           `toml:"auto_detect"`
}

type Service struct {
	DeviceID      string  `toml:"device_id,omitempty"`
	RetryInterval float32 `toml:"retry_interval,omitempty" validate:"gte=0"`
	HotplugEvents bool    `toml:"hotplug_events"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Serial: Serial{
		BaudRate: 115200,
		ExcludedDevices: []string{
			"/dev/cu.debug-console",
			"/dev/cu.Bluetooth-Incoming-Port",
			"/dev/cu.iPhone-WirelessiAP",
			"/dev/tty.Bluetooth-Incoming-Port",
			"/dev/tty.debug-console",
			"/dev/cu.BT-RY",
		},
		PollInterval: 0.1,
		ResetSettle:  0.5,
		RebootWait:   1.0,
	},
	Uplink: Uplink{
		Enabled:     true,
		Host:        "192.168.0.2",
		Port:        12345,
		DialTimeout: 3.0,
		ReadTimeout: 1.0,
	},
	Links: Links{
		AutoDetect: true,
	},
	Service: Service{
		RetryInterval: 1.0,
		HotplugEvents: true,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		mu:       syncutil.RWMutex{},
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := validate.Struct(&newVals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = newVals

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	// generate a device id if one doesn't exist
	if c.vals.Service.DeviceID == "" {
		newID := uuid.New().String()
		c.vals.Service.DeviceID = newID
		log.Info().Msgf("generated new device id: %s", newID)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.DeviceID
}

func (c *Instance) RetryInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Service.RetryInterval)
}

func (c *Instance) HotplugEvents() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.HotplugEvents
}

// secondsToDuration rounds to whole milliseconds, which is as fine as any of
// the timing knobs need and keeps float32 config values from picking up
// sub-millisecond noise.
func secondsToDuration(s float32) time.Duration {
	return time.Duration(math.Round(float64(s)*1000)) * time.Millisecond
}
