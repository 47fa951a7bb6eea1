// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding the config file.
const (
	EnvHost     = "STARTTLS_HOST"
	EnvPort     = "STARTTLS_PORT"
	EnvProtocol = "STARTTLS_PROTOCOL"
	EnvDomain   = "STARTTLS_DOMAIN"
)

// LoadEnv reads envFile, if it exists, into the process environment
// without overriding variables already set, then applies the
// STARTTLS_* variables on top of c.
func (c *Config) LoadEnv(envFile string) error {

	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read in env file '%s' with: %v", envFile, err)
		}
	}

	if v := os.Getenv(EnvHost); v != "" {
		c.Server.Host = v
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %v", EnvPort, v, err)
		}
		c.Server.Port = uint16(port)
	}

	if v := os.Getenv(EnvProtocol); v != "" {
		c.Server.Protocol = v
	}

	if v := os.Getenv(EnvDomain); v != "" {
		c.Server.Domain = v
	}

	return nil
}
