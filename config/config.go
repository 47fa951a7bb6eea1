// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of the starttls command from
// a TOML file and the process environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-kit/log"

	"code.hybscloud.com/starttls"
)

// DefaultTimeout bounds dialing, negotiation and the TLS handshake.
const DefaultTimeout = 30 * time.Second

// Config holds all information parsed from the
// supplied config file and environment.
type Config struct {
	Server Server
	TLS    TLS
}

// Server describes the plaintext endpoint and how
// to negotiate STARTTLS with it.
//
// Probe left unset defaults to true for smtp, whose servers refuse
// STARTTLS before EHLO, and to false otherwise.
type Server struct {
	Host              string
	Port              uint16
	Protocol          string
	DiscardGreeting   bool
	Probe             *bool
	RequireAdvertised bool
	Tag               string
	Domain            string
	Timeout           duration
}

// TLS configures the handshake performed after a
// successful negotiation.
type TLS struct {
	ServerName         string
	InsecureSkipVerify bool
	Fingerprint        string
}

// duration decodes TOML strings such as "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// defaultPorts maps protocol names to their plaintext STARTTLS port.
var defaultPorts = map[string]uint16{
	"imap": 143,
	"smtp": 587,
	"pop3": 110,
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: Server{
			Protocol: "imap",
			Tag:      starttls.DefaultTag,
			Timeout:  duration{DefaultTimeout},
		},
	}
}

// LoadConfig takes in the path to a config file in TOML
// syntax and places the values on top of the defaults.
// An empty path yields the defaults.
func LoadConfig(configFile string) (*Config, error) {

	conf := Default()

	if configFile != "" {
		// Parse values from TOML file into struct.
		if _, err := toml.DecodeFile(configFile, conf); err != nil {
			return nil, fmt.Errorf("failed to read in TOML config file at '%s' with: %v", configFile, err)
		}
	}

	return conf, nil
}

// Validate checks the configuration and fills in
// values derived from others.
func (c *Config) Validate() error {

	c.Server.Protocol = strings.ToLower(c.Server.Protocol)
	port, ok := defaultPorts[c.Server.Protocol]
	if !ok {
		return fmt.Errorf("unknown protocol '%s', expected imap, smtp or pop3", c.Server.Protocol)
	}

	if c.Server.Host == "" {
		return fmt.Errorf("no server host configured")
	}

	if c.Server.Port == 0 {
		c.Server.Port = port
	}

	if c.Server.Probe == nil {
		probe := c.Server.Protocol == "smtp"
		c.Server.Probe = &probe
	}

	if c.Server.Timeout.Duration <= 0 {
		c.Server.Timeout.Duration = DefaultTimeout
	}

	if c.TLS.ServerName == "" {
		c.TLS.ServerName = c.Server.Host
	}

	return nil
}

// Addr returns the host:port to dial.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(int(c.Server.Port)))
}

// Dialect returns the starttls grammar for the configured protocol.
func (c *Config) Dialect() (starttls.Dialect, error) {

	switch strings.ToLower(c.Server.Protocol) {
	case "imap":
		return starttls.IMAP{}, nil
	case "smtp":
		return starttls.SMTP{Domain: c.Server.Domain}, nil
	case "pop3":
		return starttls.POP3{}, nil
	}

	return nil, fmt.Errorf("unknown protocol '%s'", c.Server.Protocol)
}

// Options translates the configuration into starttls options.
func (c *Config) Options(logger log.Logger) ([]starttls.Option, error) {

	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}

	opts := []starttls.Option{
		starttls.WithDialect(dialect),
		starttls.WithDiscardGreeting(c.Server.DiscardGreeting),
		starttls.WithProbe(c.Server.Probe != nil && *c.Server.Probe),
		starttls.WithRequireAdvertised(c.Server.RequireAdvertised),
		starttls.WithTag(c.Server.Tag),
		starttls.WithLogger(logger),
	}

	return opts, nil
}
