// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command starttls connects to a mail server in plaintext, negotiates
// STARTTLS, performs the TLS handshake and sends a NOOP over the
// protected stream.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	utls "github.com/refraction-networking/utls"

	"code.hybscloud.com/starttls"
	"code.hybscloud.com/starttls/config"
	"code.hybscloud.com/starttls/drive"
)

// initLogger initializes a JSON go-kit logger set
// to the according log level supplied via cli flag.
func initLogger(loglevel string) log.Logger {

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowDebug())
	}

	return logger
}

// helloIDs maps fingerprint names to uTLS ClientHello specs.
var helloIDs = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"safari":     utls.HelloSafari_Auto,
	"ios":        utls.HelloIOS_Auto,
	"edge":       utls.HelloEdge_Auto,
	"randomized": utls.HelloRandomized,
}

// handshake performs the TLS handshake on the negotiated connection,
// with crypto/tls or, when a fingerprint is configured, with uTLS.
func handshake(ctx context.Context, conn net.Conn, conf *config.Config) (net.Conn, string, error) {

	if conf.TLS.Fingerprint == "" {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         conf.TLS.ServerName,
			InsecureSkipVerify: conf.TLS.InsecureSkipVerify,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, "", err
		}
		return tlsConn, tls.VersionName(tlsConn.ConnectionState().Version), nil
	}

	id, ok := helloIDs[strings.ToLower(conf.TLS.Fingerprint)]
	if !ok {
		return nil, "", fmt.Errorf("unknown fingerprint '%s'", conf.TLS.Fingerprint)
	}

	uconn := utls.UClient(conn, &utls.Config{
		ServerName:         conf.TLS.ServerName,
		InsecureSkipVerify: conf.TLS.InsecureSkipVerify,
	}, id)
	if err := uconn.HandshakeContext(ctx); err != nil {
		return nil, "", err
	}

	return uconn, tls.VersionName(uconn.ConnectionState().Version), nil
}

// noop returns the NOOP command of the configured protocol.
func noop(protocol string) string {

	if protocol == "imap" {
		return "A NOOP\r\n"
	}

	return "NOOP\r\n"
}

func run(ctx context.Context, logger log.Logger, conf *config.Config) error {

	ctx, cancel := context.WithTimeout(ctx, conf.Server.Timeout.Duration)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", conf.Addr())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", conf.Addr(), err)
	}
	defer conn.Close()

	opts, err := conf.Options(logger)
	if err != nil {
		return err
	}

	up := starttls.New(opts...)
	if err := drive.Run(ctx, conn, up); err != nil {
		return fmt.Errorf("failed to negotiate STARTTLS: %w", err)
	}

	level.Info(logger).Log("msg", "upgrade plaintext stream to TLS", "serial", up.Serial())

	tlsConn, version, err := handshake(ctx, conn, conf)
	if err != nil {
		return fmt.Errorf("failed TLS handshake: %v", err)
	}

	level.Info(logger).Log("msg", "TLS established", "version", version)

	cmd := noop(conf.Server.Protocol)
	if _, err := tlsConn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("failed to send NOOP via TLS: %v", err)
	}

	reply, err := bufio.NewReader(tlsConn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to receive NOOP response via TLS: %v", err)
	}

	level.Info(logger).Log("msg", "receive NOOP response via TLS", "reply", strings.TrimRight(reply, "\r\n"))

	return nil
}

func main() {

	// Parse command-line flags overriding the config file.
	configFlag := flag.String("config", "", "Provide path to configuration file in TOML syntax.")
	envFlag := flag.String("env", ".env", "Provide path to an optional .env file.")
	hostFlag := flag.String("host", "", "Server host to connect to.")
	portFlag := flag.Uint("port", 0, "Server port, defaults to the protocol's plaintext port.")
	protocolFlag := flag.String("protocol", "", "Protocol to negotiate: imap, smtp or pop3.")
	discardFlag := flag.Bool("discard-greeting", false, "Read the greeting without validating it.")
	probeFlag := flag.Bool("probe", false, "Probe capabilities before issuing STARTTLS (default true for smtp).")
	fingerprintFlag := flag.String("fingerprint", "", "Use a uTLS ClientHello fingerprint (chrome, firefox, safari, ios, edge, randomized).")
	loglevelFlag := flag.String("loglevel", "debug", "This flag sets the default logging level.")
	flag.Parse()

	logger := initLogger(*loglevelFlag)

	// Read configuration from file and environment.
	conf, err := config.LoadConfig(*configFlag)
	if err != nil {
		level.Error(logger).Log("msg", "failed to load the config", "err", err)
		os.Exit(1)
	}

	if err := conf.LoadEnv(*envFlag); err != nil {
		level.Error(logger).Log("msg", "failed to load the environment", "err", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			conf.Server.Host = *hostFlag
		case "port":
			conf.Server.Port = uint16(*portFlag)
		case "protocol":
			conf.Server.Protocol = *protocolFlag
		case "discard-greeting":
			conf.Server.DiscardGreeting = *discardFlag
		case "probe":
			conf.Server.Probe = probeFlag
		case "fingerprint":
			conf.TLS.Fingerprint = *fingerprintFlag
		}
	})

	if err := conf.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(2)
	}

	if err := run(context.Background(), logger, conf); err != nil {
		level.Error(logger).Log("msg", "negotiation failed", "addr", conf.Addr(), "err", err)
		os.Exit(3)
	}
}
