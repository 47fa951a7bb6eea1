// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"github.com/go-kit/log"
)

const (
	// DefaultChunkSize is the MaxLen of emitted Read requests.
	DefaultChunkSize = 1024
	// DefaultMaxLineLength bounds an unterminated server line.
	DefaultMaxLineLength = 8192
	// DefaultTag is the IMAP tag prefix.
	DefaultTag = "a"
)

// greetingMode selects how the server greeting is handled.
type greetingMode uint8

const (
	greetingValidate greetingMode = iota
	greetingDiscard
	greetingConsumed
)

// options is the immutable configuration of an Upgrade.
type options struct {
	greeting          greetingMode
	probe             bool
	requireAdvertised bool
	dialect           Dialect
	tag               string
	chunkSize         int
	maxLine           int
	logger            log.Logger
}

func defaultOptions() options {
	return options{
		dialect:   IMAP{},
		tag:       DefaultTag,
		chunkSize: DefaultChunkSize,
		maxLine:   DefaultMaxLineLength,
		logger:    log.NewNopLogger(),
	}
}

// Option configures an [Upgrade] at construction.
type Option func(*options)

// WithDiscardGreeting reads the server greeting and drops it without
// validating its content. By default the greeting is validated and a
// malformed greeting fails the negotiation.
func WithDiscardGreeting(discard bool) Option {
	return func(o *options) {
		if discard {
			o.greeting = greetingDiscard
		} else if o.greeting == greetingDiscard {
			o.greeting = greetingValidate
		}
	}
}

// WithGreetingConsumed starts the negotiation at the first command,
// for callers that already read the greeting from the stream.
func WithGreetingConsumed() Option {
	return func(o *options) {
		o.greeting = greetingConsumed
	}
}

// WithProbe issues the dialect's capability probe before STARTTLS.
func WithProbe(probe bool) Option {
	return func(o *options) {
		o.probe = probe
	}
}

// WithRequireAdvertised fails the negotiation with [KindNotAdvertised]
// when the probe reply does not list STARTTLS. It implies [WithProbe].
func WithRequireAdvertised(require bool) Option {
	return func(o *options) {
		o.requireAdvertised = require
		if require {
			o.probe = true
		}
	}
}

// WithDialect sets the protocol grammar. The default is [IMAP].
func WithDialect(d Dialect) Option {
	return func(o *options) {
		if d != nil {
			o.dialect = d
		}
	}
}

// WithTag sets the prefix of command tags. Commands are tagged
// prefix1, prefix2, ... in the order they are issued.
func WithTag(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.tag = prefix
		}
	}
}

// WithChunkSize sets the MaxLen of emitted [Read] requests.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithMaxLineLength bounds the bytes buffered while a line is
// unterminated. Exceeding it fails with [KindLineTooLong].
func WithMaxLineLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLine = n
		}
	}
}

// WithLogger sets the go-kit logger for debug tracing of the
// negotiation. The default discards all records.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
