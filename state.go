// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

// State is the negotiation phase of an [Upgrade].
type State uint8

const (
	// Start is the initial state: no bytes exchanged yet.
	Start State = iota
	// AwaitGreeting reads the server greeting.
	AwaitGreeting
	// SendProbe writes the capability probe command.
	SendProbe
	// AwaitProbeResponse reads the capability reply.
	AwaitProbeResponse
	// SendUpgradeCommand writes the STARTTLS command.
	SendUpgradeCommand
	// AwaitUpgradeResponse reads the STARTTLS reply.
	AwaitUpgradeResponse
	// Succeeded is terminal: the transport is ready for the TLS handshake.
	Succeeded
	// Failed is terminal: the negotiation failed, see [Upgrade.Err].
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case AwaitGreeting:
		return "await-greeting"
	case SendProbe:
		return "send-probe"
	case AwaitProbeResponse:
		return "await-probe-response"
	case SendUpgradeCommand:
		return "send-upgrade-command"
	case AwaitUpgradeResponse:
		return "await-upgrade-response"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is [Succeeded] or [Failed].
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}
