package main

import (
	"encoding/json"
	"errors"
	"log"
)

// errPeerMismatch rejects a relay whose caller and target are not members
// of the same room. Connection ids arrive from the client side, so they are
// checked against the registry instead of being trusted.
var errPeerMismatch = errors.New("signaling peers are not in the same room")

// SignalingRelay forwards opaque offer/answer payloads between exactly two
// connections to bootstrap their direct peer media channel. Delivery is
// fire-and-forget: a target that disconnected first is simply unreachable
// and the client's own call-setup timeout handles the retry.
type SignalingRelay struct {
	registry *ConnRegistry
	peers    func(connID string) (*Client, bool)
}

func NewSignalingRelay(registry *ConnRegistry, peers func(connID string) (*Client, bool)) *SignalingRelay {
	return &SignalingRelay{
		registry: registry,
		peers:    peers,
	}
}

// RelayOffer delivers a caller's offer to the target as a user-joined
// event carrying the caller's id, display name and opaque signal.
func (sr *SignalingRelay) RelayOffer(targetID, callerID, callerName string, signal json.RawMessage) error {
	if !sr.registry.SameRoom(callerID, targetID) {
		return errPeerMismatch
	}
	sr.deliver(targetID, evUserJoined, &UserJoinedPayload{
		Signal:   signal,
		CallerID: callerID,
		Name:     callerName,
	})
	return nil
}

// RelayAnswer delivers the answering peer's payload back to the original
// caller as a receiving-returned-signal event.
func (sr *SignalingRelay) RelayAnswer(callerID, senderID string, signal json.RawMessage) error {
	if !sr.registry.SameRoom(senderID, callerID) {
		return errPeerMismatch
	}
	sr.deliver(callerID, evReceivingReturnedSignal, &ReturnedSignalPayload{
		Signal: signal,
		ID:     senderID,
	})
	return nil
}

func (sr *SignalingRelay) deliver(connID, event string, payload any) {
	target, ok := sr.peers(connID)
	if !ok {
		// Target disconnected before the relay. Undeliverable, not an error.
		return
	}
	frame, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("encode %s: %v", event, err)
		return
	}
	target.trySend(frame)
}
