package api

import (
	"github.com/versenet/verse/internal/protocol"
	"github.com/versenet/verse/internal/queue"
	"github.com/versenet/verse/internal/session"
	"github.com/versenet/verse/internal/wire"
	"github.com/versenet/verse/pkg/logging"
)

// Client is the producer-facing entry point: one Dispatcher plus the
// session registry, and the typed constructors named in spec.md
// section 6's abstract Producer API.
type Client struct {
	Registry   *session.Registry
	Dispatcher *Dispatcher
}

// NewClient returns a Client with an empty session registry and
// dispatcher.
func NewClient() *Client {
	return &Client{
		Registry:   session.NewRegistry(),
		Dispatcher: NewDispatcher(),
	}
}

// Connect opens a session to hostname:service with the given
// transport flags, failing synchronously with ErrDuplicateConnect if
// one is already live (spec.md section 6/7).
func (c *Client) Connect(hostname, service string, flags session.TransportFlags, maxOutboundBytes int) (*session.Session, error) {
	sess, err := c.Registry.Create(hostname, service, func(id uint16) *session.Session {
		return session.New(id, 0, 0, hostname, service, flags, maxOutboundBytes)
	})
	if err != nil {
		return nil, ErrDuplicateConnect
	}
	sess.SetState(session.StateActive)
	return sess, nil
}

// Terminate ends sess and delivers a synthetic connect-terminate
// command to its own inbound queue, per spec.md section 7
// "Propagation": asynchronous failures always arrive as a synthetic
// connect-terminate command through the inbound queue.
func (c *Client) Terminate(sess *session.Session, reason TerminateReason) {
	sess.SetState(session.StateTerminated)
	sess.Inbound.Push(protocol.New(protocol.FakeConnectTerminate, []byte{byte(reason)}))
	c.Registry.Remove(sess)
}

// UserAuthenticate enqueues an authentication request to sess's
// outbound queue. method mirrors spec.md section 6's abstract
// username/method/data triple; the exchange's own semantics are out
// of scope (spec.md section 1).
func (c *Client) UserAuthenticate(sess *session.Session, username string, method uint8, data []byte) error {
	if len(username) > 255 || len(data) > 255 {
		return ErrFailure
	}
	w := wire.NewWriter()
	w.WriteByte(method)
	w.WriteString8(username)
	w.WriteString8(string(data))
	return sess.Outbound.PushTail(queue.DefaultPriority, protocol.New(protocol.AuthRequest, w.Bytes()), false)
}

// SetDebugLevel adjusts the process-wide log verbosity (spec.md
// section 6's set_debug_level).
func (c *Client) SetDebugLevel(level string) {
	logging.SetLevel(level)
}

// SetClientInfo records the application's name/version exactly once
// per session. A second call is rejected with ErrFailure: spec.md's
// Open Questions leave the repeat-call behavior unspecified, and this
// resolves it the same way set_client_info's single in/out parameter
// shape in the original implementation suggests — first call wins.
// name and version are accepted but not currently relayed anywhere;
// the wire protocol has no slot for them (spec.md section 6 lists the
// call without a corresponding command).
func (c *Client) SetClientInfo(sess *session.Session, name, version string) error {
	if sess.MarkClientInfoSet() {
		return ErrFailure
	}
	return nil
}

func (c *Client) push(sess *session.Session, prio byte, op protocol.Opcode, w *wire.Cursor) error {
	err := sess.Outbound.PushTail(prio, protocol.New(op, w.Bytes()), sess.MaxOutboundBytes > 0)
	if err == queue.ErrQueueFull {
		return ErrQueueFull
	}
	return err
}

// CreateNode enqueues a node_create command, keyed on (user, parent)
// so that a burst of sibling creates from the same user under the
// same parent share their address prefix on the wire (spec.md section
// 8 scenario S2).
func (c *Client) CreateNode(sess *session.Session, prio byte, userID uint16, parentID, nodeID uint32, nodeType uint16) error {
	w := wire.NewWriter()
	w.WriteU16(userID)
	w.WriteU32(parentID)
	w.WriteU32(nodeID)
	w.WriteU16(nodeType)
	return c.push(sess, prio, protocol.NodeCreate, w)
}

// DestroyNode enqueues a node_destroy command.
func (c *Client) DestroyNode(sess *session.Session, prio byte, nodeID uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	return c.push(sess, prio, protocol.NodeDestroy, w)
}

// SubscribeNode enqueues a node_subscribe command at the given schema
// version.
func (c *Client) SubscribeNode(sess *session.Session, prio byte, nodeID uint32, version uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU32(version)
	return c.push(sess, prio, protocol.NodeSubscribe, w)
}

// UnsubscribeNode enqueues a node_unsubscribe command.
func (c *Client) UnsubscribeNode(sess *session.Session, prio byte, nodeID uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	return c.push(sess, prio, protocol.NodeUnsubscribe, w)
}

// LinkNode re-parents an existing node.
func (c *Client) LinkNode(sess *session.Session, prio byte, nodeID, newParentID uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU32(newParentID)
	return c.push(sess, prio, protocol.NodeLink, w)
}

// SetNodeOwner enqueues a node_owner command transferring ownership to
// newOwner.
func (c *Client) SetNodeOwner(sess *session.Session, prio byte, nodeID uint32, newOwner uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(newOwner)
	return c.push(sess, prio, protocol.NodeOwner, w)
}

// SetNodePerm sets the per-user permission flags on a node.
func (c *Client) SetNodePerm(sess *session.Session, prio byte, nodeID uint32, userID uint16, perm uint8) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(userID)
	w.WriteByte(perm)
	return c.push(sess, prio, protocol.NodePerm, w)
}

// LockNode / UnlockNode toggle a node's lock state.
func (c *Client) LockNode(sess *session.Session, prio byte, nodeID uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	return c.push(sess, prio, protocol.NodeLock, w)
}

func (c *Client) UnlockNode(sess *session.Session, prio byte, nodeID uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	return c.push(sess, prio, protocol.NodeUnlock, w)
}

// CreateTagGroup enqueues a taggroup_create command.
func (c *Client) CreateTagGroup(sess *session.Session, prio byte, nodeID uint32, taggroupID uint16, taggroupType uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU16(taggroupType)
	return c.push(sess, prio, protocol.TagGroupCreate, w)
}

// DestroyTagGroup enqueues a taggroup_destroy command.
func (c *Client) DestroyTagGroup(sess *session.Session, prio byte, nodeID uint32, taggroupID uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	return c.push(sess, prio, protocol.TagGroupDestroy, w)
}

// SubscribeTagGroup / UnsubscribeTagGroup mirror the node subscribe
// pair, scoped to one tag group.
func (c *Client) SubscribeTagGroup(sess *session.Session, prio byte, nodeID uint32, taggroupID uint16, version uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU32(version)
	return c.push(sess, prio, protocol.TagGroupSubscribe, w)
}

func (c *Client) UnsubscribeTagGroup(sess *session.Session, prio byte, nodeID uint32, taggroupID uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	return c.push(sess, prio, protocol.TagGroupUnsubscribe, w)
}

// CreateTag / DestroyTag manage individual tags within a tag group.
func (c *Client) CreateTag(sess *session.Session, prio byte, nodeID uint32, taggroupID, tagID uint16, tagType uint8) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU16(tagID)
	w.WriteByte(tagType)
	return c.push(sess, prio, protocol.TagCreate, w)
}

func (c *Client) DestroyTag(sess *session.Session, prio byte, nodeID uint32, taggroupID, tagID uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU16(tagID)
	return c.push(sess, prio, protocol.TagDestroy, w)
}

// SetTagString enqueues a tag_set_string command: the one tag value
// shape that is variable-length rather than a numeric arity/kind
// family member.
func (c *Client) SetTagString(sess *session.Session, prio byte, nodeID uint32, taggroupID, tagID uint16, value string) error {
	if len(value) > 255 {
		return ErrFailure
	}
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU16(tagID)
	w.WriteString8(value)
	return c.push(sess, prio, protocol.TagSetString, w)
}

// SetTagNumeric enqueues one member of the tag-set family (spec.md
// section 6: "4 arities x 7 numeric kinds"), rather than naming all 28
// combinations individually. kindIdx indexes protocol.NumericKinds;
// values must hold exactly protocol.TagSetArities[arityIdx] entries,
// each already converted to the matching numeric kind.
func (c *Client) SetTagNumeric(sess *session.Session, prio byte, nodeID uint32, taggroupID, tagID uint16, arityIdx, kindIdx int, values []float64) error {
	if arityIdx < 0 || arityIdx >= len(protocol.TagSetArities) || kindIdx < 0 || kindIdx >= len(protocol.NumericKinds) {
		return ErrFailure
	}
	if len(values) != protocol.TagSetArities[arityIdx] {
		return ErrFailure
	}
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(taggroupID)
	w.WriteU16(tagID)
	kind := protocol.NumericKinds[kindIdx]
	for _, v := range values {
		writeNumeric(w, kind, v)
	}
	return c.push(sess, prio, protocol.TagSetOpcode(arityIdx, kindIdx), w)
}

// CreateLayer / DestroyLayer manage per-node layers (spec.md section
// 6's layer family).
func (c *Client) CreateLayer(sess *session.Session, prio byte, nodeID uint32, layerID uint16, layerType uint8, itemCount uint8) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	w.WriteByte(layerType)
	w.WriteByte(itemCount)
	return c.push(sess, prio, protocol.LayerCreate, w)
}

func (c *Client) DestroyLayer(sess *session.Session, prio byte, nodeID uint32, layerID uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	return c.push(sess, prio, protocol.LayerDestroy, w)
}

func (c *Client) SubscribeLayer(sess *session.Session, prio byte, nodeID uint32, layerID uint16, version uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	w.WriteU32(version)
	return c.push(sess, prio, protocol.LayerSubscribe, w)
}

func (c *Client) UnsubscribeLayer(sess *session.Session, prio byte, nodeID uint32, layerID uint16) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	return c.push(sess, prio, protocol.LayerUnsubscribe, w)
}

// UnsetLayerValue clears one item slot in a layer.
func (c *Client) UnsetLayerValue(sess *session.Session, prio byte, nodeID uint32, layerID uint16, itemIndex uint32) error {
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	w.WriteU32(itemIndex)
	return c.push(sess, prio, protocol.LayerUnsetValue, w)
}

// SetLayerNumeric mirrors SetTagNumeric for the layer-set family,
// keyed on (node, layer, item index) rather than (node, taggroup, tag).
func (c *Client) SetLayerNumeric(sess *session.Session, prio byte, nodeID uint32, layerID uint16, itemIndex uint32, arityIdx, kindIdx int, values []float64) error {
	if arityIdx < 0 || arityIdx >= len(protocol.LayerSetArities) || kindIdx < 0 || kindIdx >= len(protocol.NumericKinds) {
		return ErrFailure
	}
	if len(values) != protocol.LayerSetArities[arityIdx] {
		return ErrFailure
	}
	w := wire.NewWriter()
	w.WriteU32(nodeID)
	w.WriteU16(layerID)
	w.WriteU32(itemIndex)
	kind := protocol.NumericKinds[kindIdx]
	for _, v := range values {
		writeNumeric(w, kind, v)
	}
	return c.push(sess, prio, protocol.LayerSetOpcode(arityIdx, kindIdx), w)
}

// writeNumeric encodes v as kind, truncating/rounding as needed for
// integer kinds. Callers are expected to pass values already in range
// for the chosen kind; out-of-range values wrap per Go's conversion
// rules rather than erroring, matching the fixed-width wire kinds'
// C heritage.
func writeNumeric(w *wire.Cursor, kind protocol.ValueKind, v float64) {
	switch kind {
	case protocol.KindU8:
		w.WriteByte(byte(uint8(v)))
	case protocol.KindU16:
		w.WriteU16(uint16(v))
	case protocol.KindU32:
		w.WriteU32(uint32(v))
	case protocol.KindU64:
		w.WriteU64(uint64(v))
	case protocol.KindR16:
		w.WriteR16(float32(v))
	case protocol.KindR32:
		w.WriteR32(float32(v))
	case protocol.KindR64:
		w.WriteR64(v)
	}
}
