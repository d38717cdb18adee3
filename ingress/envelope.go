package ingress

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"xdao.co/glacier/keys"
	"xdao.co/glacier/principal"
)

// selfDescribedCBOR is the tag the replica expects in front of an envelope.
var selfDescribedCBOR = []byte{0xd9, 0xd9, 0xf7}

// Envelope owns one content map, the signature over its request id, and the
// public key that produced it. It is assembled once and never mutated.
type Envelope struct {
	Content      Content
	SenderPubkey []byte
	SenderSig    []byte
}

// Wire shapes. Field order mirrors the canonical (RFC 7049) key order the
// encoder sorts into; keep them aligned when adding fields.
type wireContent struct {
	Arg           []byte     `cbor:"arg,omitempty"`
	Nonce         []byte     `cbor:"nonce,omitempty"`
	Paths         [][][]byte `cbor:"paths,omitempty"`
	Sender        []byte     `cbor:"sender,omitempty"`
	CanisterID    []byte     `cbor:"canister_id,omitempty"`
	MethodName    string     `cbor:"method_name,omitempty"`
	RequestType   string     `cbor:"request_type"`
	IngressExpiry uint64     `cbor:"ingress_expiry"`
}

type wireEnvelope struct {
	Content      wireContent `cbor:"content"`
	SenderSig    []byte      `cbor:"sender_sig"`
	SenderPubkey []byte      `cbor:"sender_pubkey"`
}

var envelopeEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	var err error
	envelopeEncMode, err = opts.EncMode()
	if err != nil {
		panic(err)
	}
}

// Seal computes the request id of content, signs it, and assembles the
// envelope. The signature covers the domain-separated request id, so neither
// expiry, nonce, nor any argument byte can change afterwards without
// invalidating it.
func Seal(content Content, signer keys.Signer) (*Envelope, error) {
	id := ComputeRequestID(content)
	sig, err := signer.Sign(id.SignedPayload())
	if err != nil {
		return nil, wrapError(KindCrypto, "GLC-ENV-001", "signing request id", err)
	}
	return &Envelope{
		Content:      content,
		SenderPubkey: signer.PublicKeyDER(),
		SenderSig:    sig,
	}, nil
}

// RequestID recomputes the id of the sealed content.
func (e *Envelope) RequestID() RequestID {
	return ComputeRequestID(e.Content)
}

// Bytes serializes the envelope to self-described canonical CBOR.
func (e *Envelope) Bytes() ([]byte, error) {
	body, err := envelopeEncMode.Marshal(wireEnvelope{
		Content: wireContent{
			Arg:           e.Content.Arg,
			Nonce:         e.Content.Nonce,
			Paths:         e.Content.Paths,
			Sender:        e.Content.Sender,
			CanisterID:    e.Content.CanisterID,
			MethodName:    e.Content.MethodName,
			RequestType:   e.Content.RequestType,
			IngressExpiry: e.Content.IngressExpiry,
		},
		SenderPubkey: e.SenderPubkey,
		SenderSig:    e.SenderSig,
	})
	if err != nil {
		return nil, wrapError(KindEncoding, "GLC-ENV-002", "encoding envelope", err)
	}
	return append(append([]byte(nil), selfDescribedCBOR...), body...), nil
}

// ParseEnvelope decodes envelope bytes. Unknown extra fields are tolerated;
// truncated or malformed CBOR is rejected without partially populating
// anything. A missing self-description tag is accepted for interoperability
// with producers that skip it.
func ParseEnvelope(data []byte) (*Envelope, error) {
	body := data
	if bytes.HasPrefix(body, selfDescribedCBOR) {
		body = body[len(selfDescribedCBOR):]
	}
	var wire wireEnvelope
	if err := cbor.Unmarshal(body, &wire); err != nil {
		return nil, wrapError(KindEncoding, "GLC-ENV-003", "malformed envelope bytes", err)
	}
	if wire.Content.RequestType == "" {
		return nil, newError(KindEncoding, "GLC-ENV-004", "envelope content missing request_type")
	}
	return &Envelope{
		Content: Content{
			RequestType:   wire.Content.RequestType,
			Sender:        wire.Content.Sender,
			Nonce:         wire.Content.Nonce,
			IngressExpiry: wire.Content.IngressExpiry,
			CanisterID:    wire.Content.CanisterID,
			MethodName:    wire.Content.MethodName,
			Arg:           wire.Content.Arg,
			Paths:         wire.Content.Paths,
		},
		SenderPubkey: wire.SenderPubkey,
		SenderSig:    wire.SenderSig,
	}, nil
}

// Message is one signed ingress message in the transport file format: the
// call type, the request id for updates, and the hex-encoded envelope.
type Message struct {
	CallType  string `json:"call_type"`
	RequestID string `json:"request_id,omitempty"`
	Content   string `json:"content"`
}

// StatusQuery is the pre-signed read_state request paired with an update, so
// the online host can poll the result without any key material.
type StatusQuery struct {
	CanisterID string `json:"canister_id"`
	RequestID  string `json:"request_id"`
	Content    string `json:"content"`
}

// Bundle pairs an update message with its status query.
type Bundle struct {
	Ingress       Message     `json:"ingress"`
	RequestStatus StatusQuery `json:"request_status"`
}

// SignUpdate seals a "call" message.
func SignUpdate(signer keys.Signer, canisterID principal.Principal, method string, arg []byte, expiry uint64, nonce []byte) (Message, RequestID, error) {
	content := Content{
		RequestType:   "call",
		Sender:        signer.Principal().Bytes(),
		Nonce:         nonce,
		IngressExpiry: expiry,
		CanisterID:    canisterID.Bytes(),
		MethodName:    method,
		Arg:           arg,
	}
	env, err := Seal(content, signer)
	if err != nil {
		return Message{}, RequestID{}, err
	}
	raw, err := env.Bytes()
	if err != nil {
		return Message{}, RequestID{}, err
	}
	id := env.RequestID()
	return Message{
		CallType:  "update",
		RequestID: hex.EncodeToString(id[:]),
		Content:   hex.EncodeToString(raw),
	}, id, nil
}

// SignQuery seals a "query" message. Queries carry no nonce.
func SignQuery(signer keys.Signer, canisterID principal.Principal, method string, arg []byte, expiry uint64) (Message, error) {
	content := Content{
		RequestType:   "query",
		Sender:        signer.Principal().Bytes(),
		IngressExpiry: expiry,
		CanisterID:    canisterID.Bytes(),
		MethodName:    method,
		Arg:           arg,
	}
	env, err := Seal(content, signer)
	if err != nil {
		return Message{}, err
	}
	raw, err := env.Bytes()
	if err != nil {
		return Message{}, err
	}
	return Message{CallType: "query", Content: hex.EncodeToString(raw)}, nil
}

// SignRequestStatus seals the read_state request for an update's request id.
func SignRequestStatus(signer keys.Signer, canisterID principal.Principal, id RequestID, expiry uint64) (StatusQuery, error) {
	content := Content{
		RequestType:   "read_state",
		Sender:        signer.Principal().Bytes(),
		IngressExpiry: expiry,
		Paths:         [][][]byte{{[]byte("request_status"), id[:]}},
	}
	env, err := Seal(content, signer)
	if err != nil {
		return StatusQuery{}, err
	}
	raw, err := env.Bytes()
	if err != nil {
		return StatusQuery{}, err
	}
	return StatusQuery{
		CanisterID: canisterID.String(),
		RequestID:  hex.EncodeToString(id[:]),
		Content:    hex.EncodeToString(raw),
	}, nil
}

// SignUpdateWithStatus seals an update and its paired status query.
func SignUpdateWithStatus(signer keys.Signer, canisterID principal.Principal, method string, arg []byte, expiry uint64, nonce []byte) (Bundle, error) {
	msg, id, err := SignUpdate(signer, canisterID, method, arg, expiry, nonce)
	if err != nil {
		return Bundle{}, err
	}
	status, err := SignRequestStatus(signer, canisterID, id, expiry)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Ingress: msg, RequestStatus: status}, nil
}

// DecodeMessage parses one transport file record and its inner envelope.
func DecodeMessage(msg Message) (*Envelope, error) {
	raw, err := hex.DecodeString(msg.Content)
	if err != nil {
		return nil, wrapError(KindEncoding, "GLC-ENV-005", "message content is not hex", err)
	}
	return ParseEnvelope(raw)
}

// ParseMessages reads a transport file: a single message, a list of messages,
// or a list of bundles.
func ParseMessages(data []byte) ([]Message, error) {
	var one Message
	if err := json.Unmarshal(data, &one); err == nil && one.Content != "" {
		return []Message{one}, nil
	}
	var many []Message
	if err := json.Unmarshal(data, &many); err == nil && len(many) > 0 && many[0].Content != "" {
		return many, nil
	}
	var bundles []Bundle
	if err := json.Unmarshal(data, &bundles); err == nil && len(bundles) > 0 && bundles[0].Ingress.Content != "" {
		out := make([]Message, len(bundles))
		for i, b := range bundles {
			out[i] = b.Ingress
		}
		return out, nil
	}
	return nil, newError(KindEncoding, "GLC-ENV-006", "unrecognized message file contents")
}
