package ingress

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xdao.co/glacier/keys"
	"xdao.co/glacier/principal"
)

func testSigner(t *testing.T) keys.Signer {
	t.Helper()
	seed := make([]byte, keys.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	signer, err := keys.NewSigner(keys.Ed25519, seed)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return signer
}

func readGoldenHex(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read golden %s: %v", name, err)
	}
	data, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("golden %s is not hex: %v", name, err)
	}
	return data
}

// Published interface-specification example for the request id algorithm.
func TestComputeRequestIDReferenceVector(t *testing.T) {
	canisterID := make([]byte, 8)
	binary.BigEndian.PutUint64(canisterID, 1234)
	content := Content{
		RequestType: "call",
		CanisterID:  canisterID,
		MethodName:  "hello",
		Arg:         []byte("DIDL\x00\xfd*"),
	}
	id := ComputeRequestID(content)
	const want = "8781291c347db32a9d8c10eb62b710fce5a93be676474c42babc74c51858f94b"
	if hex.EncodeToString(id[:]) != want {
		t.Fatalf("request id = %x, want %s", id, want)
	}
}

func TestRequestIDAbsentVsEmpty(t *testing.T) {
	base := Content{RequestType: "call", MethodName: "hello"}
	withEmptyArg := base
	withEmptyArg.Arg = []byte{}

	// An empty argument is a present field; it must hash differently from an
	// absent one.
	if ComputeRequestID(base) == ComputeRequestID(withEmptyArg) {
		t.Fatal("absent and empty arg hash identically")
	}
}

func TestSignedPayloadDomain(t *testing.T) {
	var id RequestID
	id[0] = 0xaa
	payload := id.SignedPayload()
	if !bytes.HasPrefix(payload, []byte("\x0Aic-request")) {
		t.Fatalf("payload = %x, missing domain separator", payload)
	}
	if !bytes.HasSuffix(payload, id[:]) {
		t.Fatalf("payload = %x, missing request id", payload)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Unix(1620328630, 0)
	if got := Expiry(now); got != 1620328930_000000000 {
		t.Fatalf("Expiry = %d, want 1620328930000000000", got)
	}
}

func TestNonce(t *testing.T) {
	a, err := Nonce()
	if err != nil {
		t.Fatalf("Nonce: %v", err)
	}
	if len(a) != NonceLength {
		t.Fatalf("nonce length = %d, want %d", len(a), NonceLength)
	}
	b, _ := Nonce()
	if bytes.Equal(a, b) {
		t.Error("two nonces are identical")
	}
}

// The golden envelopes were derived independently of this package for the
// ed25519 identity with seed bytes 0x00..0x1f, signing a send_dfx call at a
// fixed expiry with a fixed nonce.
const goldenRequestID = "1123fdc424c095c5309532d6a2ae65fd4889969343d318eee009249aa608fd1f"

const goldenSendArg = "4449444c066c01e0a9b302786d7b6e016c01d6f68e8001786e036c06fbca0171c6fcb60200ba89e5c20478a2de94eb060282f3f3910c04d8a38ca80d000105406663396537616630313935326165613238353930363932663230633936313766646562353961316632346235623835316336366439663438646536356162666210270000000000002a00000000000000000080b2e60e00000000"

const goldenExpiry = uint64(1620328930_000000000)

var goldenNonce = []byte{1, 2, 3, 4, 5, 6, 7, 8}

func TestSignUpdateGolden(t *testing.T) {
	signer := testSigner(t)
	arg, _ := hex.DecodeString(goldenSendArg)

	msg, id, err := SignUpdate(signer, principal.LedgerCanister, "send_dfx", arg, goldenExpiry, goldenNonce)
	if err != nil {
		t.Fatalf("SignUpdate: %v", err)
	}
	if hex.EncodeToString(id[:]) != goldenRequestID {
		t.Errorf("request id = %x, want %s", id, goldenRequestID)
	}
	if msg.CallType != "update" || msg.RequestID != goldenRequestID {
		t.Errorf("message header = %q %q", msg.CallType, msg.RequestID)
	}

	want := readGoldenHex(t, "transfer_update.hex")
	got, err := hex.DecodeString(msg.Content)
	if err != nil {
		t.Fatalf("content is not hex: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("envelope bytes diverge from golden:\ngot  %x\nwant %x", got, want)
	}
}

func TestSignRequestStatusGolden(t *testing.T) {
	signer := testSigner(t)
	var id RequestID
	raw, _ := hex.DecodeString(goldenRequestID)
	copy(id[:], raw)

	status, err := SignRequestStatus(signer, principal.LedgerCanister, id, goldenExpiry)
	if err != nil {
		t.Fatalf("SignRequestStatus: %v", err)
	}
	if status.CanisterID != "ryjl3-tyaaa-aaaaa-aaaba-cai" {
		t.Errorf("canister id = %s", status.CanisterID)
	}
	if status.RequestID != goldenRequestID {
		t.Errorf("request id = %s", status.RequestID)
	}

	want := readGoldenHex(t, "request_status.hex")
	got, err := hex.DecodeString(status.Content)
	if err != nil {
		t.Fatalf("content is not hex: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read_state envelope diverges from golden:\ngot  %x\nwant %x", got, want)
	}
}

func TestParseEnvelopeRoundTrip(t *testing.T) {
	data := readGoldenHex(t, "transfer_update.hex")
	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.Content.RequestType != "call" || env.Content.MethodName != "send_dfx" {
		t.Errorf("content header = %q %q", env.Content.RequestType, env.Content.MethodName)
	}
	if env.Content.IngressExpiry != goldenExpiry {
		t.Errorf("expiry = %d", env.Content.IngressExpiry)
	}
	if !bytes.Equal(env.Content.Nonce, goldenNonce) {
		t.Errorf("nonce = %x", env.Content.Nonce)
	}
	if hexID := env.RequestID(); hex.EncodeToString(hexID[:]) != goldenRequestID {
		t.Errorf("recomputed request id = %x", hexID)
	}

	out, err := env.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("parse/serialize round trip changed the bytes")
	}

	// The self-description tag is optional on input.
	bare, err := ParseEnvelope(data[3:])
	if err != nil {
		t.Fatalf("ParseEnvelope without tag: %v", err)
	}
	if bare.Content.MethodName != "send_dfx" {
		t.Errorf("untagged parse method = %q", bare.Content.MethodName)
	}
}

func TestParseEnvelopeRejectsMalformed(t *testing.T) {
	data := readGoldenHex(t, "transfer_update.hex")

	if _, err := ParseEnvelope(data[:len(data)/2]); err == nil {
		t.Error("truncated envelope accepted")
	}
	if _, err := ParseEnvelope([]byte{0xff, 0x00, 0x01}); err == nil {
		t.Error("garbage accepted")
	}
	// Valid CBOR, wrong shape.
	if _, err := ParseEnvelope([]byte{0xa0}); !IsKind(err, KindEncoding) {
		t.Errorf("empty map: err = %v, want encoding error", err)
	}
}

func TestParseMessages(t *testing.T) {
	single := Message{CallType: "query", Content: "deadbeef"}
	data, _ := json.Marshal(single)
	msgs, err := ParseMessages(data)
	if err != nil || len(msgs) != 1 || msgs[0].CallType != "query" {
		t.Fatalf("single: %v, %v", msgs, err)
	}

	list := []Message{{CallType: "update", Content: "aa"}, {CallType: "query", Content: "bb"}}
	data, _ = json.Marshal(list)
	msgs, err = ParseMessages(data)
	if err != nil || len(msgs) != 2 || msgs[1].Content != "bb" {
		t.Fatalf("list: %v, %v", msgs, err)
	}

	bundles := []Bundle{{
		Ingress:       Message{CallType: "update", RequestID: "00", Content: "cc"},
		RequestStatus: StatusQuery{CanisterID: "aaaaa-aa", RequestID: "00", Content: "dd"},
	}}
	data, _ = json.Marshal(bundles)
	msgs, err = ParseMessages(data)
	if err != nil || len(msgs) != 1 || msgs[0].Content != "cc" {
		t.Fatalf("bundles: %v, %v", msgs, err)
	}

	if _, err := ParseMessages([]byte("{}")); err == nil {
		t.Error("empty object accepted")
	}
	if _, err := ParseMessages([]byte("not json")); err == nil {
		t.Error("non-json accepted")
	}
}

func TestRenderHumanTransfer(t *testing.T) {
	data := readGoldenHex(t, "transfer_update.hex")
	msg := Message{
		CallType:  "update",
		RequestID: goldenRequestID,
		Content:   hex.EncodeToString(data),
	}
	text, err := RenderHuman(msg)
	if err != nil {
		t.Fatalf("RenderHuman: %v", err)
	}

	for _, want := range []string{
		"send_dfx",
		"ryjl3-tyaaa-aaaa", // ledger canister
		"yavxl-ppty4",      // sender principal
		"2.5 ICP",
		"0.0001 ICP",
		"Memo:            42",
		"fc9e7af01952aea28590692f20c9617fdeb59a1f24b5b851c66d9f48de65abfb",
		"2021-05-06T19:22:10Z",
		"0x" + goldenRequestID,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("render output missing %q:\n%s", want, text)
		}
	}
}

func TestSignQueryHasNoNonce(t *testing.T) {
	signer := testSigner(t)
	msg, err := SignQuery(signer, principal.LedgerCanister, "account_balance_dfx", []byte("DIDL\x00\x00"), goldenExpiry)
	if err != nil {
		t.Fatalf("SignQuery: %v", err)
	}
	if msg.CallType != "query" || msg.RequestID != "" {
		t.Errorf("query header = %q %q", msg.CallType, msg.RequestID)
	}
	env, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if env.Content.Nonce != nil {
		t.Errorf("query carries a nonce: %x", env.Content.Nonce)
	}
	if env.Content.RequestType != "query" {
		t.Errorf("request type = %q", env.Content.RequestType)
	}
}
