package main

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"xdao.co/glacier/ingress"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func testSeedHex() string {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return hex.EncodeToString(seed)
}

func TestRunUsage(t *testing.T) {
	code, _, errText := runCLI(t)
	if code != 2 || !strings.Contains(errText, "Usage:") {
		t.Fatalf("no args: code=%d err=%q", code, errText)
	}
	code, outText, _ := runCLI(t, "help")
	if code != 0 || !strings.Contains(outText, "xdao-glacier") {
		t.Fatalf("help: code=%d out=%q", code, outText)
	}
	code, _, errText = runCLI(t, "frobnicate")
	if code != 2 || !strings.Contains(errText, "unknown command") {
		t.Fatalf("unknown: code=%d err=%q", code, errText)
	}
}

func TestRunIDs(t *testing.T) {
	code, outText, errText := runCLI(t, "ids", "--seed-hex", testSeedHex())
	if code != 0 {
		t.Fatalf("ids failed: %s", errText)
	}
	if !strings.Contains(outText, "yavxl-ppty4-enezb-hcalr-cdgzv-zoexx-7od3c-urvk6-rfzs4-552ct-7ae") {
		t.Errorf("missing principal:\n%s", outText)
	}
	if !strings.Contains(outText, "fc9e7af01952aea28590692f20c9617fdeb59a1f24b5b851c66d9f48de65abfb") {
		t.Errorf("missing account:\n%s", outText)
	}
}

func TestRunTransferProducesParseableOutput(t *testing.T) {
	code, outText, errText := runCLI(t, "transfer",
		"--seed-hex", testSeedHex(),
		"--to", "fc9e7af01952aea28590692f20c9617fdeb59a1f24b5b851c66d9f48de65abfb",
		"--amount", "2.5",
		"--memo", "42",
	)
	if code != 0 {
		t.Fatalf("transfer failed: %s", errText)
	}
	if !strings.Contains(errText, "Message-CID: bafkrei") {
		t.Errorf("missing message cid on stderr: %q", errText)
	}

	msgs, err := ingress.ParseMessages([]byte(outText))
	if err != nil {
		t.Fatalf("output does not parse back: %v", err)
	}
	if len(msgs) != 1 || msgs[0].CallType != "update" {
		t.Fatalf("messages = %+v", msgs)
	}
	if _, err := ingress.RenderHuman(msgs[0]); err != nil {
		t.Fatalf("rendering the produced message: %v", err)
	}
}

func TestRunTransferRejectsBadInput(t *testing.T) {
	code, _, errText := runCLI(t, "transfer",
		"--seed-hex", testSeedHex(),
		"--to", "zzz",
		"--amount", "2.5",
	)
	if code != 2 {
		t.Fatalf("bad account: code=%d err=%q", code, errText)
	}
	code, _, _ = runCLI(t, "transfer", "--amount", "2.5", "--to", "abc")
	if code != 2 {
		t.Fatalf("missing signer: code=%d", code)
	}
}

func TestRunArchiveFlow(t *testing.T) {
	t.Setenv("GLACIER_HOME", t.TempDir())

	code, outText, errText := runCLI(t, "transfer",
		"--archive",
		"--seed-hex", testSeedHex(),
		"--to", "fc9e7af01952aea28590692f20c9617fdeb59a1f24b5b851c66d9f48de65abfb",
		"--amount", "1",
	)
	if code != 0 {
		t.Fatalf("transfer --archive failed: %s", errText)
	}

	code, listText, errText := runCLI(t, "archive", "list")
	if code != 0 {
		t.Fatalf("archive list failed: %s", errText)
	}
	id := strings.TrimSpace(listText)
	if !strings.HasPrefix(id, "bafkrei") {
		t.Fatalf("archive list = %q, want one cid", listText)
	}

	code, shown, errText := runCLI(t, "archive", "show", id)
	if code != 0 {
		t.Fatalf("archive show failed: %s", errText)
	}
	if shown != outText {
		t.Fatalf("archived copy differs from emitted output")
	}

	code, _, errText = runCLI(t, "archive", "show", "bafkreigjhqjqk6ows6xfelg3gegowzbyj6tvonh4eikvxzvj6tn3q2wvya")
	if code != 2 || !strings.Contains(errText, "not found") {
		t.Fatalf("missing object: code=%d err=%q", code, errText)
	}
}

func TestRunSignerFlagConflicts(t *testing.T) {
	code, _, errText := runCLI(t, "ids", "--seed-hex", testSeedHex(), "--signer", "alice")
	if code != 2 || !strings.Contains(errText, "conflicting signer flags") {
		t.Fatalf("conflict: code=%d err=%q", code, errText)
	}
}
