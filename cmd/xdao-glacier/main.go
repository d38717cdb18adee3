package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/glacier/archive"
	"xdao.co/glacier/ingress"
	"xdao.co/glacier/keys"
	"xdao.co/glacier/msgid"
	"xdao.co/glacier/wallet"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "transfer":
		return cmdTransfer(args[1:], out, errOut)
	case "balance":
		return cmdBalance(args[1:], out, errOut)
	case "notify":
		return cmdNotify(args[1:], out, errOut)
	case "neuron-stake":
		return cmdNeuronStake(args[1:], out, errOut)
	case "neuron-manage":
		return cmdNeuronManage(args[1:], out, errOut)
	case "list-neurons":
		return cmdListNeurons(args[1:], out, errOut)
	case "ids":
		return cmdIDs(args[1:], out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "msg-cid":
		return cmdMsgCID(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-glacier: offline signing for ICP ledger and governance calls")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-glacier transfer --to <account> --amount <icp> [--fee <icp>] [--memo <n>] <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier balance [--account <account>] <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier notify --block-height <n> --to-canister <principal> [--max-fee <icp>] <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier neuron-stake (--name <name> | --nonce <n>) [--amount <icp>] [--fee <icp>] <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier neuron-manage --neuron-id <id> <operation flags> <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier list-neurons [--neuron-id <id> ...] <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier ids <signer flags>")
	fmt.Fprintln(w, "  xdao-glacier decode <message-file>")
	fmt.Fprintln(w, "  xdao-glacier msg-cid <message-file>")
	fmt.Fprintln(w, "  xdao-glacier key init --name <name> [--seed-hex <spec>] [--force]")
	fmt.Fprintln(w, "  xdao-glacier key list")
	fmt.Fprintln(w, "  xdao-glacier key export --name <name>")
	fmt.Fprintln(w, "  xdao-glacier archive (list | show <cid> | put <message-file>)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Signer flags (exactly one):")
	fmt.Fprintln(w, "  --seed-hex <[alg:]64hex>   inline seed (alg: ed25519 or secp256k1, default ed25519)")
	fmt.Fprintln(w, "  --signer <name>            stored key under ~/.glacier/keys (or $GLACIER_HOME/keys)")
	fmt.Fprintln(w, "  --key-file <path>          path to a seed file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - signed messages are written to stdout as JSON; copy the file to the online host")
	fmt.Fprintln(w, "  - the Message-CID printed on stderr lets both hosts cross-check the copy")
	fmt.Fprintln(w, "  - signing commands accept --archive to also keep an immutable local copy")
	fmt.Fprintln(w, "  - no command here ever touches the network")
}

// signerFlags is the common signer flag trio.
type signerFlags struct {
	seedHex string
	signer  string
	keyFile string
}

func (sf *signerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.seedHex, "seed-hex", "", "Inline seed spec ([alg:]64 hex chars)")
	fs.StringVar(&sf.signer, "signer", "", "Stored key name")
	fs.StringVar(&sf.keyFile, "key-file", "", "Seed file path")
}

func (sf *signerFlags) load(errOut io.Writer) (keys.Signer, bool) {
	set := 0
	for _, v := range []string{sf.seedHex, sf.signer, sf.keyFile} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return nil, false
	}
	if set > 1 {
		fmt.Fprintln(errOut, "conflicting signer flags: provide exactly one of --seed-hex, --signer, --key-file")
		return nil, false
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	signer, err := ks.LoadSigner(sf.seedHex, sf.signer, sf.keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return nil, false
	}
	return signer, true
}

// emitSigned writes the signed output as indented JSON plus its content id,
// optionally keeping an archive copy.
func emitSigned(out, errOut io.Writer, v any, keep bool) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "encode output: %v\n", err)
		return 1
	}
	data = append(data, '\n')
	fmt.Fprintf(errOut, "Message-CID: %s\n", msgid.String(data))
	if keep {
		store, err := archive.Open("")
		if err != nil {
			fmt.Fprintf(errOut, "archive: %v\n", err)
			return 1
		}
		if _, err := store.Put(data); err != nil {
			fmt.Fprintf(errOut, "archive: %v\n", err)
			return 1
		}
	}
	_, _ = out.Write(data)
	return 0
}

func archiveFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("archive", false, "Also store the signed output in the local archive")
}

func reportBuildError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "%v\n", err)
	if wallet.IsInputError(err) {
		return 2
	}
	return 1
}

func cmdTransfer(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var to, amount, fee, memo string
	fs.StringVar(&to, "to", "", "Destination account identifier")
	fs.StringVar(&amount, "amount", "", "Amount in decimal ICP")
	fs.StringVar(&fee, "fee", "", "Fee in decimal ICP (default 0.0001)")
	fs.StringVar(&memo, "memo", "", "Transfer memo (default 0)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if to == "" {
		fmt.Fprintln(errOut, "missing --to")
		return 2
	}
	if amount == "" {
		fmt.Fprintln(errOut, "missing --amount")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	bundle, err := wallet.New(signer).Transfer(wallet.TransferArgs{
		To:     to,
		Amount: amount,
		Fee:    fee,
		Memo:   memo,
	})
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, []ingress.Bundle{bundle}, *keep)
}

func cmdBalance(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var account string
	fs.StringVar(&account, "account", "", "Account to query (default: the signer's own)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	msg, err := wallet.New(signer).Balance(account)
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, msg, *keep)
}

func cmdNotify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var blockHeight, toCanister, maxFee string
	fs.StringVar(&blockHeight, "block-height", "", "Ledger block height of the transfer")
	fs.StringVar(&toCanister, "to-canister", "", "Canister to notify")
	fs.StringVar(&maxFee, "max-fee", "", "Maximum fee in decimal ICP (default 0.0001)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if blockHeight == "" {
		fmt.Fprintln(errOut, "missing --block-height")
		return 2
	}
	if toCanister == "" {
		fmt.Fprintln(errOut, "missing --to-canister")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	bundle, err := wallet.New(signer).Notify(wallet.NotifyArgs{
		BlockHeight: blockHeight,
		ToCanister:  toCanister,
		MaxFee:      maxFee,
	})
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, []ingress.Bundle{bundle}, *keep)
}

func cmdNeuronStake(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("neuron-stake", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var name, amount, fee string
	var nonceFlag uint64
	var nonceSet bool
	fs.StringVar(&name, "name", "", "Neuron name (at most 8 ASCII characters)")
	fs.Func("nonce", "Explicit neuron nonce", func(v string) error {
		n, err := parseFlagUint(v)
		if err != nil {
			return err
		}
		nonceFlag = n
		nonceSet = true
		return nil
	})
	fs.StringVar(&amount, "amount", "", "Amount to stake in decimal ICP (omit to only refresh)")
	fs.StringVar(&fee, "fee", "", "Fee in decimal ICP (default 0.0001)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	stakeArgs := wallet.NeuronStakeArgs{Name: name, Amount: amount, Fee: fee}
	if nonceSet {
		stakeArgs.Nonce = &nonceFlag
	}
	bundles, err := wallet.New(signer).NeuronStake(stakeArgs)
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, bundles, *keep)
}

func cmdNeuronManage(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("neuron-manage", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var manage wallet.NeuronManageArgs
	fs.StringVar(&manage.NeuronID, "neuron-id", "", "Neuron id (accepts _ separators)")
	fs.StringVar(&manage.AddHotKey, "add-hot-key", "", "Principal to add as hot key")
	fs.StringVar(&manage.RemoveHotKey, "remove-hot-key", "", "Principal to remove as hot key")
	fs.StringVar(&manage.AdditionalDissolveDelaySeconds, "additional-dissolve-delay-seconds", "", "Seconds to add to the dissolve delay")
	fs.BoolVar(&manage.StartDissolving, "start-dissolving", false, "Start dissolving")
	fs.BoolVar(&manage.StopDissolving, "stop-dissolving", false, "Stop dissolving")
	fs.BoolVar(&manage.Disburse, "disburse", false, "Disburse the dissolved stake")
	fs.BoolVar(&manage.Spawn, "spawn", false, "Spawn a neuron from accumulated maturity")
	fs.StringVar(&manage.SplitAmount, "split", "", "Amount in decimal ICP to split into a new neuron")
	fs.StringVar(&manage.MergeFromNeuron, "merge-from-neuron", "", "Neuron id to merge stake from")
	fs.StringVar(&manage.MergeMaturityPercentage, "merge-maturity", "", "Percentage of maturity to merge (1-100)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if manage.NeuronID == "" {
		fmt.Fprintln(errOut, "missing --neuron-id")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	bundles, err := wallet.New(signer).NeuronManage(manage)
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, bundles, *keep)
}

func cmdListNeurons(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("list-neurons", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)
	keep := archiveFlag(fs)
	var neuronIDs stringList
	fs.Var(&neuronIDs, "neuron-id", "Neuron id to fetch (repeatable; none lists all readable neurons)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	msg, err := wallet.New(signer).ListNeurons(neuronIDs)
	if err != nil {
		return reportBuildError(errOut, err)
	}
	return emitSigned(out, errOut, msg, *keep)
}

func cmdIDs(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("ids", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var sf signerFlags
	sf.register(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}

	w := wallet.New(signer)
	fmt.Fprintf(out, "Principal id: %s\n", w.Principal())
	fmt.Fprintf(out, "Account id:   %s\n", w.Account())
	return 0
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-glacier decode <message-file>")
		return 2
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read message file: %v\n", err)
		return 1
	}
	msgs, err := ingress.ParseMessages(data)
	if err != nil {
		fmt.Fprintf(errOut, "parse message file: %v\n", err)
		return 1
	}
	for i, msg := range msgs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		text, err := ingress.RenderHuman(msg)
		if err != nil {
			fmt.Fprintf(errOut, "decode message %d: %v\n", i+1, err)
			return 1
		}
		_, _ = io.WriteString(out, text)
	}
	return 0
}

func cmdMsgCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("msg-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-glacier msg-cid <message-file>")
		return 2
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read message file: %v\n", err)
		return 1
	}
	id, err := msgid.ForBytes(data)
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-glacier key: local seed storage for the offline host")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-glacier key init --name <name> [--seed-hex <[alg:]64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-glacier key list")
	fmt.Fprintln(w, "  xdao-glacier key export --name <name>")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name, seedHex string
	var force bool
	fs.StringVar(&name, "name", "", "Key name (directory under the key store)")
	fs.StringVar(&seedHex, "seed-hex", "", "Seed spec ([alg:]64 hex chars); omitted seeds are drawn from crypto/rand")
	fs.BoolVar(&force, "force", false, "Overwrite an existing key")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	alg := keys.Ed25519
	var seed []byte
	if seedHex != "" {
		alg, seed, err = keys.ParseSeedSpec(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, keys.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	path, err := ks.StoreKey(name, alg, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	signer, err := keys.NewSigner(alg, seed)
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created key: %s (%s)\n", name, alg)
	fmt.Fprintf(out, "Principal id: %s\n", signer.Principal())
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s (%s)\n", e.Name, e.Algorithm)
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	fs.StringVar(&name, "name", "", "Key name")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	signer, err := ks.ExportKey(name)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	w := wallet.New(signer)
	fmt.Fprintf(out, "Principal id: %s\n", w.Principal())
	fmt.Fprintf(out, "Account id:   %s\n", w.Account())
	return 0
}

func cmdArchive(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printArchiveUsage(errOut)
		return 2
	}
	switch args[0] {
	case "list":
		return cmdArchiveList(args[1:], out, errOut)
	case "show":
		return cmdArchiveShow(args[1:], out, errOut)
	case "put":
		return cmdArchivePut(args[1:], out, errOut)
	case "help", "-h", "--help":
		printArchiveUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n\n", args[0])
		printArchiveUsage(errOut)
		return 2
	}
}

func printArchiveUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-glacier archive: immutable record of signed message files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-glacier archive list")
	fmt.Fprintln(w, "  xdao-glacier archive show <cid>")
	fmt.Fprintln(w, "  xdao-glacier archive put <message-file>")
}

func cmdArchiveList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	store, err := archive.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		return 1
	}
	ids, err := store.List()
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		return 1
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return 0
}

func cmdArchiveShow(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-glacier archive show <cid>")
		return 2
	}
	id, err := cid.Decode(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid cid: %v\n", err)
		return 2
	}
	store, err := archive.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		return 1
	}
	data, err := store.Get(id)
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		if archive.IsNotFound(err) {
			return 2
		}
		return 1
	}
	_, _ = out.Write(data)
	return 0
}

func cmdArchivePut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-glacier archive put <message-file>")
		return 2
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read message file: %v\n", err)
		return 1
	}
	store, err := archive.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		return 1
	}
	id, err := store.Put(data)
	if err != nil {
		fmt.Fprintf(errOut, "archive: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func parseFlagUint(v string) (uint64, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected an unsigned integer, got %q", v)
	}
	return n, nil
}
