// Package wallet builds signed ledger and governance messages offline.
//
// Builders are pure: they validate their inputs, encode the candid argument,
// and seal envelopes with the supplied signer. Nothing here touches the
// network. Update calls come back paired with a pre-signed request-status
// query so the online side can poll the outcome without any key material.
package wallet

import (
	"strconv"
	"strings"
	"time"

	"xdao.co/glacier/ingress"
	"xdao.co/glacier/keys"
	"xdao.co/glacier/ledger"
	"xdao.co/glacier/principal"
)

// Wallet binds a signer to the NNS ledger and governance canisters.
type Wallet struct {
	signer keys.Signer
	now    func() time.Time
	nonce  func() ([]byte, error)
}

// Option adjusts wallet construction.
type Option func(*Wallet)

// WithClock substitutes the expiry clock. Tests use this to make envelopes
// reproducible.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) { w.now = now }
}

// WithNonceSource substitutes the nonce source.
func WithNonceSource(src func() ([]byte, error)) Option {
	return func(w *Wallet) { w.nonce = src }
}

// New builds a wallet around signer.
func New(signer keys.Signer, opts ...Option) *Wallet {
	w := &Wallet{signer: signer, now: time.Now, nonce: ingress.Nonce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Principal returns the caller principal the signer authenticates as.
func (w *Wallet) Principal() principal.Principal {
	return w.signer.Principal()
}

// Account returns the caller's default ledger account.
func (w *Wallet) Account() ledger.AccountIdentifier {
	return ledger.NewAccountIdentifier(w.signer.Principal(), nil)
}

// TransferArgs describes one ledger transfer. Amounts are decimal ICP text;
// an empty Fee selects the standard fee, an empty Memo selects memo 0.
type TransferArgs struct {
	To             string
	Amount         string
	Fee            string
	Memo           string
	FromSubAccount []byte
}

// Transfer builds a signed send_dfx call with its status query.
func (w *Wallet) Transfer(args TransferArgs) (ingress.Bundle, error) {
	to, err := ledger.DecodeAccountIdentifier(args.To)
	if err != nil {
		return ingress.Bundle{}, wrapError(KindInput, "GLC-WAL-001", "invalid destination account", err)
	}
	amount, err := ledger.ParseTokens(args.Amount)
	if err != nil {
		return ingress.Bundle{}, wrapError(KindInput, "GLC-WAL-002", "invalid amount", err)
	}
	fee, err := parseFee(args.Fee)
	if err != nil {
		return ingress.Bundle{}, err
	}
	memo, err := parseMemo(args.Memo)
	if err != nil {
		return ingress.Bundle{}, err
	}
	fromSub, err := parseSubAccount(args.FromSubAccount)
	if err != nil {
		return ingress.Bundle{}, err
	}

	arg, err := sendArgs(memo, amount, fee, fromSub, to)
	if err != nil {
		return ingress.Bundle{}, wrapError(KindInternal, "GLC-WAL-005", "encoding send_dfx argument", err)
	}
	return w.update(principal.LedgerCanister, "send_dfx", arg)
}

// Balance builds a signed account_balance_dfx query. An empty account queries
// the caller's own default account.
func (w *Wallet) Balance(account string) (ingress.Message, error) {
	target := w.Account()
	if account != "" {
		var err error
		target, err = ledger.DecodeAccountIdentifier(account)
		if err != nil {
			return ingress.Message{}, wrapError(KindInput, "GLC-WAL-006", "invalid account", err)
		}
	}
	arg, err := accountBalanceArgs(target)
	if err != nil {
		return ingress.Message{}, wrapError(KindInternal, "GLC-WAL-007", "encoding account_balance_dfx argument", err)
	}
	return w.query(principal.LedgerCanister, "account_balance_dfx", arg)
}

// NotifyArgs describes a notify_dfx call about a finished transfer block.
type NotifyArgs struct {
	BlockHeight    string
	ToCanister     string
	ToSubAccount   []byte
	FromSubAccount []byte
	MaxFee         string
}

// Notify builds a signed notify_dfx call with its status query.
func (w *Wallet) Notify(args NotifyArgs) (ingress.Bundle, error) {
	height, err := parseUint64Field(args.BlockHeight, "GLC-WAL-008", "invalid block height")
	if err != nil {
		return ingress.Bundle{}, err
	}
	toCanister, err := principal.Decode(args.ToCanister)
	if err != nil {
		return ingress.Bundle{}, wrapError(KindInput, "GLC-WAL-009", "invalid target canister", err)
	}
	maxFee, err := parseFee(args.MaxFee)
	if err != nil {
		return ingress.Bundle{}, err
	}
	toSub, err := parseSubAccount(args.ToSubAccount)
	if err != nil {
		return ingress.Bundle{}, err
	}
	fromSub, err := parseSubAccount(args.FromSubAccount)
	if err != nil {
		return ingress.Bundle{}, err
	}

	arg, err := notifyArgs(height, maxFee, fromSub, toCanister, toSub)
	if err != nil {
		return ingress.Bundle{}, wrapError(KindInternal, "GLC-WAL-010", "encoding notify_dfx argument", err)
	}
	return w.update(principal.LedgerCanister, "notify_dfx", arg)
}

func (w *Wallet) update(canister principal.Principal, method string, arg []byte) (ingress.Bundle, error) {
	nonce, err := w.nonce()
	if err != nil {
		return ingress.Bundle{}, err
	}
	expiry := ingress.Expiry(w.now())
	return ingress.SignUpdateWithStatus(w.signer, canister, method, arg, expiry, nonce)
}

func (w *Wallet) query(canister principal.Principal, method string, arg []byte) (ingress.Message, error) {
	expiry := ingress.Expiry(w.now())
	return ingress.SignQuery(w.signer, canister, method, arg, expiry)
}

func parseFee(fee string) (ledger.Tokens, error) {
	if fee == "" {
		return ledger.DefaultFee, nil
	}
	parsed, err := ledger.ParseTokens(fee)
	if err != nil {
		return 0, wrapError(KindInput, "GLC-WAL-003", "invalid fee", err)
	}
	return parsed, nil
}

func parseMemo(memo string) (uint64, error) {
	if memo == "" {
		return 0, nil
	}
	parsed, err := parseDecimalUint(memo)
	if err != nil {
		return 0, wrapError(KindInput, "GLC-WAL-004", "invalid memo", err)
	}
	return parsed, nil
}

func parseSubAccount(b []byte) (*ledger.SubAccount, error) {
	if b == nil {
		return nil, nil
	}
	sub, err := ledger.NewSubAccount(b)
	if err != nil {
		return nil, wrapError(KindInput, "GLC-WAL-011", "invalid subaccount", err)
	}
	return &sub, nil
}

func parseUint64Field(s, ruleID, msg string) (uint64, error) {
	parsed, err := parseDecimalUint(s)
	if err != nil {
		return 0, wrapError(KindInput, ruleID, msg, err)
	}
	return parsed, nil
}

// parseDecimalUint accepts plain base-10 digits only; strconv's tolerance of
// a leading "+" would otherwise leak through user input.
func parseDecimalUint(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// parseNeuronID accepts decimal neuron ids with optional `_` group
// separators, e.g. "380_519_530_470".
func parseNeuronID(s string) (uint64, error) {
	stripped := strings.ReplaceAll(s, "_", "")
	if stripped == "" || strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") {
		return 0, wrapError(KindInput, "GLC-WAL-012", "invalid neuron id", nil)
	}
	parsed, err := parseDecimalUint(stripped)
	if err != nil {
		return 0, wrapError(KindInput, "GLC-WAL-012", "invalid neuron id", err)
	}
	return parsed, nil
}
