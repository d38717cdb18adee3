package wallet

import (
	"xdao.co/glacier/candid"
	"xdao.co/glacier/ingress"
	"xdao.co/glacier/ledger"
	"xdao.co/glacier/principal"
)

// NeuronStakeArgs describes staking or refreshing a neuron. Exactly one of
// Name and Nonce identifies the neuron; an empty Amount skips the transfer
// and only refreshes an existing stake.
type NeuronStakeArgs struct {
	Name   string
	Nonce  *uint64
	Amount string
	Fee    string
}

// NeuronStake builds the stake sequence: an optional transfer to the
// governance staking account with the nonce as memo, then the
// claim_or_refresh_neuron_from_account call that makes governance notice it.
func (w *Wallet) NeuronStake(args NeuronStakeArgs) ([]ingress.Bundle, error) {
	nonce, err := stakeNonce(args.Name, args.Nonce)
	if err != nil {
		return nil, err
	}
	controller := w.signer.Principal()

	var bundles []ingress.Bundle
	if args.Amount != "" {
		sub := ledger.NeuronStakeSubAccount(controller, nonce)
		stakeAccount := ledger.NewAccountIdentifier(principal.GovernanceCanister, &sub)
		amount, err := ledger.ParseTokens(args.Amount)
		if err != nil {
			return nil, wrapError(KindInput, "GLC-WAL-002", "invalid amount", err)
		}
		fee, err := parseFee(args.Fee)
		if err != nil {
			return nil, err
		}
		arg, err := sendArgs(nonce, amount, fee, nil, stakeAccount)
		if err != nil {
			return nil, wrapError(KindInternal, "GLC-WAL-005", "encoding send_dfx argument", err)
		}
		transfer, err := w.update(principal.LedgerCanister, "send_dfx", arg)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, transfer)
	}

	arg, err := claimOrRefreshArgs(nonce, controller)
	if err != nil {
		return nil, wrapError(KindInternal, "GLC-WAL-013", "encoding claim_or_refresh argument", err)
	}
	claim, err := w.update(principal.GovernanceCanister, "claim_or_refresh_neuron_from_account", arg)
	if err != nil {
		return nil, err
	}
	return append(bundles, claim), nil
}

// stakeNonce resolves the neuron nonce from a memorable name or an explicit
// value. A name is at most 8 ASCII bytes, read as a zero-left-padded
// big-endian u64, so the same name always lands on the same neuron account.
func stakeNonce(name string, nonce *uint64) (uint64, error) {
	switch {
	case name != "" && nonce != nil:
		return 0, newError(KindInput, "GLC-WAL-014", "neuron name and nonce are mutually exclusive")
	case nonce != nil:
		return *nonce, nil
	case name == "":
		return 0, newError(KindInput, "GLC-WAL-015", "a neuron name or nonce is required")
	}
	if len(name) > 8 {
		return 0, newError(KindInput, "GLC-WAL-016", "neuron name must be at most 8 characters")
	}
	var v uint64
	for i := 0; i < len(name); i++ {
		if name[i] > 0x7f {
			return 0, newError(KindInput, "GLC-WAL-017", "neuron name must be ASCII")
		}
		v = v<<8 | uint64(name[i])
	}
	return v, nil
}

// NeuronManageArgs selects management operations on one neuron. Several may
// be set at once; each becomes its own manage_neuron message.
type NeuronManageArgs struct {
	NeuronID string

	AddHotKey                      string
	RemoveHotKey                   string
	AdditionalDissolveDelaySeconds string
	StartDissolving                bool
	StopDissolving                 bool
	Disburse                       bool
	Spawn                          bool
	SplitAmount                    string
	MergeFromNeuron                string
	MergeMaturityPercentage        string
}

// NeuronManage builds one signed manage_neuron call per requested operation,
// in a fixed order independent of how the caller filled the struct.
func (w *Wallet) NeuronManage(args NeuronManageArgs) ([]ingress.Bundle, error) {
	neuronID, err := parseNeuronID(args.NeuronID)
	if err != nil {
		return nil, err
	}

	var commands []candid.Value

	if args.AddHotKey != "" {
		hotKey, err := principal.Decode(args.AddHotKey)
		if err != nil {
			return nil, wrapError(KindInput, "GLC-WAL-018", "invalid hot key principal", err)
		}
		commands = append(commands, configureOperation("AddHotKey", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "new_hot_key", Value: optPrincipal(&hotKey)},
		}}))
	}
	if args.RemoveHotKey != "" {
		hotKey, err := principal.Decode(args.RemoveHotKey)
		if err != nil {
			return nil, wrapError(KindInput, "GLC-WAL-019", "invalid hot key principal", err)
		}
		commands = append(commands, configureOperation("RemoveHotKey", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "hot_key_to_remove", Value: optPrincipal(&hotKey)},
		}}))
	}
	if args.AdditionalDissolveDelaySeconds != "" {
		seconds, err := parseDissolveDelay(args.AdditionalDissolveDelaySeconds)
		if err != nil {
			return nil, err
		}
		commands = append(commands, configureOperation("IncreaseDissolveDelay", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "additional_dissolve_delay_seconds", Value: candid.Nat32Value(seconds)},
		}}))
	}
	if args.StartDissolving {
		commands = append(commands, configureOperation("StartDissolving", candid.RecordValue{}))
	}
	if args.StopDissolving {
		commands = append(commands, configureOperation("StopDissolving", candid.RecordValue{}))
	}
	if args.Disburse {
		commands = append(commands, command("Disburse", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "to_account", Value: candid.None(accountType)},
			{Name: "amount", Value: candid.None(e8sType)},
		}}))
	}
	if args.Spawn {
		commands = append(commands, command("Spawn", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "new_controller", Value: optPrincipal(nil)},
		}}))
	}
	if args.SplitAmount != "" {
		amount, err := ledger.ParseTokens(args.SplitAmount)
		if err != nil {
			return nil, wrapError(KindInput, "GLC-WAL-020", "invalid split amount", err)
		}
		commands = append(commands, command("Split", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "amount_e8s", Value: candid.Nat64Value(amount.E8s())},
		}}))
	}
	if args.MergeFromNeuron != "" {
		source, err := parseNeuronID(args.MergeFromNeuron)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command("Merge", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "source_neuron_id", Value: candid.Some(neuronIDValue(source))},
		}}))
	}
	if args.MergeMaturityPercentage != "" {
		percentage, err := parseMergeMaturity(args.MergeMaturityPercentage)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command("MergeMaturity", candid.RecordValue{Fields: []candid.FieldValue{
			{Name: "percentage_to_merge", Value: candid.Nat32Value(percentage)},
		}}))
	}

	if len(commands) == 0 {
		return nil, newError(KindInput, "GLC-WAL-021", "no neuron management operation selected")
	}

	bundles := make([]ingress.Bundle, 0, len(commands))
	for _, cmd := range commands {
		arg, err := manageNeuronArgs(neuronID, cmd)
		if err != nil {
			return nil, wrapError(KindInternal, "GLC-WAL-022", "encoding manage_neuron argument", err)
		}
		bundle, err := w.update(principal.GovernanceCanister, "manage_neuron", arg)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

func parseDissolveDelay(s string) (uint32, error) {
	seconds, err := parseDecimalUint(s)
	if err != nil || seconds > 0xffffffff {
		return 0, wrapError(KindInput, "GLC-WAL-023", "invalid dissolve delay", err)
	}
	return uint32(seconds), nil
}

func parseMergeMaturity(s string) (uint32, error) {
	percentage, err := parseDecimalUint(s)
	if err != nil || percentage < 1 || percentage > 100 {
		return 0, wrapError(KindInput, "GLC-WAL-024", "merge maturity percentage must be between 1 and 100", err)
	}
	return uint32(percentage), nil
}

// ListNeurons builds a signed list_neurons query. With no ids it asks for
// every neuron the caller can read.
func (w *Wallet) ListNeurons(neuronIDs []string) (ingress.Message, error) {
	ids := make([]uint64, len(neuronIDs))
	for i, s := range neuronIDs {
		id, err := parseNeuronID(s)
		if err != nil {
			return ingress.Message{}, err
		}
		ids[i] = id
	}
	arg, err := listNeuronsArgs(ids)
	if err != nil {
		return ingress.Message{}, wrapError(KindInternal, "GLC-WAL-025", "encoding list_neurons argument", err)
	}
	return w.query(principal.GovernanceCanister, "list_neurons", arg)
}
