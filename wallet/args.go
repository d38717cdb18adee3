package wallet

import (
	"xdao.co/glacier/candid"
	"xdao.co/glacier/ledger"
	"xdao.co/glacier/principal"
)

// Candid argument shapes for the ledger and governance methods. The field
// names below are part of the remote interface; renaming one changes its
// field hash and therefore the wire bytes.

var (
	blobType      = candid.VecType{Elem: candid.Nat8}
	e8sType       = candid.RecordType{Fields: []candid.Field{{Name: "e8s", Type: candid.Nat64}}}
	timestampType = candid.RecordType{Fields: []candid.Field{{Name: "timestamp_nanos", Type: candid.Nat64}}}
	neuronIDType  = candid.RecordType{Fields: []candid.Field{{Name: "id", Type: candid.Nat64}}}
	accountType   = candid.RecordType{Fields: []candid.Field{{Name: "hash", Type: blobType}}}
)

func e8sValue(t ledger.Tokens) candid.Value {
	return candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "e8s", Value: candid.Nat64Value(t.E8s())},
	}}
}

func optSubAccount(sub *ledger.SubAccount) candid.Value {
	if sub == nil {
		return candid.None(blobType)
	}
	return candid.Some(candid.BlobValue(sub[:]))
}

func optPrincipal(p *principal.Principal) candid.Value {
	if p == nil {
		return candid.None(candid.PrincipalType)
	}
	return candid.Some(candid.PrincipalValue(*p))
}

func neuronIDValue(id uint64) candid.Value {
	return candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "id", Value: candid.Nat64Value(id)},
	}}
}

func sendArgs(memo uint64, amount, fee ledger.Tokens, fromSub *ledger.SubAccount, to ledger.AccountIdentifier) ([]byte, error) {
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "memo", Value: candid.Nat64Value(memo)},
		{Name: "amount", Value: e8sValue(amount)},
		{Name: "fee", Value: e8sValue(fee)},
		{Name: "from_subaccount", Value: optSubAccount(fromSub)},
		{Name: "to", Value: candid.TextValue(to.String())},
		{Name: "created_at_time", Value: candid.None(timestampType)},
	}})
}

func accountBalanceArgs(account ledger.AccountIdentifier) ([]byte, error) {
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "account", Value: candid.TextValue(account.String())},
	}})
}

func notifyArgs(blockHeight uint64, maxFee ledger.Tokens, fromSub *ledger.SubAccount, toCanister principal.Principal, toSub *ledger.SubAccount) ([]byte, error) {
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "block_height", Value: candid.Nat64Value(blockHeight)},
		{Name: "max_fee", Value: e8sValue(maxFee)},
		{Name: "from_subaccount", Value: optSubAccount(fromSub)},
		{Name: "to_canister", Value: candid.PrincipalValue(toCanister)},
		{Name: "to_subaccount", Value: optSubAccount(toSub)},
	}})
}

func claimOrRefreshArgs(memo uint64, controller principal.Principal) ([]byte, error) {
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "memo", Value: candid.Nat64Value(memo)},
		{Name: "controller", Value: optPrincipal(&controller)},
	}})
}

func listNeuronsArgs(neuronIDs []uint64) ([]byte, error) {
	ids := make([]candid.Value, len(neuronIDs))
	for i, id := range neuronIDs {
		ids[i] = candid.Nat64Value(id)
	}
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "neuron_ids", Value: candid.VecValue{Elem: candid.Nat64, Values: ids}},
		{Name: "include_neurons_readable_by_caller", Value: candid.BoolValue(len(neuronIDs) == 0)},
	}})
}

// manage_neuron command variant. The alternative set is the closed set of
// commands this toolkit emits; candid subtyping lets the governance canister
// accept it against its wider declaration.
func commandAlternatives() []candid.Field {
	return []candid.Field{
		{Name: "Configure", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "operation", Type: candid.OptType{Elem: candid.VariantType{Alternatives: operationAlternatives()}}},
		}}},
		{Name: "Disburse", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "to_account", Type: candid.OptType{Elem: accountType}},
			{Name: "amount", Type: candid.OptType{Elem: e8sType}},
		}}},
		{Name: "Spawn", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "new_controller", Type: candid.OptType{Elem: candid.PrincipalType}},
		}}},
		{Name: "Split", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "amount_e8s", Type: candid.Nat64},
		}}},
		{Name: "Merge", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "source_neuron_id", Type: candid.OptType{Elem: neuronIDType}},
		}}},
		{Name: "MergeMaturity", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "percentage_to_merge", Type: candid.Nat32},
		}}},
	}
}

func operationAlternatives() []candid.Field {
	return []candid.Field{
		{Name: "IncreaseDissolveDelay", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "additional_dissolve_delay_seconds", Type: candid.Nat32},
		}}},
		{Name: "StartDissolving", Type: candid.RecordType{}},
		{Name: "StopDissolving", Type: candid.RecordType{}},
		{Name: "AddHotKey", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "new_hot_key", Type: candid.OptType{Elem: candid.PrincipalType}},
		}}},
		{Name: "RemoveHotKey", Type: candid.RecordType{Fields: []candid.Field{
			{Name: "hot_key_to_remove", Type: candid.OptType{Elem: candid.PrincipalType}},
		}}},
	}
}

func command(tag string, value candid.Value) candid.Value {
	return candid.VariantValue{Alternatives: commandAlternatives(), Tag: tag, Value: value}
}

func configureOperation(tag string, value candid.Value) candid.Value {
	op := candid.VariantValue{Alternatives: operationAlternatives(), Tag: tag, Value: value}
	return command("Configure", candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "operation", Value: candid.Some(op)},
	}})
}

// neuron_id_or_subaccount is the newer addressing field; this toolkit always
// addresses neurons through the id field and leaves it absent.
var neuronSelectorType = candid.VariantType{Alternatives: []candid.Field{
	{Name: "NeuronId", Type: neuronIDType},
	{Name: "Subaccount", Type: blobType},
}}

func manageNeuronArgs(neuronID uint64, cmd candid.Value) ([]byte, error) {
	return candid.Encode(candid.RecordValue{Fields: []candid.FieldValue{
		{Name: "id", Value: candid.Some(neuronIDValue(neuronID))},
		{Name: "command", Value: candid.Some(cmd)},
		{Name: "neuron_id_or_subaccount", Value: candid.None(neuronSelectorType)},
	}})
}
