package ingress

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"xdao.co/glacier/candid"
	"xdao.co/glacier/ledger"
	"xdao.co/glacier/principal"
)

// RenderHuman decodes a message back into reviewable text. This is the last
// audit point before the bytes leave the air gap, so every signing-relevant
// field is shown: who signs, what canister and method, the full arguments,
// and the expiry. It needs no key material and works on files produced by
// other builds of the toolkit.
func RenderHuman(msg Message) (string, error) {
	env, err := DecodeMessage(msg)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Call type:      %s\n", msg.CallType)
	if msg.RequestID != "" {
		fmt.Fprintf(&sb, "Request id:     0x%s\n", msg.RequestID)
	}
	fmt.Fprintf(&sb, "Sender:         %s\n", principalText(env.Content.Sender))
	if env.Content.CanisterID != nil {
		fmt.Fprintf(&sb, "Canister id:    %s\n", principalText(env.Content.CanisterID))
	}
	if env.Content.MethodName != "" {
		fmt.Fprintf(&sb, "Method name:    %s\n", env.Content.MethodName)
	}
	expiry := time.Unix(0, int64(env.Content.IngressExpiry)).UTC()
	fmt.Fprintf(&sb, "Ingress expiry: %s\n", expiry.Format(time.RFC3339Nano))

	if env.Content.Arg != nil {
		fmt.Fprintf(&sb, "Arguments:\n")
		if err := renderArg(&sb, env.Content.MethodName, env.Content.Arg); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func principalText(raw []byte) string {
	p, err := principal.FromBytes(raw)
	if err != nil {
		return "<invalid principal " + hex.EncodeToString(raw) + ">"
	}
	return p.String()
}

func renderArg(sb *strings.Builder, method string, arg []byte) error {
	args, err := candid.Decode(arg)
	if err != nil {
		return wrapError(KindEncoding, "GLC-REN-001", "decoding candid argument", err)
	}
	if len(args) != 1 || args[0].Kind != candid.KindRecord {
		fmt.Fprintf(sb, "  (raw) %s\n", hex.EncodeToString(arg))
		return nil
	}
	rec := args[0]

	switch method {
	case "send_dfx":
		renderSend(sb, rec)
	case "account_balance_dfx":
		renderTextLine(sb, rec, "account", "Account")
	case "notify_dfx":
		renderNotify(sb, rec)
	case "claim_or_refresh_neuron_from_account":
		renderClaimOrRefresh(sb, rec)
	case "manage_neuron":
		renderManageNeuron(sb, rec)
	case "list_neurons":
		renderListNeurons(sb, rec)
	default:
		fmt.Fprintf(sb, "  (raw) %s\n", hex.EncodeToString(arg))
	}
	return nil
}

func renderSend(sb *strings.Builder, rec candid.Decoded) {
	if memo, ok := rec.NatField("memo"); ok {
		fmt.Fprintf(sb, "  Memo:            %d\n", memo)
	}
	renderTokensLine(sb, rec, "amount", "Amount")
	renderTokensLine(sb, rec, "fee", "Fee")
	if to, ok := rec.TextField("to"); ok {
		fmt.Fprintf(sb, "  To account:      %s\n", to)
	}
	if sub := rec.OptField("from_subaccount"); sub != nil && sub.Kind == candid.KindBlob {
		fmt.Fprintf(sb, "  From subaccount: %s\n", hex.EncodeToString(sub.Blob))
	}
	if created := rec.OptField("created_at_time"); created != nil {
		if ns, ok := created.NatField("timestamp_nanos"); ok {
			t := time.Unix(0, int64(ns)).UTC()
			fmt.Fprintf(sb, "  Created at:      %s\n", t.Format(time.RFC3339Nano))
		}
	}
}

func renderNotify(sb *strings.Builder, rec candid.Decoded) {
	if height, ok := rec.NatField("block_height"); ok {
		fmt.Fprintf(sb, "  Block height:    %d\n", height)
	}
	renderTokensLine(sb, rec, "max_fee", "Max fee")
	if f, ok := rec.Record[candid.FieldHash("to_canister")]; ok && f.Kind == candid.KindPrincipal {
		fmt.Fprintf(sb, "  To canister:     %s\n", principalText(f.Principal))
	}
	if sub := rec.OptField("to_subaccount"); sub != nil && sub.Kind == candid.KindBlob {
		fmt.Fprintf(sb, "  To subaccount:   %s\n", hex.EncodeToString(sub.Blob))
	}
	if sub := rec.OptField("from_subaccount"); sub != nil && sub.Kind == candid.KindBlob {
		fmt.Fprintf(sb, "  From subaccount: %s\n", hex.EncodeToString(sub.Blob))
	}
}

func renderClaimOrRefresh(sb *strings.Builder, rec candid.Decoded) {
	if memo, ok := rec.NatField("memo"); ok {
		fmt.Fprintf(sb, "  Memo (nonce):    %d\n", memo)
	}
	if controller := rec.OptField("controller"); controller != nil && controller.Kind == candid.KindPrincipal {
		fmt.Fprintf(sb, "  Controller:      %s\n", principalText(controller.Principal))
	}
}

// Known manage_neuron command and configure-operation tags, recovered from
// the wire by field hash.
var variantTagNames = []string{
	"Spawn", "Split", "Follow", "ClaimOrRefresh", "Configure", "RegisterVote",
	"Merge", "DisburseToNeuron", "MakeProposal", "MergeMaturity", "Disburse",
	"IncreaseDissolveDelay", "StartDissolving", "StopDissolving",
	"AddHotKey", "RemoveHotKey", "SetDissolveTimestamp", "JoinCommunityFund",
}

func variantTagName(hash uint32) string {
	for _, name := range variantTagNames {
		if candid.FieldHash(name) == hash {
			return name
		}
	}
	return fmt.Sprintf("variant #%d", hash)
}

func renderManageNeuron(sb *strings.Builder, rec candid.Decoded) {
	if id := rec.OptField("id"); id != nil {
		if neuronID, ok := id.NatField("id"); ok {
			fmt.Fprintf(sb, "  Neuron id:       %d\n", neuronID)
		}
	}
	command := rec.OptField("command")
	if command == nil || command.Kind != candid.KindVariant {
		return
	}
	tag := variantTagName(command.Variant.Hash)
	payload := command.Variant.Value
	if tag == "Configure" && payload.Kind == candid.KindRecord {
		if op := payload.OptField("operation"); op != nil && op.Kind == candid.KindVariant {
			fmt.Fprintf(sb, "  Command:         Configure / %s\n", variantTagName(op.Variant.Hash))
			renderCommandDetails(sb, op.Variant.Value)
			return
		}
	}
	fmt.Fprintf(sb, "  Command:         %s\n", tag)
	renderCommandDetails(sb, payload)
}

func renderCommandDetails(sb *strings.Builder, payload candid.Decoded) {
	if payload.Kind != candid.KindRecord {
		return
	}
	if v, ok := payload.NatField("additional_dissolve_delay_seconds"); ok {
		fmt.Fprintf(sb, "  Dissolve delay:  +%ds\n", v)
	}
	if v, ok := payload.NatField("amount_e8s"); ok {
		fmt.Fprintf(sb, "  Amount:          %s ICP\n", ledger.Tokens(v))
	}
	if v, ok := payload.NatField("percentage_to_merge"); ok {
		fmt.Fprintf(sb, "  Merge maturity:  %d%%\n", v)
	}
	if key := payload.OptField("new_hot_key"); key != nil && key.Kind == candid.KindPrincipal {
		fmt.Fprintf(sb, "  New hot key:     %s\n", principalText(key.Principal))
	}
	if key := payload.OptField("hot_key_to_remove"); key != nil && key.Kind == candid.KindPrincipal {
		fmt.Fprintf(sb, "  Remove hot key:  %s\n", principalText(key.Principal))
	}
	if src := payload.OptField("source_neuron_id"); src != nil {
		if id, ok := src.NatField("id"); ok {
			fmt.Fprintf(sb, "  Merge from:      %d\n", id)
		}
	}
}

func renderListNeurons(sb *strings.Builder, rec candid.Decoded) {
	if f, ok := rec.Record[candid.FieldHash("neuron_ids")]; ok && f.Kind == candid.KindVec {
		ids := make([]string, len(f.Vec))
		for i, elem := range f.Vec {
			ids[i] = fmt.Sprintf("%d", elem.Nat)
		}
		fmt.Fprintf(sb, "  Neuron ids:      [%s]\n", strings.Join(ids, ", "))
	}
	if f, ok := rec.Record[candid.FieldHash("include_neurons_readable_by_caller")]; ok && f.Kind == candid.KindBool {
		fmt.Fprintf(sb, "  Include own:     %t\n", f.Bool)
	}
}

func renderTokensLine(sb *strings.Builder, rec candid.Decoded, field, label string) {
	f, ok := rec.Record[candid.FieldHash(field)]
	if !ok || f.Kind != candid.KindRecord {
		return
	}
	if e8s, ok := f.NatField("e8s"); ok {
		fmt.Fprintf(sb, "  %-16s %s ICP\n", label+":", ledger.Tokens(e8s))
	}
}

func renderTextLine(sb *strings.Builder, rec candid.Decoded, field, label string) {
	if v, ok := rec.TextField(field); ok {
		fmt.Fprintf(sb, "  %-16s %s\n", label+":", v)
	}
}
