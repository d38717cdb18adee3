package principal

// Well-known NNS canister principals. The raw forms are fixed by the IC
// mainnet registry and must never change.
var (
	// LedgerCanister is the ICP ledger, ryjl3-tyaaa-aaaaa-aaaba-cai.
	LedgerCanister = Principal{raw: []byte{0, 0, 0, 0, 0, 0, 0, 2, 1, 1}}

	// GovernanceCanister is the NNS governance canister,
	// rrkah-fqaaa-aaaaa-aaaaq-cai.
	GovernanceCanister = Principal{raw: []byte{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}}
)
