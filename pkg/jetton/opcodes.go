// Package jetton implements the wire format of the jetton token protocol:
// operation codes, message bodies, account state layouts, code images,
// deterministic wallet address derivation and the exit-code taxonomy.
//
// Everything here is pure. Account logic lives in internal/contract and
// message delivery in internal/chain.
package jetton

import "fmt"

// Operation codes. The first nine are part of the token standard and must
// match every compatible implementation bit for bit.
const (
	OpTransfer             uint32 = 0x0f8a7ea5
	OpInternalTransfer     uint32 = 0x178d4519
	OpTransferNotification uint32 = 0x7362d09c
	OpBurn                 uint32 = 0x595f07bc
	OpBurnNotification     uint32 = 0x7bdd97de
	OpExcesses             uint32 = 0xd53276db
	OpProvideWalletAddress uint32 = 0x2c76b973
	OpTakeWalletAddress    uint32 = 0xd1735400
	OpMint                 uint32 = 0xfc708bd2

	OpChangeAdmin          uint32 = 0x6501f354
	OpClaimAdmin           uint32 = 0xfb88e119
	OpChangeContent        uint32 = 0xcb862902
	OpCloseMinting         uint32 = 0x22300d01
	OpClaimTon             uint32 = 0x0393b1ce
	OpProvideWalletBalance uint32 = 0x7ac8d559
	OpTakeWalletBalance    uint32 = 0xca77fdc2
	OpSetStatus            uint32 = 0xeed236d3
	OpCallTo               uint32 = 0x235caf52
	OpUpgrade              uint32 = 0x2508d66a
)

// BounceSentinel replaces the op code of a bounced message body.
const BounceSentinel uint32 = 0xffffffff

var opNames = map[uint32]string{
	OpTransfer:             "transfer",
	OpInternalTransfer:     "internal_transfer",
	OpTransferNotification: "transfer_notification",
	OpBurn:                 "burn",
	OpBurnNotification:     "burn_notification",
	OpExcesses:             "excesses",
	OpProvideWalletAddress: "provide_wallet_address",
	OpTakeWalletAddress:    "take_wallet_address",
	OpMint:                 "mint",
	OpChangeAdmin:          "change_admin",
	OpClaimAdmin:           "claim_admin",
	OpChangeContent:        "change_content",
	OpCloseMinting:         "close_minting",
	OpClaimTon:             "claim_ton",
	OpProvideWalletBalance: "provide_wallet_balance",
	OpTakeWalletBalance:    "take_wallet_balance",
	OpSetStatus:            "set_status",
	OpCallTo:               "call_to",
	OpUpgrade:              "upgrade",
	BounceSentinel:         "bounced",
}

// OpName returns a human readable name for an op code.
func OpName(op uint32) string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("0x%08x", op)
}
