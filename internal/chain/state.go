package chain

import "math/big"

// State holds the runtime counters persisted next to the accounts.
type State struct {
	NextLT  uint64   // Logical time of the next created message.
	TxCount uint64   // Transactions executed so far.
	Fees    *big.Int // Compute and forward fees collected, in nanotons.
}

// IsGenesis returns true if no message has been created yet.
func (s *State) IsGenesis() bool {
	return s.NextLT <= 1 && s.TxCount == 0
}

func (s State) clone() State {
	fees := new(big.Int)
	if s.Fees != nil {
		fees.Set(s.Fees)
	}
	return State{NextLT: s.NextLT, TxCount: s.TxCount, Fees: fees}
}
