package rpc

import (
	"encoding/json"
	"testing"
)

// FuzzSendParams feeds arbitrary JSON through request parsing and the
// ledger_send argument decoders. None of them may panic.
func FuzzSendParams(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"ledger_getInfo","params":null,"id":1}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"jetton_getData","params":{"address":"abc"},"id":"test"}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"ledger_send","params":{"from":"0:00","to":"0:01","value":"0.1","body":"b5ee9c72"},"id":2}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"ledger_send","params":{"value":"-1","body":"zz"},"id":3}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"method":"","params":[]}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"ledger_send","params":[1,2,3],"id":999}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		var p SendParam
		if parseParams(&req, &p) != nil {
			return
		}
		parseAddr("from", p.From)
		parseAddr("to", p.To)
		parseTON("value", p.Value)
		if p.Body != "" {
			decodeBOC(p.Body)
		}
	})
}
