package fli

import (
	"encoding/json"
	"io"
)

// debugTracer streams solver ports as JSON lines. All methods are nil-safe
// so tracing costs a single comparison when disabled.
type debugTracer struct {
	enc *json.Encoder
}

func newDebugTracer(w io.Writer) *debugTracer {
	return &debugTracer{enc: json.NewEncoder(w)}
}

type portEvent struct {
	Port  string `json:"port"`
	Depth int    `json:"depth"`
	Goal  string `json:"goal"`
}

func (d *debugTracer) port(port string, depth int, goal Cell) {
	if d == nil {
		return
	}
	d.enc.Encode(portEvent{Port: port, Depth: depth, Goal: formatCell(goal)})
}
