package fuzz

import (
	"github.com/brunokim/logic-embed/fli"
)

// Fuzz feeds arbitrary text through the reader and writes accepted
// programs back, so a crash in either direction is caught.
func Fuzz(data []byte) int {
	m := fli.NewMachine()
	refs, err := m.ReadProgram(string(data))
	if err != nil {
		return 0
	}
	for _, ref := range refs {
		m.WriteTerm(ref, fli.WriteOpts{Quoted: true})
	}
	return 1
}
