package store

import (
	"encoding/json"

	"github.com/arcs-core/arcs/pkg/model"
)

// wireOp is the JSON-serializable form of a single field write, the unit
// a SQLiteDriver or MemoryDriver actually carries across the wire.
type wireOp struct {
	Actor string           `json:"actor"`
	Field string           `json:"field,omitempty"`
	Kind  string           `json:"kind"` // "add" or "remove"
	Value model.Primitive  `json:"value"`
	Ref   *model.Reference `json:"ref,omitempty"`
}

type wireEnvelope struct {
	Ops []wireOp `json:"ops"`
}

func encodeEnvelope(ops []wireOp) []byte {
	b, err := json.Marshal(wireEnvelope{Ops: ops})
	if err != nil {
		panic("store: wireEnvelope failed to marshal: " + err.Error())
	}
	return b
}

func decodeEnvelope(data []byte) ([]wireOp, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.Ops, nil
}
