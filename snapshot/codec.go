package snapshot

import (
	"bytes"
	"encoding/gob"
)

// balanceWire is the persisted form of a BalanceRecord. The observation
// slice is sparse and gob rejects nil slice elements, so the record is
// stored as slot count plus the observed entries.
type balanceWire struct {
	Slots    int
	Observed map[int]uint64
}

// GobEncode implements gob.GobEncoder.
func (r *BalanceRecord) GobEncode() ([]byte, error) {
	wire := balanceWire{
		Slots:    len(r.Observations),
		Observed: make(map[int]uint64),
	}
	for i, o := range r.Observations {
		if o != nil {
			wire.Observed[i] = *o
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *BalanceRecord) GobDecode(data []byte) error {
	var wire balanceWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	r.Observations = make([]*uint64, wire.Slots)
	for i, v := range wire.Observed {
		if i >= 0 && i < wire.Slots {
			b := v
			r.Observations[i] = &b
		}
	}
	return nil
}
