package push

import "reflect"

type wsMsg struct {
	mType int
	data  []byte
	err   error
}

// Envelope wraps every frame pushed over the websocket with its type name,
// the way the teacher's BaseMessage does.
type Envelope struct {
	Name    string
	Payload any
}

// NewEnvelope wraps payload, naming it by its concrete type.
func NewEnvelope(payload any) Envelope {
	return Envelope{
		Name:    reflect.TypeOf(payload).Name(),
		Payload: payload,
	}
}

// PriceFrame is the payload pushed to subscribers of one instrument.
type PriceFrame struct {
	Instrument string
	Price      int64
	Conf       float64
	Present    bool
}
