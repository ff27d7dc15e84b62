package message

import (
	"encoding/json"
	"fmt"
)

// Codec encodes and decodes wire frames. It is an explicit instance rather
// than package-level state so callers control exactly one dispatcher per
// connection.
type Codec struct {
	decoders map[string]func([]byte) (Message, error)
}

// NewCodec builds a codec with decoders registered for every known frame
// type.
func NewCodec() *Codec {
	return &Codec{
		decoders: map[string]func([]byte) (Message, error){
			TypeChatMessage:          decodeInto[ChatMessage],
			TypeAnnouncement:         decodeInto[Announcement],
			TypeDrawData:             decodeInto[DrawData],
			TypeDrawAction:           decodeInto[DrawAction],
			TypeChosenWord:           decodeInto[ChosenWord],
			TypeGameError:            decodeInto[GameError],
			TypeGameState:            decodeInto[GameState],
			TypeJoinRoomHandshake:    decodeInto[JoinRoomHandshake],
			TypeNewWords:             decodeInto[NewWords],
			TypePhaseChange:          decodeInto[PhaseChange],
			TypePing:                 decodeInto[Ping],
			TypePlayersList:          decodeInto[PlayersList],
			TypeCurrentRoundDrawInfo: decodeInto[RoundDrawInfo],
			TypeDisconnectRequest:    decodeInto[DisconnectRequest],
		},
	}
}

func decodeInto[M Message](raw []byte) (Message, error) {
	var m M
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode parses a raw frame into its typed variant. A frame with an
// unrecognized discriminator decodes to Unknown with a nil error; only a
// malformed frame returns an error.
func (c *Codec) Decode(raw []byte) (Message, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	decoder, ok := c.decoders[envelope.Type]
	if !ok {
		return Unknown{Tag: envelope.Type}, nil
	}

	m, err := decoder(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", envelope.Type, err)
	}
	return m, nil
}

// Encode serializes a message into its tagged frame. The discriminator is
// spliced in from the message's Type so variant structs stay free of wire
// bookkeeping fields.
func (c *Codec) Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", m.Type(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", m.Type(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	tag, err := json.Marshal(m.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag

	return json.Marshal(fields)
}
