package packet

import (
	"io"

	"github.com/google/uuid"
)

// PlayerInfoAction is one bit of the action bitmask shared by every
// entry in a single PlayerInfoUpdate packet.
type PlayerInfoAction byte

const (
	ActionAddPlayer PlayerInfoAction = 1 << iota
	ActionInitializeChat
	ActionUpdateGameMode
	ActionUpdateListed
	ActionUpdateLatency
	ActionUpdateDisplayName
)

// PlayerInfoEntry is one player's fields for a PlayerInfoUpdate packet.
// All entries in one packet must share the same action mask, per
// spec.md §4.F.
type PlayerInfoEntry struct {
	UUID        uuid.UUID
	Name        string
	Properties  []ProfileProperty
	Listed      bool
	Latency     int32
	GameMode    int32
	DisplayName string
	HasDisplay  bool
}

// PlayerInfoUpdate adds or updates players in the client's tab list.
type PlayerInfoUpdate struct {
	Actions PlayerInfoAction
	Entries []PlayerInfoEntry
}

func (PlayerInfoUpdate) ID() int32 { return 0x3F }

func (p PlayerInfoUpdate) Encode(w io.Writer) error {
	if err := writeByte(w, byte(p.Actions)); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(p.Entries))); err != nil {
		return err
	}
	for _, e := range p.Entries {
		if err := writeUUID(w, e.UUID); err != nil {
			return err
		}
		if p.Actions&ActionAddPlayer != 0 {
			if err := writeString(w, e.Name); err != nil {
				return err
			}
			if err := writeVarInt(w, int32(len(e.Properties))); err != nil {
				return err
			}
			for _, prop := range e.Properties {
				if err := writeString(w, prop.Name); err != nil {
					return err
				}
				if err := writeString(w, prop.Value); err != nil {
					return err
				}
				if err := writeBool(w, prop.Signed); err != nil {
					return err
				}
				if prop.Signed {
					if err := writeString(w, prop.Signature); err != nil {
						return err
					}
				}
			}
		}
		if p.Actions&ActionInitializeChat != 0 {
			if err := writeBool(w, false); err != nil { // no chat session
				return err
			}
		}
		if p.Actions&ActionUpdateGameMode != 0 {
			if err := writeVarInt(w, e.GameMode); err != nil {
				return err
			}
		}
		if p.Actions&ActionUpdateListed != 0 {
			if err := writeBool(w, e.Listed); err != nil {
				return err
			}
		}
		if p.Actions&ActionUpdateLatency != 0 {
			if err := writeVarInt(w, e.Latency); err != nil {
				return err
			}
		}
		if p.Actions&ActionUpdateDisplayName != 0 {
			if err := writeBool(w, e.HasDisplay); err != nil {
				return err
			}
			if e.HasDisplay {
				if err := writeString(w, e.DisplayName); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PlayerInfoRemove drops players from the tab list by UUID.
type PlayerInfoRemove struct {
	UUIDs []uuid.UUID
}

func (PlayerInfoRemove) ID() int32 { return 0x40 }
func (p PlayerInfoRemove) Encode(w io.Writer) error {
	if err := writeVarInt(w, int32(len(p.UUIDs))); err != nil {
		return err
	}
	for _, id := range p.UUIDs {
		if err := writeUUID(w, id); err != nil {
			return err
		}
	}
	return nil
}
