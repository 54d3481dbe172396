package packet

import (
	"io"

	"github.com/ironvein/blocksrv/internal/nbt"
	"github.com/ironvein/blocksrv/internal/varint"
)

// ClientInformation is the serverbound settings packet; only the fields
// the core consumes are modeled.
type ClientInformation struct {
	Locale      string
	ViewDistance int8
}

func (ClientInformation) ID() int32 { return 0x00 }
func (p ClientInformation) Encode(w io.Writer) error {
	if err := writeString(w, p.Locale); err != nil {
		return err
	}
	return writeByte(w, byte(p.ViewDistance))
}

func decodeClientInformation(r io.Reader) (Packet, error) {
	locale, err := readString(r)
	if err != nil {
		return nil, err
	}
	vd, err := readByte(r)
	if err != nil {
		return nil, err
	}
	return ClientInformation{Locale: locale, ViewDistance: int8(vd)}, nil
}

// CustomPayload carries a plugin-message channel identifier and opaque
// body, used both ways (the server sends the protocol "brand" over it).
type CustomPayload struct {
	Channel string
	Data    []byte
}

func (CustomPayload) ID() int32 { return 0x02 }
func (p CustomPayload) Encode(w io.Writer) error {
	if err := writeString(w, p.Channel); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

func decodeCustomPayload(r io.Reader) (Packet, error) {
	channel, err := readString(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return CustomPayload{Channel: channel, Data: data}, nil
}

// KnownPack identifies one data pack by namespace/id/version triple.
type KnownPack struct {
	Namespace string
	ID        string
	Version   string
}

// ServerboundKnownPacks is the client's reply listing the packs it has.
type ServerboundKnownPacks struct {
	Packs []KnownPack
}

func (ServerboundKnownPacks) ID() int32 { return 0x07 }
func (p ServerboundKnownPacks) Encode(w io.Writer) error {
	return encodeKnownPacks(w, p.Packs)
}

func decodeServerboundKnownPacks(r io.Reader) (Packet, error) {
	packs, err := decodeKnownPacks(r)
	if err != nil {
		return nil, err
	}
	return ServerboundKnownPacks{Packs: packs}, nil
}

// ClientboundKnownPacks is the server's initial "here is what I have"
// announcement, sent once per spec.md §4.G rule 4.
type ClientboundKnownPacks struct {
	Packs []KnownPack
}

func (ClientboundKnownPacks) ID() int32 { return 0x0E }
func (p ClientboundKnownPacks) Encode(w io.Writer) error {
	return encodeKnownPacks(w, p.Packs)
}

func encodeKnownPacks(w io.Writer, packs []KnownPack) error {
	if err := writeVarInt(w, int32(len(packs))); err != nil {
		return err
	}
	for _, pk := range packs {
		if err := writeString(w, pk.Namespace); err != nil {
			return err
		}
		if err := writeString(w, pk.ID); err != nil {
			return err
		}
		if err := writeString(w, pk.Version); err != nil {
			return err
		}
	}
	return nil
}

func decodeKnownPacks(r io.Reader) ([]KnownPack, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	packs := make([]KnownPack, n)
	for i := range packs {
		ns, err := readString(r)
		if err != nil {
			return nil, err
		}
		id, err := readString(r)
		if err != nil {
			return nil, err
		}
		version, err := readString(r)
		if err != nil {
			return nil, err
		}
		packs[i] = KnownPack{Namespace: ns, ID: id, Version: version}
	}
	return packs, nil
}

// RegistryEntry is one entry in a RegistryData packet: an identifier and
// an optional NBT payload (absent means "use the vanilla default").
type RegistryEntry struct {
	ID   varint.Identifier
	Data nbt.Compound // nil if absent
}

// RegistryData streams one registry's entries to the client.
type RegistryData struct {
	Registry varint.Identifier
	Entries  []RegistryEntry
}

func (RegistryData) ID() int32 { return 0x07 }
func (p RegistryData) Encode(w io.Writer) error {
	if err := writeString(w, p.Registry.String()); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(p.Entries))); err != nil {
		return err
	}
	for _, e := range p.Entries {
		if err := writeString(w, e.ID.String()); err != nil {
			return err
		}
		if err := writeBool(w, e.Data != nil); err != nil {
			return err
		}
		if e.Data != nil {
			if err := nbt.WriteNetwork(w, e.Data); err != nil {
				return err
			}
		}
	}
	return nil
}

// TagRegistry is one registry's tag set: tag name to the entry IDs it
// covers, by registry-relative numeric ID.
type TagRegistry struct {
	Registry string
	Tags     map[string][]int32
}

// UpdateTags streams the tag sets for one or more registries, sent
// alongside RegistryData per spec.md §4.G rule 4.
type UpdateTags struct {
	Registries []TagRegistry
}

func (UpdateTags) ID() int32 { return 0x0D }
func (p UpdateTags) Encode(w io.Writer) error {
	if err := writeVarInt(w, int32(len(p.Registries))); err != nil {
		return err
	}
	for _, reg := range p.Registries {
		if err := writeString(w, reg.Registry); err != nil {
			return err
		}
		if err := writeVarInt(w, int32(len(reg.Tags))); err != nil {
			return err
		}
		for name, ids := range reg.Tags {
			if err := writeString(w, name); err != nil {
				return err
			}
			if err := writeVarInt(w, int32(len(ids))); err != nil {
				return err
			}
			for _, id := range ids {
				if err := writeVarInt(w, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FinishConfiguration is the clientbound packet sent after the
// CONFIGURATION_TIMEOUT quiescence gate.
type FinishConfiguration struct{}

func (FinishConfiguration) ID() int32             { return 0x03 }
func (FinishConfiguration) Encode(io.Writer) error { return nil }

// AcknowledgeFinishConfiguration is the one serverbound packet acceptable
// once the server has sent FinishConfiguration.
type AcknowledgeFinishConfiguration struct{}

func (AcknowledgeFinishConfiguration) ID() int32 { return 0x03 }
func (AcknowledgeFinishConfiguration) Encode(io.Writer) error { return nil }

func decodeAcknowledgeFinishConfiguration(io.Reader) (Packet, error) {
	return AcknowledgeFinishConfiguration{}, nil
}

var configurationTable = map[int32]func(io.Reader) (Packet, error){
	0x00: decodeClientInformation,
	0x02: decodeCustomPayload,
	0x03: decodeAcknowledgeFinishConfiguration,
	0x07: decodeServerboundKnownPacks,
}

// DecodeConfiguration dispatches a raw configuration-stage serverbound
// packet body.
func DecodeConfiguration(id int32, body []byte) (Packet, error) {
	return decodeFrom(StageConfiguration, configurationTable, id, body)
}
