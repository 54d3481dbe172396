package packet

import "io"

// CommandNodeKind mirrors the wire format's low bits of a command node's
// flags byte: 0=root, 1=literal, 2=argument.
type CommandNodeKind byte

const (
	CommandNodeRoot CommandNodeKind = iota
	CommandNodeLiteral
	CommandNodeArgument
)

// CommandParserKind identifies an argument node's value parser. Only the
// subset named in spec.md §4.K is implemented; each sends the vanilla
// "brigadier:*"/"minecraft:*" parser identifier plus its properties.
type CommandParserKind int

const (
	CommandParserBool CommandParserKind = iota
	CommandParserInt
	CommandParserLong
	CommandParserFloat
	CommandParserDouble
	CommandParserBlockPosition
	CommandParserVec3
	CommandParserResourceKey
)

var commandParserIdentifiers = map[CommandParserKind]string{
	CommandParserBool:          "brigadier:bool",
	CommandParserInt:           "brigadier:integer",
	CommandParserLong:          "brigadier:long",
	CommandParserFloat:         "brigadier:float",
	CommandParserDouble:        "brigadier:double",
	CommandParserBlockPosition: "minecraft:block_pos",
	CommandParserVec3:          "minecraft:vec3",
	CommandParserResourceKey:   "minecraft:resource_key",
}

// CommandParser carries an argument node's parser kind, optional numeric
// bounds, and (for ResourceKey) the registry its values are drawn from.
type CommandParser struct {
	Kind CommandParserKind

	HasMin, HasMax       bool
	MinInt, MaxInt       int32
	MinLong, MaxLong     int64
	MinFloat, MaxFloat   float32
	MinDouble, MaxDouble float64

	Registry string
}

// CommandNode is one flattened entry in a Commands packet's node graph.
// Children and Redirect are indices into the packet's Nodes slice.
type CommandNode struct {
	Kind        CommandNodeKind
	Executable  bool
	Children    []int32
	Redirect    int32
	HasRedirect bool
	Name        string // literal text or argument name
	Parser      *CommandParser
}

// Commands is the clientbound play-login packet advertising the full
// command node graph so a client can render tab-completion.
type Commands struct {
	Nodes []CommandNode
	Root  int32
}

func (Commands) ID() int32 { return 0x11 }

func (p Commands) Encode(w io.Writer) error {
	if err := writeVarInt(w, int32(len(p.Nodes))); err != nil {
		return err
	}
	for _, n := range p.Nodes {
		if err := encodeCommandNode(w, n); err != nil {
			return err
		}
	}
	return writeVarInt(w, p.Root)
}

func encodeCommandNode(w io.Writer, n CommandNode) error {
	flags := byte(n.Kind)
	if n.Executable {
		flags |= 0x04
	}
	if n.HasRedirect {
		flags |= 0x08
	}
	if err := writeByte(w, flags); err != nil {
		return err
	}
	if err := writeVarInt(w, int32(len(n.Children))); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeVarInt(w, c); err != nil {
			return err
		}
	}
	if n.HasRedirect {
		if err := writeVarInt(w, n.Redirect); err != nil {
			return err
		}
	}
	if n.Kind == CommandNodeLiteral || n.Kind == CommandNodeArgument {
		if err := writeString(w, n.Name); err != nil {
			return err
		}
	}
	if n.Kind == CommandNodeArgument && n.Parser != nil {
		if err := writeString(w, commandParserIdentifiers[n.Parser.Kind]); err != nil {
			return err
		}
		if err := encodeParserProperties(w, *n.Parser); err != nil {
			return err
		}
	}
	return nil
}

func encodeParserProperties(w io.Writer, p CommandParser) error {
	switch p.Kind {
	case CommandParserInt:
		return encodeNumericProps(w, p.HasMin, p.HasMax, func() error { return writeInt32(w, p.MinInt) }, func() error { return writeInt32(w, p.MaxInt) })
	case CommandParserLong:
		return encodeNumericProps(w, p.HasMin, p.HasMax, func() error { return writeInt64(w, p.MinLong) }, func() error { return writeInt64(w, p.MaxLong) })
	case CommandParserFloat:
		return encodeNumericProps(w, p.HasMin, p.HasMax, func() error { return writeFloat32(w, p.MinFloat) }, func() error { return writeFloat32(w, p.MaxFloat) })
	case CommandParserDouble:
		return encodeNumericProps(w, p.HasMin, p.HasMax, func() error { return writeFloat64(w, p.MinDouble) }, func() error { return writeFloat64(w, p.MaxDouble) })
	case CommandParserResourceKey:
		return writeString(w, p.Registry)
	default:
		return nil
	}
}

// encodeNumericProps writes brigadier's numeric-range flags byte (bit 0
// = has min, bit 1 = has max) followed by whichever bounds are present.
func encodeNumericProps(w io.Writer, hasMin, hasMax bool, writeMin, writeMax func() error) error {
	var flags byte
	if hasMin {
		flags |= 0x01
	}
	if hasMax {
		flags |= 0x02
	}
	if err := writeByte(w, flags); err != nil {
		return err
	}
	if hasMin {
		if err := writeMin(); err != nil {
			return err
		}
	}
	if hasMax {
		if err := writeMax(); err != nil {
			return err
		}
	}
	return nil
}
