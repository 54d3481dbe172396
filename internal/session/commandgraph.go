package session

import (
	"github.com/ironvein/blocksrv/internal/command"
	"github.com/ironvein/blocksrv/internal/packet"
)

// buildCommandsPacket converts a flattened command.Node graph into the
// wire shape Commands expects, keeping internal/command free of any
// dependency on the packet layer.
func buildCommandsPacket(flat []command.FlatNode, root int32) packet.Commands {
	nodes := make([]packet.CommandNode, len(flat))
	for i, n := range flat {
		nodes[i] = packet.CommandNode{
			Kind:       commandNodeKind(n.Kind),
			Executable: n.Executable,
			Children:   n.Children,
			Name:       n.Name,
			Parser:     commandParser(n.Parser),
		}
	}
	return packet.Commands{Nodes: nodes, Root: root}
}

func commandNodeKind(k command.NodeKind) packet.CommandNodeKind {
	switch k {
	case command.KindLiteral:
		return packet.CommandNodeLiteral
	case command.KindArgument:
		return packet.CommandNodeArgument
	default:
		return packet.CommandNodeRoot
	}
}

func commandParser(p *command.Parser) *packet.CommandParser {
	if p == nil {
		return nil
	}
	kinds := map[command.ParserKind]packet.CommandParserKind{
		command.ParserBool:          packet.CommandParserBool,
		command.ParserInt:           packet.CommandParserInt,
		command.ParserLong:          packet.CommandParserLong,
		command.ParserFloat:         packet.CommandParserFloat,
		command.ParserDouble:        packet.CommandParserDouble,
		command.ParserBlockPosition: packet.CommandParserBlockPosition,
		command.ParserVec3:          packet.CommandParserVec3,
		command.ParserResourceKey:   packet.CommandParserResourceKey,
	}
	return &packet.CommandParser{
		Kind:      kinds[p.Kind],
		HasMin:    p.HasMin,
		HasMax:    p.HasMax,
		MinInt:    p.MinInt,
		MaxInt:    p.MaxInt,
		MinLong:   p.MinLong,
		MaxLong:   p.MaxLong,
		MinFloat:  p.MinFloat,
		MaxFloat:  p.MaxFloat,
		MinDouble: p.MinDouble,
		MaxDouble: p.MaxDouble,
		Registry:  p.Registry,
	}
}
