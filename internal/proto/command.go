package proto

import (
	"io"

	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/varint"
)

// CommandNodeKind is the 2-bit node-type field of a command node's flags
// byte (spec §3 "Command node tree").
type CommandNodeKind uint8

const (
	NodeRoot CommandNodeKind = iota
	NodeLiteral
	NodeArgument
)

const (
	flagKindMask      = 0x03
	flagExecutable    = 0x04
	flagRedirect      = 0x08
	flagHasSuggestion = 0x10
)

// ArgumentParser describes an Argument node's client-side parser: a mode tag
// plus the parser-specific fields the node carries.
type ArgumentParser struct {
	Mode    string // "string", "integer", "bool"
	SubMode VarInt // brigadier.string submode (0 single word, 1 quotable phrase, 2 greedy)
	HasMin  bool
	Min     int32
	HasMax  bool
	Max     int32
}

// CommandNode is one entry of the flat command node array; node 0 is the
// root (spec §3 "Command node tree").
type CommandNode struct {
	Kind        CommandNodeKind
	Executable  bool
	Children    []int32
	HasRedirect bool
	Redirect    int32
	Name        string
	Parser      ArgumentParser
	Suggestions string
}

func (n *CommandNode) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	flags, err := ps.ReadUint8(reader)
	if err != nil {
		return err
	}
	n.Kind = CommandNodeKind(flags & flagKindMask)
	n.Executable = flags&flagExecutable != 0
	n.HasRedirect = flags&flagRedirect != 0
	hasSuggestion := flags&flagHasSuggestion != 0

	childCount, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if childCount < 0 || childCount > 4096 {
		return protoerr.New(protoerr.KindMalformed, "command node child count out of range")
	}
	children := make([]int32, childCount)
	for i := range children {
		if children[i], err = varint.ReadInt32(reader); err != nil {
			return err
		}
	}
	n.Children = children

	if n.HasRedirect {
		if n.Redirect, err = varint.ReadInt32(reader); err != nil {
			return err
		}
	}

	if n.Kind == NodeLiteral || n.Kind == NodeArgument {
		if n.Name, err = ps.ReadBoundedString(reader, 1<<15); err != nil {
			return err
		}
	}

	if n.Kind == NodeArgument {
		if n.Parser.Mode, err = ps.ReadBoundedString(reader, 64); err != nil {
			return err
		}
		switch n.Parser.Mode {
		case "string":
			v, err := varint.ReadInt32(reader)
			if err != nil {
				return err
			}
			n.Parser.SubMode = VarInt(v)
		case "integer":
			flags, err := ps.ReadUint8(reader)
			if err != nil {
				return err
			}
			n.Parser.HasMin = flags&0x01 != 0
			n.Parser.HasMax = flags&0x02 != 0
			if n.Parser.HasMin {
				if n.Parser.Min, err = ps.ReadInt32Fixed(reader); err != nil {
					return err
				}
			}
			if n.Parser.HasMax {
				if n.Parser.Max, err = ps.ReadInt32Fixed(reader); err != nil {
					return err
				}
			}
		}
	}

	if hasSuggestion {
		if n.Suggestions, err = ps.ReadBoundedString(reader, 255); err != nil {
			return err
		}
	}
	return nil
}

func (n *CommandNode) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	flags := uint8(n.Kind) & flagKindMask
	if n.Executable {
		flags |= flagExecutable
	}
	if n.HasRedirect {
		flags |= flagRedirect
	}
	if n.Suggestions != "" {
		flags |= flagHasSuggestion
	}
	if err := ps.WriteUint8(writer, flags); err != nil {
		return err
	}

	if err := varint.WriteInt32(writer, int32(len(n.Children))); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := varint.WriteInt32(writer, c); err != nil {
			return err
		}
	}

	if n.HasRedirect {
		if err := varint.WriteInt32(writer, n.Redirect); err != nil {
			return err
		}
	}

	if n.Kind == NodeLiteral || n.Kind == NodeArgument {
		if err := ps.WriteString(writer, n.Name); err != nil {
			return err
		}
	}

	if n.Kind == NodeArgument {
		if err := ps.WriteString(writer, n.Parser.Mode); err != nil {
			return err
		}
		switch n.Parser.Mode {
		case "string":
			if err := varint.WriteInt32(writer, int32(n.Parser.SubMode)); err != nil {
				return err
			}
		case "integer":
			var pflags uint8
			if n.Parser.HasMin {
				pflags |= 0x01
			}
			if n.Parser.HasMax {
				pflags |= 0x02
			}
			if err := ps.WriteUint8(writer, pflags); err != nil {
				return err
			}
			if n.Parser.HasMin {
				if err := ps.WriteInt32Fixed(writer, n.Parser.Min); err != nil {
					return err
				}
			}
			if n.Parser.HasMax {
				if err := ps.WriteInt32Fixed(writer, n.Parser.Max); err != nil {
					return err
				}
			}
		}
	}

	if n.Suggestions != "" {
		return ps.WriteString(writer, n.Suggestions)
	}
	return nil
}

// CommandNodeList is the VarInt-count-prefixed flat node array.
type CommandNodeList []CommandNode

func (l *CommandNodeList) MinecraftUnmarshal(reader io.Reader, ps *Serializer) error {
	count, err := varint.ReadInt32(reader)
	if err != nil {
		return err
	}
	if count < 0 || count > 65536 {
		return protoerr.New(protoerr.KindMalformed, "command node count out of range")
	}
	nodes := make([]CommandNode, count)
	for i := range nodes {
		if err := nodes[i].MinecraftUnmarshal(reader, ps); err != nil {
			return err
		}
	}
	*l = nodes
	return nil
}

func (l *CommandNodeList) MinecraftMarshal(writer io.Writer, ps *Serializer) error {
	if err := varint.WriteInt32(writer, int32(len(*l))); err != nil {
		return err
	}
	for i := range *l {
		if err := (*l)[i].MinecraftMarshal(writer, ps); err != nil {
			return err
		}
	}
	return nil
}

// DeclareCommands sends the full command node graph (spec §4.5 greeting
// sequence).
type DeclareCommands struct {
	Packet
	Nodes     CommandNodeList
	RootIndex VarInt
}
