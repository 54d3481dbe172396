// Package text implements the rich text component model used for chat
// messages, disconnect reasons, and status response descriptions:
// a tree of styled runs that renders to JSON for string-typed packet
// fields and to NBT for the compound-tag form used elsewhere in the
// protocol (e.g. item display names).
package text

import (
	"encoding/json"

	"github.com/ironvein/blocksrv/internal/nbt"
)

// Component is one node of a rich text tree. ClickEvent and HoverEvent
// are left as opaque values since gameplay interaction is out of scope;
// callers that need them populate arbitrary JSON-marshalable data.
type Component struct {
	Text          string      `json:"text,omitempty"`
	Color         string      `json:"color,omitempty"`
	Bold          bool        `json:"bold,omitempty"`
	Italic        bool        `json:"italic,omitempty"`
	Underlined    bool        `json:"underlined,omitempty"`
	Strikethrough bool        `json:"strikethrough,omitempty"`
	Obfuscated    bool        `json:"obfuscated,omitempty"`
	ClickEvent    any         `json:"clickEvent,omitempty"`
	HoverEvent    any         `json:"hoverEvent,omitempty"`
	Extra         []Component `json:"extra,omitempty"`
}

// Of returns a plain, unstyled text component.
func Of(s string) Component {
	return Component{Text: s}
}

// Colored returns a text component with only a color applied.
func Colored(s, color string) Component {
	return Component{Text: s, Color: color}
}

// JSON marshals the component to its wire JSON form, as used by status
// response descriptions and the legacy string-typed chat fields.
func (c Component) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compound renders the component to the NBT compound form used where the
// protocol carries a text component as a tag tree rather than a JSON
// string (disconnect reasons, system chat content).
func (c Component) Compound() nbt.Compound {
	out := nbt.Compound{}
	if c.Text != "" {
		out["text"] = nbt.String(c.Text)
	}
	if c.Color != "" {
		out["color"] = nbt.String(c.Color)
	}
	if c.Bold {
		out["bold"] = nbt.Byte(1)
	}
	if c.Italic {
		out["italic"] = nbt.Byte(1)
	}
	if c.Underlined {
		out["underlined"] = nbt.Byte(1)
	}
	if c.Strikethrough {
		out["strikethrough"] = nbt.Byte(1)
	}
	if c.Obfuscated {
		out["obfuscated"] = nbt.Byte(1)
	}
	if len(c.Extra) > 0 {
		items := make([]nbt.Tag, len(c.Extra))
		for i, e := range c.Extra {
			items[i] = e.Compound()
		}
		out["extra"] = nbt.List{ElemType: nbt.TagCompound, Items: items}
	}
	return out
}
