package command

import (
	"fmt"
	"strings"
)

// Sender is the minimal identity/position context a command handler
// needs: who issued it, where they are, and which way they're facing
// (for local-frame coordinate arguments).
type Sender struct {
	Name     string
	Position Vec3
	Forward  Vec3
	Reply    func(message string) error
}

// Handler executes one literal command given its remaining argument
// tokens (the command word itself is already consumed).
type Handler func(sender Sender, args []string) error

// Dispatcher maps top-level literal command names to handlers and holds
// the node graph advertised to clients at play-login.
type Dispatcher struct {
	root     *Node
	handlers map[string]Handler
}

// NewDispatcher returns an empty dispatcher with a bare root node.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{root: NewRoot(), handlers: make(map[string]Handler)}
}

// Register attaches a top-level literal command to the node graph and
// its handler. node is the literal's own subtree (arguments, nested
// literals); pass nil for a bare no-argument command.
func (d *Dispatcher) Register(name string, node *Node, h Handler) {
	lit := d.root.Literal(name).Exec()
	if node != nil {
		lit.Children = append(lit.Children, node.Children...)
	}
	d.handlers[name] = h
}

// Graph returns the flattened node graph and root index for the Commands
// packet sent at play-login.
func (d *Dispatcher) Graph() ([]FlatNode, int32) {
	return Flatten(d.root)
}

// Execute tokenizes a slash-less command string by consuming runs up to
// the next space, dispatches on the first token, and invokes the
// matching handler with the rest.
func (d *Dispatcher) Execute(sender Sender, command string) error {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return fmt.Errorf("command: empty command")
	}
	h, ok := d.handlers[tokens[0]]
	if !ok {
		return fmt.Errorf("command: unknown command %q", tokens[0])
	}
	return h(sender, tokens[1:])
}
