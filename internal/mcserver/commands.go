package mcserver

import (
	"fmt"

	"github.com/ironvein/blocksrv/internal/command"
)

// registerCommands attaches the server's built-in commands to d. Neither
// of these mutates gameplay state — command.Sender has no hook back to
// the PlayerSession that issued it (that's deliberate: keeping
// internal/command ignorant of internal/session), so both are read-only
// utilities that exercise the dispatcher and coordinate grammar end to
// end rather than standing in for any particular game mechanic.
func registerCommands(d *command.Dispatcher, online func() int32) {
	d.Register("list", nil, func(sender command.Sender, args []string) error {
		return sender.Reply(fmt.Sprintf("%d player(s) online", online()))
	})

	tp := command.NewRoot()
	x := tp.Argument("x", command.Parser{Kind: command.ParserDouble})
	y := x.Argument("y", command.Parser{Kind: command.ParserDouble})
	z := y.Argument("z", command.Parser{Kind: command.ParserDouble})
	z.Exec()
	d.Register("tp", tp, func(sender command.Sender, args []string) error {
		if len(args) != 3 {
			return fmt.Errorf("usage: tp <x> <y> <z>")
		}
		resolved, err := command.ParseCoordinates([3]string{args[0], args[1], args[2]}, sender.Position, sender.Forward)
		if err != nil {
			return err
		}
		return sender.Reply(fmt.Sprintf("resolved position: %.2f %.2f %.2f", resolved.X, resolved.Y, resolved.Z))
	})
}
