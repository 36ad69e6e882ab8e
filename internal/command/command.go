// Package command turns raw chat text into typed commands.
//
// Recognition is by case-insensitive prefix match on the first token;
// anything that matches no prefix is Unrecognized, and callers must
// stay silent on it (chat groups are full of text that is not for the
// bot). Malformed arguments are data, not errors: the parsed Command
// carries a usage string for the reply instead of failing.
package command

import (
	"strconv"
	"strings"
)

// Kind identifies the intent of a parsed command.
type Kind int

const (
	// Unrecognized means the text is not a command at all. No reply
	// is ever sent for it.
	Unrecognized Kind = iota
	DefineItem
	Borrow
	Return
	Status
	Mine
	Help
	GroupID
	UserID
	YesNo
	Pick
)

// String returns a stable lowercase name for the kind, used in logs
// and metric labels.
func (k Kind) String() string {
	switch k {
	case DefineItem:
		return "additem"
	case Borrow:
		return "borrow"
	case Return:
		return "return"
	case Status:
		return "status"
	case Mine:
		return "mine"
	case Help:
		return "help"
	case GroupID:
		return "gid"
	case UserID:
		return "uid"
	case YesNo:
		return "yesno"
	case Pick:
		return "pick"
	default:
		return "unrecognized"
	}
}

// Usage hints returned for malformed arguments.
const (
	usageDefineItem = "usage: !additem <item> <total> [note]"
	usageBorrow     = "usage: !borrow <item> <qty> [note]"
	usageReturn     = "usage: !return <item> <qty> [note]"
)

// Command is a parsed chat command.
type Command struct {
	Kind Kind

	// Item and Qty are set for DefineItem, Borrow, Return and
	// (optionally, Item only) Status. For DefineItem, Qty holds the
	// declared total.
	Item string
	Qty  int

	// Note is the remainder of the line beyond the positional
	// arguments, rejoined with single spaces.
	Note string

	// Options holds the candidate answers for Pick.
	Options []string

	// Usage is non-empty when the command was recognized but its
	// arguments did not validate; it is the reply to send.
	Usage string
}

// Parse maps a token list to a Command. An empty token list or an
// unmatched first token yields Kind == Unrecognized.
func Parse(tokens []string) Command {
	if len(tokens) == 0 {
		return Command{Kind: Unrecognized}
	}
	head := strings.ToLower(tokens[0])

	switch {
	case strings.HasPrefix(head, "!additem"):
		return parseMovement(DefineItem, tokens, usageDefineItem)
	case strings.HasPrefix(head, "!borrow"):
		return parseMovement(Borrow, tokens, usageBorrow)
	case strings.HasPrefix(head, "!return"):
		return parseMovement(Return, tokens, usageReturn)
	case strings.HasPrefix(head, "!status"):
		cmd := Command{Kind: Status}
		if len(tokens) >= 2 {
			cmd.Item = tokens[1]
		}
		return cmd
	case strings.HasPrefix(head, "!mine"):
		return Command{Kind: Mine}
	case strings.HasPrefix(head, "!help"):
		return Command{Kind: Help}
	case strings.HasPrefix(head, "!gid"):
		return Command{Kind: GroupID}
	case strings.HasPrefix(head, "!uid"):
		return Command{Kind: UserID}
	case strings.HasPrefix(head, "!yesno"):
		return Command{Kind: YesNo}
	case strings.HasPrefix(head, "!pick"), strings.HasPrefix(head, "!trun"):
		return Command{Kind: Pick, Options: tokens[1:]}
	}
	return Command{Kind: Unrecognized}
}

// parseMovement handles the shared <item> <integer> [note...] shape of
// !additem, !borrow and !return. A leading sign on the integer is
// accepted syntactically; sign semantics are the engine's business.
func parseMovement(kind Kind, tokens []string, usage string) Command {
	if len(tokens) < 3 {
		return Command{Kind: kind, Usage: usage}
	}
	qty, err := strconv.Atoi(tokens[2])
	if err != nil {
		return Command{Kind: kind, Usage: usage}
	}
	return Command{
		Kind: kind,
		Item: tokens[1],
		Qty:  qty,
		Note: strings.Join(tokens[3:], " "),
	}
}
