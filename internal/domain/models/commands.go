package models

import "strings"

// CommandType enumerates supported quick POS commands.
type CommandType string

const (
	CommandSale    CommandType = "sale"
	CommandRestock CommandType = "restock"
	CommandStock   CommandType = "stock"
	CommandAlerts  CommandType = "alerts"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed counter instruction such as "/sale PRD-1a2b3c4d 2".
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text. The command word
// is case-insensitive; arguments keep their case because product ids are case-sensitive.
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	cmd := Command{Raw: message}

	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandSale), "sell":
		cmd.Type = CommandSale
	case string(CommandRestock):
		cmd.Type = CommandRestock
	case string(CommandStock), "find":
		cmd.Type = CommandStock
	case string(CommandAlerts):
		cmd.Type = CommandAlerts
	case string(CommandHelp):
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

// CommandReply is the text answer sent back for a command.
type CommandReply struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
