package ui

import (
	"strconv"
	"strings"
)

type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandQuit
	CommandLogout
	CommandPage
	CommandLogs
	CommandReload
)

type Command struct {
	Type CommandType
	Name string
	Args []string
}

func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)

	if !strings.HasPrefix(input, ":") {
		return Command{Type: CommandUnknown, Name: input}
	}

	parts := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(parts) == 0 {
		return Command{Type: CommandUnknown}
	}

	name := parts[0]
	args := parts[1:]

	switch name {
	case "q", "quit":
		return Command{Type: CommandQuit, Name: name, Args: args}
	case "logout":
		return Command{Type: CommandLogout, Name: name, Args: args}
	case "p", "page":
		return Command{Type: CommandPage, Name: name, Args: args}
	case "logs":
		return Command{Type: CommandLogs, Name: name, Args: args}
	case "r", "reload":
		return Command{Type: CommandReload, Name: name, Args: args}
	default:
		return Command{Type: CommandUnknown, Name: name, Args: args}
	}
}

// PageArg returns the zero-based page index for a ":page N" command, where N
// counts from 1.
func (c Command) PageArg() (int, bool) {
	if c.Type != CommandPage || len(c.Args) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(c.Args[0])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
