// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import "strings"

// Command is one parsed line of the authentication dialogue. The parser
// produces a typed value which the session matches against its current
// state, replacing free-text token dispatch.
type Command interface {
	isCommand()
}

// RegisterCommand is "/register <password> [<repeat>]".
type RegisterCommand struct {
	Password  string
	Repeat    string
	HasRepeat bool
}

// LoginCommand is "/login <password>".
type LoginCommand struct {
	Password string
}

// TotpCommand is "/totp <code>".
type TotpCommand struct {
	Code string
}

// InvalidCommand is any line that parses to no known command shape.
// It carries no data; the session re-prompts without side effects.
type InvalidCommand struct{}

func (RegisterCommand) isCommand() {}
func (LoginCommand) isCommand()    {}
func (TotpCommand) isCommand()     {}
func (InvalidCommand) isCommand()  {}

// ParseCommand parses one framed line of dialogue input. Tokens are
// space-delimited; surplus or missing tokens yield InvalidCommand.
func ParseCommand(line string) Command {
	args := strings.Split(strings.TrimSpace(line), " ")
	if len(args) == 0 || args[0] == "" {
		return InvalidCommand{}
	}

	switch strings.ToLower(args[0]) {
	case "/register", "/reg", "/r":
		switch len(args) {
		case 2:
			return RegisterCommand{Password: args[1]}
		case 3:
			return RegisterCommand{Password: args[1], Repeat: args[2], HasRepeat: true}
		}
	case "/login", "/log", "/l":
		if len(args) == 2 {
			return LoginCommand{Password: args[1]}
		}
	case "/totp", "/2fa":
		if len(args) == 2 {
			return TotpCommand{Code: args[1]}
		}
	}
	return InvalidCommand{}
}
