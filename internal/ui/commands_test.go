package ui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantType CommandType
		wantArgs int
	}{
		{":q", CommandQuit, 0},
		{":quit", CommandQuit, 0},
		{":logout", CommandLogout, 0},
		{":page 3", CommandPage, 1},
		{":p 2", CommandPage, 1},
		{":logs", CommandLogs, 0},
		{" :reload ", CommandReload, 0},
		{":r", CommandReload, 0},
		{":", CommandUnknown, 0},
		{"q", CommandUnknown, 0},
		{":frobnicate now", CommandUnknown, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			if cmd.Type != tt.wantType {
				t.Errorf("ParseCommand(%q).Type = %v, want %v", tt.input, cmd.Type, tt.wantType)
			}
			if len(cmd.Args) != tt.wantArgs {
				t.Errorf("ParseCommand(%q).Args = %v, want %d args", tt.input, cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestPageArg(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{":page 1", 0, true},
		{":page 3", 2, true},
		{":page 0", 0, false},
		{":page -2", 0, false},
		{":page two", 0, false},
		{":page", 0, false},
		{":page 1 2", 0, false},
		{":logs 1", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.input).PageArg()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PageArg(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
