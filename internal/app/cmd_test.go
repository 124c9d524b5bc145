package app

import (
	"testing"
)

func TestParseCommand_DefaultsToServe(t *testing.T) {
	cmd := ParseCommand([]string{})
	if cmd != CommandServe {
		t.Errorf("ParseCommand([]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand_Serve(t *testing.T) {
	cmd := ParseCommand([]string{"serve"})
	if cmd != CommandServe {
		t.Errorf("ParseCommand([serve]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand_Migrate(t *testing.T) {
	cmd := ParseCommand([]string{"migrate"})
	if cmd != CommandMigrate {
		t.Errorf("ParseCommand([migrate]) = %q, want %q", cmd, CommandMigrate)
	}
}

func TestParseCommand_Healthcheck(t *testing.T) {
	cmd := ParseCommand([]string{"healthcheck"})
	if cmd != CommandHealthcheck {
		t.Errorf("ParseCommand([healthcheck]) = %q, want %q", cmd, CommandHealthcheck)
	}
}

func TestParseCommand_Help(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		if cmd := ParseCommand([]string{arg}); cmd != CommandHelp {
			t.Errorf("ParseCommand([%s]) = %q, want %q", arg, cmd, CommandHelp)
		}
	}
}

func TestParseCommand_UnknownDefaultsToServe(t *testing.T) {
	cmd := ParseCommand([]string{"worker"})
	if cmd != CommandServe {
		t.Errorf("ParseCommand([worker]) = %q, want %q", cmd, CommandServe)
	}
}

func TestParseCommand_IgnoresExtraArgs(t *testing.T) {
	cmd := ParseCommand([]string{"migrate", "down", "extra"})
	if cmd != CommandMigrate {
		t.Errorf("ParseCommand([migrate down extra]) = %q, want %q", cmd, CommandMigrate)
	}
}

func TestParseMigrateDirection(t *testing.T) {
	tests := []struct {
		args []string
		want MigrateDirection
	}{
		{[]string{"migrate"}, MigrateUp},
		{[]string{"migrate", "up"}, MigrateUp},
		{[]string{"migrate", "down"}, MigrateDown},
		{[]string{"migrate", "sideways"}, MigrateUp},
	}

	for _, tt := range tests {
		if got := ParseMigrateDirection(tt.args); got != tt.want {
			t.Errorf("ParseMigrateDirection(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandServe, "serve"},
		{CommandMigrate, "migrate"},
		{CommandHealthcheck, "healthcheck"},
	}

	for _, tt := range tests {
		if got := string(tt.cmd); got != tt.want {
			t.Errorf("Command(%q) string = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
