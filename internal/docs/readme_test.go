package docs

import (
	"bytes"
	"strings"
	"testing"

	"discord-music-bot/internal/command"
	"discord-music-bot/pkg/cmd"
)

func TestCommandSectionsSplitsAdminCommands(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.Register(&command.Descriptor{Verb: "skip", Help: "Skips the current song"})
	reg.Register(&command.Descriptor{Verb: "remove", Params: []string{"index"}, Help: "Removes a song", Admin: true})

	got := CommandSections(reg, "!")
	want := "### Commands\n\n- **`!skip`** Skips the current song\n\n### Admin commands\n\n- **`!remove <index>`** Removes a song\n"
	if got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestRender(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.Register(&command.Descriptor{Verb: "np", Help: "Displays the current song"})

	var out bytes.Buffer
	if err := Render(&out, "# Bot\n\n{{.CommandSections}}", reg, "!"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "- **`!np`** Displays the current song") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
