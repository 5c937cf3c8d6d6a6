package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"

	"discord-music-bot/internal/command"
	"discord-music-bot/pkg/cmd"
)

// CommandSections renders the command list as Markdown, everyone's
// commands first, then the admin-only ones.
func CommandSections(registry *cmd.Registry, prefix string) string {
	var public, admin []cmd.Command
	for _, c := range registry.GetAll() {
		if meta, ok := cmd.As[command.ChatMeta](c); ok && meta.RequireAdmin() {
			admin = append(admin, c)
			continue
		}
		public = append(public, c)
	}

	var buf bytes.Buffer
	section := func(title string, list []cmd.Command) {
		if len(list) == 0 {
			return
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", title)
		for _, c := range list {
			fmt.Fprintf(&buf, "- **`%s`** %s\n", command.Usage(prefix, c), c.Description())
		}
	}
	section("Commands", public)
	section("Admin commands", admin)
	return buf.String()
}

// Render executes the README template with the command sections.
func Render(w io.Writer, tmpl string, registry *cmd.Registry, prefix string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return err
	}
	data := struct {
		CommandSections string
	}{
		CommandSections: CommandSections(registry, prefix),
	}
	return t.Execute(w, data)
}

// UpdateReadme regenerates outPath from tmplPath.
func UpdateReadme(registry *cmd.Registry, prefix, tmplPath, outPath string) error {
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := Render(&out, string(tmpl), registry, prefix); err != nil {
		return err
	}
	return os.WriteFile(outPath, out.Bytes(), 0644)
}
