// Package cli provides the Cobra command structure for gomdwarehouse.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwarehouse/internal/configloader"
	"github.com/yaklabco/gomdwarehouse/internal/ui/pretty"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// Command groups shown in root help.
const (
	groupExtraction = "extraction"
	groupSetup      = "setup"
)

// annotationContainers marks commands whose help lists ignore_inside names.
const annotationContainers = "gomdwarehouse/containers"

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command    lipgloss.Style
	Heading    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style
	Example    lipgloss.Style
	Dim        lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{
			Command: plain, Heading: plain, Subcommand: plain,
			Flag: plain, Example: plain, Dim: plain,
		}
	}
	return &HelpStyles{
		Command:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Example:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{ heading $group.Title }}{{range $cmds}}{{if (and (eq .GroupID $group.ID) .IsAvailableCommand)}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}{{end}}

{{ heading "Other Commands:" }}{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- with extra .}}
{{ . }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

// HelpFormatter renders styled help for the gomdwarehouse command tree.
// Colors are resolved when help is printed, after --color is parsed.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a help formatter for a color mode and writer.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"heading":    h.styles.Heading.Render,
		"command":    h.styles.Command.Render,
		"subcommand": h.styles.Subcommand.Render,
		"example":    h.styles.Example.Render,
		"flags":      h.flagUsages,
		"extra":      h.extraSections,
		"rpad":       rpad,
		"trim":       trimTrailingWhitespace,
	}
}

// Render writes help (or usage, when help is false) for cmd.
func (h *HelpFormatter) Render(w io.Writer, cmd *cobra.Command, help bool) error {
	text := usageTemplate
	if help {
		text = helpTemplate
	}
	tmpl, err := template.New("help").Funcs(h.funcs()).Parse(text)
	if err != nil {
		return fmt.Errorf("parse help template: %w", err)
	}
	if err := tmpl.Execute(w, cmd); err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	return nil
}

// flagUsages styles pflag's usage block: flag names in color, value types dim.
func (h *HelpFormatter) flagUsages(flags interface{ FlagUsages() string }) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		names, desc, ok := strings.Cut(trimmed, "  ")
		if !ok {
			continue
		}

		fields := strings.Fields(names)
		for j, field := range fields {
			if strings.HasPrefix(field, "-") {
				flag, comma := strings.CutSuffix(field, ",")
				fields[j] = h.styles.Flag.Render(flag)
				if comma {
					fields[j] += ","
				}
			} else {
				fields[j] = h.styles.Dim.Render(field)
			}
		}
		lines[i] = indent + strings.Join(fields, " ") + "   " + strings.TrimLeft(desc, " ")
	}
	return strings.Join(lines, "\n")
}

// extraSections renders the environment variables on the root command and
// the container names on commands that accept ignore_inside settings.
func (h *HelpFormatter) extraSections(cmd *cobra.Command) string {
	var b strings.Builder

	if !cmd.HasParent() {
		vars := configloader.ListEnvVars()
		width := 0
		for _, v := range vars {
			width = max(width, len(v.Name))
		}
		b.WriteString("\n" + h.styles.Heading.Render("Environment:"))
		for _, v := range vars {
			b.WriteString("\n  " + h.styles.Flag.Render(rpad(v.Name, width)) + "   " + v.Description)
		}
	}

	if cmd.Annotations[annotationContainers] != "" {
		names := make([]string, warehouse.NumContainers)
		for c := range warehouse.NumContainers {
			names[c] = warehouse.Container(c).String()
		}
		b.WriteString("\n" + h.styles.Heading.Render("Containers (for ignore_inside):"))
		b.WriteString("\n  " + h.styles.Dim.Render(strings.Join(names, ", ")))
	}

	return b.String()
}

// ApplyToCommand installs styled help on cmd and its subcommands. The color
// mode is read from the --color flag when help is shown.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	formatterFor := func(command *cobra.Command) *HelpFormatter {
		flag := command.Root().PersistentFlags().Lookup("color")
		if flag == nil {
			return h
		}
		return NewHelpFormatter(flag.Value.String(), command.OutOrStdout())
	}

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return formatterFor(command).Render(command.OutOrStderr(), command, false)
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := formatterFor(command).Render(command.OutOrStdout(), command, true); err != nil {
			command.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
