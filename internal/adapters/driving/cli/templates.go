package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagegen/internal/core/domain"
)

var templatesJSON bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect page templates",
	Long: `Page templates map content blocks onto output fields.

The built-in templates can be exported to a directory, edited, and used
by setting pipeline.templates_dir.`,
	RunE: runTemplatesList,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded templates",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the fields of a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

var templatesExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in templates to a directory",
	Long: `Writes the built-in template definitions to <dir> for customisation.
Existing files are left untouched.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipBootstrap: "true"},
	RunE:        runTemplatesExport,
}

func init() {
	templatesShowCmd.Flags().BoolVar(&templatesJSON, "json", false, "print the definition as JSON")
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesExportCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	if templateService == nil {
		return errors.New("template service not configured")
	}

	names := templateService.Names()
	if len(names) == 0 {
		cmd.Println("No templates loaded.")
		return nil
	}

	for _, name := range names {
		def, err := templateService.Definition(name)
		if err != nil {
			return fmt.Errorf("failed to get template %s: %w", name, err)
		}
		cmd.Printf("%-12s %-12s %s\n", def.Name, def.PageType, def.Description)
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	if templateService == nil {
		return errors.New("template service not configured")
	}

	def, err := templateService.Definition(args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("template %q not found (available: %s)", args[0], strings.Join(templateService.Names(), ", "))
	}
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	if templatesJSON {
		return printJSON(cmd.OutOrStdout(), def)
	}

	cmd.Printf("Template: %s\n", def.Name)
	cmd.Printf("Page type: %s\n", def.PageType)
	if def.Description != "" {
		cmd.Printf("Description: %s\n", def.Description)
	}
	if len(def.RequiredBlocks) > 0 {
		blocks := make([]string, len(def.RequiredBlocks))
		for i, b := range def.RequiredBlocks {
			blocks[i] = string(b)
		}
		cmd.Printf("Required blocks: %s\n", strings.Join(blocks, ", "))
	}
	cmd.Println("Fields:")
	printFields(cmd, def.Fields, "  ")
	return nil
}

// printFields writes one line per field, nesting object and array schemas.
func printFields(cmd *cobra.Command, fields []domain.FieldSpec, indent string) {
	for _, f := range fields {
		line := fmt.Sprintf("%s%s (%s)", indent, f.Name, f.Type)
		if f.Source != "" {
			line += " <- " + f.Source
		} else if f.Default != nil {
			line += fmt.Sprintf(" = %v", f.Default)
		}
		if f.Required {
			line += " [required]"
		}
		cmd.Println(line)

		if len(f.Fields) > 0 {
			printFields(cmd, f.Fields, indent+"  ")
		}
		if len(f.Items) > 0 {
			cmd.Printf("%s  items:\n", indent)
			printFields(cmd, f.Items, indent+"    ")
		}
	}
}

func runTemplatesExport(cmd *cobra.Command, args []string) error {
	written, err := file.ExportDefaults(args[0])
	if err != nil {
		return fmt.Errorf("failed to export templates: %w", err)
	}

	if len(written) == 0 {
		cmd.Printf("All templates already exist in %s.\n", args[0])
		return nil
	}
	for _, path := range written {
		cmd.Printf("Wrote %s\n", path)
	}
	cmd.Printf("\nRun 'pagegen config set %s %s' to use them.\n", "pipeline.templates_dir", args[0])
	return nil
}
