package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/canvass/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// RosterFile is the sample roster written next to canvass.yml.
const RosterFile = "roster.csv"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a starter canvass.yml and roster.csv into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	return validateCreatedFiles(dir)
}

// getTemplateFiles reads all template files
func getTemplateFiles(dir string) ([]FileInfo, error) {
	templates := []struct {
		name string
		path string
	}{
		{"templates/canvass.yml.tmpl", config.DefaultFile},
		{"templates/roster.csv.tmpl", RosterFile},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile(tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.path, err)
		}
		files = append(files, FileInfo{
			Path:        filepath.Join(dir, tmpl.path),
			Content:     content,
			Permissions: 0644,
		})
	}

	return files, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles loads the written config and roster the same way
// 'canvass plan' will
func validateCreatedFiles(dir string) error {
	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	if err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultFile, err)
	}

	if _, err := cfg.Roster(); err != nil {
		return fmt.Errorf("created %s is invalid: %w", RosterFile, err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized canvass plan!")
	fmt.Println("\nCreated:")
	fmt.Printf("  ✓ %s\n", config.DefaultFile)
	fmt.Printf("  ✓ %s\n", RosterFile)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Replace roster.csv with your canvassers")
	fmt.Println("  2. Run 'canvass streets --input register.csv' and paste the output into canvass.yml")
	fmt.Println("  3. Arrange street_order into walking order")
	fmt.Println("  4. Run 'canvass plan --input register.csv' to build the route plan")
}
