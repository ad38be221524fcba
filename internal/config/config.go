package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Document  DocumentConfig  `yaml:"document"`
	Paths     PathsConfig     `yaml:"paths"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	SCM       SCMConfig       `yaml:"scm"`
	History   HistoryConfig   `yaml:"history"`
}

// DocumentConfig describes the document to assemble: class and preamble
// declarations, front matter, content fragments and bibliographies.
type DocumentConfig struct {
	Classes         []ClassSpec    `yaml:"classes,omitempty"`
	Packages        []PackageSpec  `yaml:"packages,omitempty"`
	Title           string         `yaml:"title,omitempty"`
	Author          *AuthorSpec    `yaml:"author,omitempty"`
	SCM             *SCMInfo       `yaml:"scm,omitempty"`
	PreambleExtras  string         `yaml:"preamble_extras,omitempty"`
	Abstract        string         `yaml:"abstract,omitempty"`
	Acknowledgments string         `yaml:"acknowledgments,omitempty"`
	TableOfContents bool           `yaml:"table_of_contents,omitempty"`
	ListOfFigures   bool           `yaml:"list_of_figures,omitempty"`
	ListOfTables    bool           `yaml:"list_of_tables,omitempty"`
	MainContent     []string       `yaml:"main_content,omitempty"`
	Appendices      []string       `yaml:"appendices,omitempty"`
	Bibliographies  []Bibliography `yaml:"bibliographies,omitempty"`
}

// ClassSpec is a \documentclass declaration: class name plus its options in
// declaration order.
type ClassSpec struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options,omitempty"`
}

// PackageSpec is a \usepackage declaration: package name plus its options in
// declaration order.
type PackageSpec struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options,omitempty"`
}

// AuthorSpec identifies the document author. Email is optional and gets its
// own line inside the author block when present.
type AuthorSpec struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email,omitempty"`
}

// SCMInfo is a revision snapshot rendered into the author block. It is
// normally collected from the working copy at build time; pinning it in the
// config file overrides collection. Empty fields are omitted from the
// document.
type SCMInfo struct {
	Name     string `yaml:"name,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Date     string `yaml:"date,omitempty"`
}

// Bibliography pairs a BibTeX database basename with the citation style used
// to render it. Entries keep their configured order in the document.
type Bibliography struct {
	File  string `yaml:"file"`
	Style string `yaml:"style"`
}

// PathsConfig locates the document sources and the build tree.
type PathsConfig struct {
	SourceDir string `yaml:"source_dir"`
	BuildDir  string `yaml:"build_dir,omitempty"`
	BaseName  string `yaml:"base_name"`
}

// ToolchainConfig names the external TeX executables and the artifact
// extension they produce.
type ToolchainConfig struct {
	Latex    string `yaml:"latex"`
	Bibtex   string `yaml:"bibtex"`
	Artifact string `yaml:"artifact"`
}

// SCMConfig controls revision metadata collection.
type SCMConfig struct {
	Mode SCMMode `yaml:"mode"`
}

// HistoryConfig controls the build history store.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

// WorkDir returns the directory builds run in: the configured build
// directory when set, otherwise the source directory.
func (c *Config) WorkDir() string {
	if c.Paths.BuildDir != "" {
		return c.Paths.BuildDir
	}
	return c.Paths.SourceDir
}

// BasePath returns the path of the generated master document inside the work
// directory.
func (c *Config) BasePath() string {
	return filepath.Join(c.WorkDir(), c.Paths.BaseName+".tex")
}

// ArtifactName returns the file name of the final build artifact.
func (c *Config) ArtifactName() string {
	return c.Paths.BaseName + "." + c.Toolchain.Artifact
}

// ArtifactPath returns the full path of the final build artifact.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.WorkDir(), c.ArtifactName())
}

// HistoryPath returns the build history database path, defaulting to a file
// alongside the build tree when unset.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.WorkDir(), "texbuilder.db")
}

// ContentFiles returns every declared content file name in document order,
// main content first, then appendices, with the .tex extension attached.
func (d *DocumentConfig) ContentFiles() []string {
	files := make([]string, 0, len(d.MainContent)+len(d.Appendices))
	for _, name := range d.MainContent {
		files = append(files, name+".tex")
	}
	for _, name := range d.Appendices {
		files = append(files, name+".tex")
	}
	return files
}

// SourceFiles returns every file a build requires to be present in the
// source tree: content fragments plus bibliography databases.
func (d *DocumentConfig) SourceFiles() []string {
	files := d.ContentFiles()
	for _, bib := range d.Bibliographies {
		files = append(files, bib.File+".bib")
	}
	return files
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Populate the environment from .env files before expanding references.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Document: DocumentConfig{
			Classes: []ClassSpec{
				{Name: "book", Options: []string{"11pt", "a4paper"}},
			},
			Packages: []PackageSpec{
				{Name: "fontenc", Options: []string{"T1"}},
				{Name: "graphicx", Options: []string{"dvips"}},
				{Name: "natbib"},
			},
			Title:           "An Example Thesis",
			Author:          &AuthorSpec{Name: "Jane Doe", Email: "jane@example.com"},
			TableOfContents: true,
			ListOfFigures:   true,
			MainContent:     []string{"introduction", "background", "conclusion"},
			Appendices:      []string{"glossary"},
			Bibliographies: []Bibliography{
				{File: "references", Style: "plainnat"},
			},
		},
		Paths: PathsConfig{
			SourceDir: ".",
			BuildDir:  "build",
			BaseName:  "base",
		},
		Toolchain: ToolchainConfig{
			Latex:    "latex",
			Bibtex:   "bibtex",
			Artifact: "dvi",
		},
		SCM: SCMConfig{Mode: SCMModeAuto},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// stripExt removes ext from name when present, so config entries may be
// written with or without their conventional extension.
func stripExt(name, ext string) string {
	return strings.TrimSuffix(name, ext)
}
