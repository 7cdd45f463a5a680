package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/snippets/internal/storage"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  `Display CLI version information and the supported database drivers.`,
		Args:  positional(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersion()
		},
	}
}

func (c *CLI) runVersion() error {
	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	for _, d := range storage.Dialects() {
		info.Drivers = append(info.Drivers, d.Name)
	}

	if c.jsonOutput {
		return c.outputJSON(info)
	}

	c.println("Snippets CLI")
	c.println(fmt.Sprintf("  Version:    %s", info.Version))
	c.println(fmt.Sprintf("  Git Commit: %s", info.GitCommit))
	c.println(fmt.Sprintf("  Build Date: %s", info.BuildDate))
	c.println(fmt.Sprintf("  Go Version: %s", info.GoVersion))
	c.println(fmt.Sprintf("  OS/Arch:    %s/%s", info.OS, info.Arch))
	c.println(fmt.Sprintf("  Drivers:    %v", info.Drivers))

	return nil
}

// VersionInfo represents version information for JSON output.
type VersionInfo struct {
	Version   string   `json:"version"`
	GitCommit string   `json:"git_commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	OS        string   `json:"os"`
	Arch      string   `json:"arch"`
	Drivers   []string `json:"drivers"`
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(version, commit, date string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		GitCommit = commit
	}
	if date != "" {
		BuildDate = date
	}
}

func init() {
	// Set default build info if not set by ldflags
	if GitCommit == "" || GitCommit == "unknown" {
		GitCommit = "dev"
	}
}

// GetVersionString returns a formatted version string.
func GetVersionString() string {
	return fmt.Sprintf("snippets version %s (commit: %s, built: %s)",
		Version, GitCommit, BuildDate)
}
