package cli

import "github.com/spf13/cobra"

// Flags holds all command line flags
type Flags struct {
	Workspace string
	Json      bool
	Verbose   bool

	Range  string
	Name   string
	DryRun bool
	Backup bool
}

// RegisterGlobal adds the flags every command accepts
func (f *Flags) RegisterGlobal(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Workspace, "workspace", "w", ".", "Path to workspace root (defaults to current directory)")
	cmd.PersistentFlags().BoolVar(&f.Json, "json", false, "Output results in JSON format")
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose output")
}

// RegisterSelection adds the flags that describe a selection
func (f *Flags) RegisterSelection(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Range, "range", "r", "", "Selection as L:C-L:C or L-L (1-based, end column exclusive)")
	cmd.Flags().StringVarP(&f.Name, "name", "n", "", "Name of the new component (prompted for when omitted)")
	_ = cmd.MarkFlagRequired("range")
}
