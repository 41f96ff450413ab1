package main

import (
	"encoding/json"
	"fmt"
	"io"

	"bookmarks/popup/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	browseInto []int
	browseRoot bool

	crumbStyle   = lipgloss.NewStyle().Bold(true)
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show the folder the popup opens with",
	Long: `Show the folder the popup opens with, or the folder reached from it.

Example:
  bookmarks browse
  bookmarks browse --root --into 0,2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := walk(cmd, browseRoot, browseInto); err != nil {
			return err
		}
		return printView(cmd.OutOrStdout(), app.Service.View(cmd.Context()))
	},
}

var openCmd = &cobra.Command{
	Use:   "open <index>",
	Short: "Open the item at index in the current folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var index int
		if _, err := fmt.Sscan(args[0], &index); err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		if err := walk(cmd, browseRoot, browseInto); err != nil {
			return err
		}
		if err := app.Service.Open(cmd.Context(), index); err != nil {
			return err
		}
		return printView(cmd.OutOrStdout(), app.Service.View(cmd.Context()))
	},
}

// walk moves from the start folder through the given item indices.
func walk(cmd *cobra.Command, fromRoot bool, indices []int) error {
	if fromRoot {
		app.Service.Root()
	}
	for _, index := range indices {
		if err := app.Service.Open(cmd.Context(), index); err != nil {
			return err
		}
	}
	return nil
}

func printView(w io.Writer, view service.View) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	trail := ""
	for i, crumb := range view.Breadcrumbs {
		if i > 0 {
			trail += " › "
		}
		title := crumb.Title
		if title == "" {
			title = "/"
		}
		trail += fmt.Sprintf("[%d] %s", crumb.Index, title)
	}
	fmt.Fprintln(w, crumbStyle.Render(trail))

	for i, item := range view.Items {
		title := item.DisplayTitle
		switch {
		case item.IsFolder:
			title = folderStyle.Render(title + "/")
		case item.Favicon != "":
			title += " " + faintStyle.Render(item.Favicon)
		}
		if item.IsDefault {
			title += " " + defaultStyle.Render("★")
		}
		fmt.Fprintf(w, "%3d  %s\n", i, title)
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{browseCmd, openCmd} {
		cmd.Flags().IntSliceVar(&browseInto, "into", nil, "item indices to enter before acting")
		cmd.Flags().BoolVar(&browseRoot, "root", false, "start from the root instead of the default folder")
		rootCmd.AddCommand(cmd)
	}
}
