package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/codewith-ram/task-manager/board"
	"github.com/codewith-ram/task-manager/domain"
)

func newDumpCmd(flags *flagOverrides) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the persisted board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg, log.StandardLogger())
			if err != nil {
				return err
			}
			defer be.Close()

			cols := board.Reconciler{}.Columns(be.adapter.Load(cmd.Context()))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cols)
			}
			return writeColumns(cmd.OutOrStdout(), cols)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print columns as JSON")
	return cmd
}

func writeJSON(w io.Writer, cols []board.Column) error {
	data, err := sonic.ConfigStd.MarshalIndent(cols, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeColumns(w io.Writer, cols []board.Column) error {
	for _, col := range cols {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", col.Title, col.Count); err != nil {
			return err
		}
		for _, t := range col.Tasks {
			if _, err := fmt.Fprintf(w, "  %s %s [%s] %s\n", marker(t), t.Title, t.Priority.Title(), t.Assignee); err != nil {
				return err
			}
		}
	}
	return nil
}

func marker(t domain.Task) string {
	if t.Priority.Urgent() {
		return "!"
	}
	return "-"
}
