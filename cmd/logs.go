package cmd

import (
	"github.com/spf13/cobra"
)

var (
	logsClear bool
	logsTail  int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent engine activity logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logsRun()
	},
}

func init() {
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "Clear the log buffer")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show")
	rootCmd.AddCommand(logsCmd)
}

func logsRun() error {
	if logsClear {
		if err := apiPost("/api/logs/clear", nil, nil); err != nil {
			return err
		}
		ui.Success("Log dibersihkan")
		return nil
	}

	var st statusResponse
	if err := apiGet("/api/status", &st); err != nil {
		return err
	}
	if len(st.Logs) == 0 {
		ui.Info("Belum ada aktivitas")
		return nil
	}

	renderLogs(st.Logs, logsTail)
	return nil
}
