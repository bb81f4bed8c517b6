package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"autoabsen/internal/models"
	"autoabsen/internal/output"
)

// statusResponse mirrors the daemon's GET /api/status payload.
type statusResponse struct {
	Success   bool              `json:"success"`
	LoggedIn  bool              `json:"logged_in"`
	Running   bool              `json:"engine_running"`
	NPM       string            `json:"npm"`
	Name      string            `json:"name"`
	LastCheck string            `json:"last_check"`
	Settings  models.Settings   `json:"settings"`
	Logs      []models.LogEntry `json:"logs"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon session and engine status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	var st statusResponse
	if err := apiGet("/api/status", &st); err != nil {
		return err
	}

	if !st.LoggedIn {
		ui.Info("Belum login")
		return nil
	}

	ui.Success("Login sebagai %s (%s)", output.Cyan(st.Name), st.NPM)

	if st.Running {
		engineState := output.Green("berjalan")
		if st.LastCheck != "" {
			ui.Info("Engine %s, cek terakhir %s", engineState, st.LastCheck)
		} else {
			ui.Info("Engine %s", engineState)
		}
	} else {
		ui.Info("Engine %s", output.Yellow("berhenti"))
	}

	ui.Info("Mode %s", describeMode(st.Settings))

	if len(st.Logs) > 0 {
		fmt.Fprintln(ui.Out)
		renderLogs(st.Logs, 10)
	}
	return nil
}

func describeMode(s models.Settings) string {
	switch s.Mode {
	case models.ModeBeforeEnd:
		return fmt.Sprintf("2: %d menit sebelum kelas berakhir", s.OffsetMinutes)
	case models.ModeCustom:
		return fmt.Sprintf("3: jam custom per mata kuliah (%d diatur)", len(s.CustomTimes))
	default:
		return "1: langsung absen"
	}
}

// renderLogs prints the newest n entries, oldest first.
func renderLogs(logs []models.LogEntry, n int) {
	if len(logs) > n {
		logs = logs[len(logs)-n:]
	}

	table := ui.Table([]string{"Waktu", "Level", "Pesan"})
	for _, entry := range logs {
		table.Append([]string{
			entry.Time.Format("15:04:05"),
			output.LevelColor(entry.Level),
			entry.Message,
		})
	}
	table.Render()
}
