package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"autoabsen/internal/models"
	"autoabsen/internal/output"
)

type scheduleResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message"`
	Schedule []models.ScheduleEntry `json:"schedule"`
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the weekly class schedule",
	Long: `Fetch the weekly class schedule from the portal via the daemon and
show it with today's class statuses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scheduleRun()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func scheduleRun() error {
	var resp scheduleResponse
	if err := apiGet("/api/schedule", &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Message)
	}
	if len(resp.Schedule) == 0 {
		ui.Info("Jadwal kosong")
		return nil
	}

	table := ui.Table([]string{"Hari", "Mata Kuliah", "Jam", "Ruang", "Status"})
	for _, e := range resp.Schedule {
		table.Append([]string{
			e.Day,
			output.Cyan(e.Course),
			e.TimeRange,
			e.Room,
			output.ClassStatusColor(e.Status),
		})
	}
	table.Render()
	return nil
}
