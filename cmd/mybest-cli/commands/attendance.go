package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mybest-backend/lib/serviceutil"
)

func init() {
	attendanceCmd.AddCommand(attendanceRecordsCmd)
	attendanceCmd.AddCommand(attendanceSubmitCmd)
	rootCmd.AddCommand(attendanceCmd)
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Attendance records and submission.",
}

var attendanceRecordsCmd = &cobra.Command{
	Use:   "records <course-id>",
	Short: "Shows the attendance recap for a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		records, err := env.service.AttendanceRecords(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to load attendance records", err)
		}
		if len(records) == 0 {
			fmt.Println("no attendance records")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"No", "Pertemuan", "Tanggal", "Status", "Materi"})
		for _, r := range records {
			t.AppendRow(table.Row{r.SequenceNo, r.MeetingNo, r.Date, r.Status, r.MinutesText})
		}
		t.Render()
	},
}

var attendanceSubmitCmd = &cobra.Command{
	Use:   "submit <course-id>",
	Short: "Marks attendance for the currently open meeting.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		result, err := env.service.SubmitAttendance(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to submit attendance", err)
		}
		fmt.Printf("%s (%s)\n", result.Message, result.Status)
	},
}
