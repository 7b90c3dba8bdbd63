package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mybest-backend/lib/serviceutil"
)

func init() {
	assignmentsCmd.AddCommand(assignmentsListCmd)
	assignmentsCmd.AddCommand(assignmentsGradesCmd)
	assignmentsCmd.AddCommand(assignmentsSubmitCmd)
	assignmentsCmd.AddCommand(assignmentsDownloadCmd)
	rootCmd.AddCommand(assignmentsCmd)
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "Course assignments: listing, grades, submission, attachments.",
}

var assignmentsListCmd = &cobra.Command{
	Use:   "list <course-id>",
	Short: "Lists the assignments of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		assignments, err := env.service.Assignments(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to load assignments", err)
		}
		if len(assignments) == 0 {
			fmt.Println("no assignments")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"No", "Judul", "Pertemuan", "Batas", "Status", "Submit Ref", "Download Ref"})
		for _, a := range assignments {
			status := "belum"
			if a.SubmittedRef != "" {
				status = "sudah"
			}
			t.AppendRow(table.Row{
				a.SequenceNo, a.Title, a.MeetingNo, a.ClosesAt,
				status, a.SubmitRef, a.DownloadRef,
			})
		}
		t.Render()
	},
}

var assignmentsGradesCmd = &cobra.Command{
	Use:   "grades <course-id>",
	Short: "Lists assignment grades and lecturer comments.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		grades, err := env.service.AssignmentGrades(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to load grades", err)
		}
		if len(grades) == 0 {
			fmt.Println("no grades yet")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"No", "Judul", "Nilai", "Komentar"})
		for _, g := range grades {
			t.AppendRow(table.Row{g.SequenceNo, g.Title, g.Score, g.LecturerComment})
		}
		t.Render()
	},
}

var assignmentsSubmitCmd = &cobra.Command{
	Use:   "submit <submit-ref> <link>",
	Short: "Turns in a link for an assignment.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		err := env.service.SubmitAssignment(ctx, args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to submit assignment", err)
		}
		fmt.Println("assignment submitted")
	},
}

var assignmentsDownloadCmd = &cobra.Command{
	Use:   "download <download-ref>",
	Short: "Downloads an assignment attachment into the working directory.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		name, data, err := env.service.DownloadAssignmentFile(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to download attachment", err)
		}
		err = os.WriteFile(name, data, 0644)
		if err != nil {
			serviceutil.Fatal("failed to write attachment", err)
		}
		fmt.Println("wrote", name)
	},
}
