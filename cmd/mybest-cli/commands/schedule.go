package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mybest-backend/lib/scrapers/elearning/parse"
	"mybest-backend/lib/serviceutil"
)

var scheduleCached *bool

func init() {
	scheduleCached = scheduleCmd.Flags().Bool("cached", false, "Print the cached schedule without hitting the portal.")
	scheduleCmd.AddCommand(replacementsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var replacementsCmd = &cobra.Command{
	Use:   "replacements",
	Short: "Shows one-off replacement class sessions.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		courses, err := env.client.ReplacementClasses(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load replacement classes", err)
		}
		if len(courses) == 0 {
			fmt.Println("no replacement classes")
			return
		}
		printCourses(courses)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cached]",
	Short: "Shows the class schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		var courses []parse.Course
		var err error
		if *scheduleCached {
			courses, err = env.courses.Courses(ctx)
		} else {
			courses, err = env.service.SyncSchedule(ctx)
		}
		if err != nil {
			serviceutil.Fatal("failed to load schedule", err)
		}
		if len(courses) == 0 {
			fmt.Println("no classes found")
			return
		}
		printCourses(courses)
	},
}

func printCourses(courses []parse.Course) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Hari", "Jam", "Mata Kuliah", "Ruang", "SKS", "ID"})
	for _, c := range courses {
		t.AppendRow(table.Row{
			c.Day,
			fmt.Sprintf("%s-%s", c.StartTime, c.EndTime),
			c.Name,
			c.Room,
			c.Credits,
			c.EncryptedId,
		})
	}
	t.Render()
}
