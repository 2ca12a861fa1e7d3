package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wealth-server/src/jobs"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run background jobs",
	}
	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsRunCommand())
	return cmd
}

func newJobsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered jobs and their triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Registration does not touch the database, so the list needs no services.
			r := jobs.NewRegistry()
			if err := jobs.Register(r, jobs.Deps{}); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEVENT\tCRON")
			for _, j := range r.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", j.Name, j.Trigger.Event, j.Trigger.Cron)
			}
			return w.Flush()
		},
	}
}

func newJobsRunCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			name := args[0]
			ev := jobs.Event{Name: name}
			if j, ok := a.jobs.Get(name); ok && j.Trigger.Event != "" {
				ev.Name = j.Trigger.Event
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				ev.Data = json.RawMessage(data)
			}

			result, err := a.jobs.Invoke(cmd.Context(), name, ev)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "event data as JSON")
	return cmd
}
