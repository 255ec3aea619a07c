package main

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ManiEids/vef2hop2/domain"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"verkefni"},
		Short:   "List and edit tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksGetCmd(a),
		newTasksAddCmd(a),
		newTasksEditCmd(a),
		newTasksDoneCmd(a),
		newTasksRemoveCmd(a),
		newTasksCountsCmd(a),
		newTasksSyncCmd(a),
	)
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var q domain.TaskQuery
			q.Page, _ = f.GetInt("page")
			q.Limit, _ = f.GetInt("limit")
			q.CategoryID, _ = f.GetString("category")
			q.Tag, _ = f.GetString("tag")
			q.Status, _ = f.GetString("status")
			q.SortBy, _ = f.GetString("sort")
			q.SortOrder, _ = f.GetString("order")

			page, err := a.client.ListTasks(cmd.Context(), q)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(a.stdout, "Engin verkefni")
				return nil
			}
			if err := printTasks(a.stdout, page.Items); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Síða %d af %d, %d verkefni\n", page.CurrentPage, page.PageCount, page.Count)
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", domain.DefaultPageSize, "Tasks per page")
	cmd.Flags().String("category", "", "Only tasks in this category id")
	cmd.Flags().String("tag", "", "Only tasks with this tag")
	cmd.Flags().StringP("status", "s", "", "all, active or completed")
	cmd.Flags().String("sort", "", "created, title, due or priority")
	cmd.Flags().String("order", "", "asc or desc")
	return cmd
}

func newTasksGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, t)
			}
			return printTask(a.stdout, t)
		},
	}
}

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "Description")
	cmd.Flags().IntP("priority", "p", 0, "Priority, 1 (high) to 3 (low)")
	cmd.Flags().String("due", "", "Due date in YYYY-MM-DD format")
	cmd.Flags().StringP("category", "c", "", "Category id")
	cmd.Flags().StringSliceP("tag", "t", nil, "Tag (can be repeated or comma separated)")
	cmd.Flags().String("image", "", "Image URL")
}

// taskInput collects the flags the user set. Unset flags stay nil so an
// edit leaves those fields alone.
func taskInput(cmd *cobra.Command, title *string) domain.TaskInput {
	f := cmd.Flags()
	in := domain.TaskInput{Title: title}
	if f.Changed("description") {
		v, _ := f.GetString("description")
		in.Description = &v
	}
	if f.Changed("priority") {
		v, _ := f.GetInt("priority")
		in.Priority = &v
	}
	if f.Changed("due") {
		v, _ := f.GetString("due")
		in.DueDate = &v
	}
	if f.Changed("category") {
		v, _ := f.GetString("category")
		in.CategoryID = &v
	}
	if f.Changed("tag") {
		in.Tags, _ = f.GetStringSlice("tag")
	}
	if f.Changed("image") {
		v, _ := f.GetString("image")
		in.ImageURL = &v
	}
	return in
}

func newTasksAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("idempotency-key")
			if key == "" {
				key = uuid.NewString()
			}
			title := args[0]
			t, err := a.client.CreateTask(cmd.Context(), taskInput(cmd, &title), key)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, t)
			}
			fmt.Fprintf(a.stdout, "Verkefni %s stofnað\n", t.ID)
			return nil
		},
	}
	addTaskFlags(cmd)
	cmd.Flags().String("idempotency-key", "", "Key that makes a retried create safe")
	return cmd
}

func newTasksEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var title *string
			if cmd.Flags().Changed("title") {
				v, _ := cmd.Flags().GetString("title")
				title = &v
			}
			in := taskInput(cmd, title)
			if cmd.Flags().Changed("completed") {
				v, _ := cmd.Flags().GetBool("completed")
				in.Completed = &v
			}
			t, err := a.client.UpdateTask(cmd.Context(), args[0], in)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, t)
			}
			return printTask(a.stdout, t)
		},
	}
	addTaskFlags(cmd)
	cmd.Flags().String("title", "", "Title")
	cmd.Flags().Bool("completed", false, "Mark completed or not")
	return cmd
}

func newTasksDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.CompleteTask(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.stdout, "%s %s\n", checkbox(t.Completed), t.Title)
			return nil
		},
	}
}

func newTasksRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.stdout, "Verkefni %s eytt\n", args[0])
			return nil
		},
	}
}

func newTasksCountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count tasks by status, category and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.client.TaskCounts(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, counts)
			}
			fmt.Fprintf(a.stdout, "Virk: %d\nLokið: %d\n", counts.Active, counts.Completed)
			for _, k := range sortedKeys(counts.Categories) {
				fmt.Fprintf(a.stdout, "Flokkur %s: %d\n", k, counts.Categories[k])
			}
			for _, k := range sortedKeys(counts.Tags) {
				fmt.Fprintf(a.stdout, "#%s: %d\n", k, counts.Tags[k])
			}
			return nil
		},
	}
}

func newTasksSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Merge remote tasks into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			push, _ := cmd.Flags().GetBool("push")
			merged, err := a.client.SyncLocal(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			if push {
				if merged, err = a.client.PushLocal(cmd.Context()); err != nil {
					return a.fail(err)
				}
			}
			fmt.Fprintf(a.stdout, "%d verkefni samstillt\n", len(merged))
			return nil
		},
	}
	cmd.Flags().Bool("push", false, "Also send the merged local tasks to the API")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
