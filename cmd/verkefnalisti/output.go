package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ManiEids/vef2hop2/domain"
)

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printTasks(w io.Writer, tasks []domain.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		var extra []string
		if t.CategoryName != "" {
			extra = append(extra, t.CategoryName)
		}
		if t.DueDate != "" {
			extra = append(extra, t.DueDate)
		}
		for _, tag := range t.Tags {
			extra = append(extra, "#"+tag)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", checkbox(t.Completed), t.ID, t.Title, strings.Join(extra, " "))
	}
	return tw.Flush()
}

func printTask(w io.Writer, t domain.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Auðkenni:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Titill:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Lýsing:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Lokið:\t%s\n", checkbox(t.Completed))
	if t.Priority != 0 {
		fmt.Fprintf(tw, "Forgangur:\t%d\n", t.Priority)
	}
	if t.DueDate != "" {
		fmt.Fprintf(tw, "Skiladagur:\t%s\n", t.DueDate)
	}
	if t.CategoryName != "" {
		fmt.Fprintf(tw, "Flokkur:\t%s\n", t.CategoryName)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "Merki:\t%s\n", strings.Join(t.Tags, ", "))
	}
	return tw.Flush()
}
