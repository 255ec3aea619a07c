package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ManiEids/vef2hop2/domain"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"flokkar"},
		Short:   "List and edit categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories with task counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cats, err := a.client.ListCategories(cmd.Context())
				if err != nil {
					return a.fail(err)
				}
				if jsonOutput(cmd) {
					return printJSON(a.stdout, cats)
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				for _, c := range cats {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Name, c.TaskCount)
				}
				return tw.Flush()
			},
		},
		newCategoriesAddCmd(a),
		newCategoriesEditCmd(a),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a category (admin only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteCategory(cmd.Context(), args[0]); err != nil {
					return a.fail(err)
				}
				fmt.Fprintf(a.stdout, "Flokki %s eytt\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newCategoriesAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.CategoryInput{Name: &args[0]}
			if cmd.Flags().Changed("description") {
				d, _ := cmd.Flags().GetString("description")
				in.Description = &d
			}
			c, err := a.client.CreateCategory(cmd.Context(), in)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, c)
			}
			fmt.Fprintf(a.stdout, "Flokkur %s stofnaður: %s\n", c.ID, c.Name)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "Description")
	return cmd
}

func newCategoriesEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id> [name]",
		Short: "Rename or describe a category (admin only)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.CategoryInput
			if len(args) == 2 {
				in.Name = &args[1]
			}
			if cmd.Flags().Changed("description") {
				d, _ := cmd.Flags().GetString("description")
				in.Description = &d
			}
			c, err := a.client.UpdateCategory(cmd.Context(), args[0], in)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, c)
			}
			fmt.Fprintf(a.stdout, "Flokkur %s: %s\n", c.ID, c.Name)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "Description")
	return cmd
}

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"merki"},
		Short:   "List and create tags",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List tags",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tags, err := a.client.ListTags(cmd.Context())
				if err != nil {
					return a.fail(err)
				}
				if jsonOutput(cmd) {
					return printJSON(a.stdout, tags)
				}
				for _, t := range tags {
					fmt.Fprintln(a.stdout, t.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a tag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := a.client.CreateTag(cmd.Context(), args[0])
				if err != nil {
					return a.fail(err)
				}
				fmt.Fprintf(a.stdout, "Merki %s stofnað\n", t.Name)
				return nil
			},
		},
	)
	return cmd
}
