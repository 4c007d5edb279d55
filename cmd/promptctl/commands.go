package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alanyang/prompt-manager/internal/adapter/file"
	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
)

var errNotFound = errors.New("prompt not found")

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) listCmd() *cobra.Command {
	var (
		sorted bool
		filter domainprompt.Filter
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print prompts as JSON",
		Long: `Print the collection as a JSON array.

Without flags prompts appear in insertion order. --sorted, --query and
--category order them by creation time using the saved sort order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			switch {
			case filter != (domainprompt.Filter{}):
				return c.printJSON(c.svc.Search(ctx, filter))
			case sorted:
				return c.printJSON(c.svc.Sorted(ctx))
			default:
				return c.printJSON(c.svc.List(ctx))
			}
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Order by creation time using the saved sort order")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Case-insensitive text to match in title or content")
	cmd.Flags().StringVarP(&filter.Category, "category", "c", "", "Only prompts in this category")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := c.svc.Get(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			return c.printJSON(p)
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var data domainprompt.FormData
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.svc.Add(cmd.Context(), data)
			if err != nil {
				return err
			}
			return c.printJSON(p)
		},
	}
	cmd.Flags().StringVar(&data.Title, "title", "", "Prompt title")
	cmd.Flags().StringVar(&data.Content, "content", "", "Prompt body")
	cmd.Flags().StringVar(&data.Category, "category", "", "Category label")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var data domainprompt.FormData
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a prompt; flags that are not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, ok := c.svc.Get(ctx, args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}

			next := current
			if cmd.Flags().Changed("title") {
				next.Title = data.Title
			}
			if cmd.Flags().Changed("content") {
				next.Content = data.Content
			}
			if cmd.Flags().Changed("category") {
				next.Category = data.Category
			}

			updated, found, err := c.svc.Update(ctx, next)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			return c.printJSON(updated)
		},
	}
	cmd.Flags().StringVar(&data.Title, "title", "", "New title")
	cmd.Flags().StringVar(&data.Content, "content", "", "New body")
	cmd.Flags().StringVar(&data.Category, "category", "", "New category")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a prompt",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := c.svc.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			fmt.Fprintf(c.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all prompts to prompts-export-<timestamp>.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := file.WriteExport(dir, c.svc.ExportAll(cmd.Context()))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Destination directory")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an export file into the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			summary, err := c.svc.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			return c.printJSON(summary)
		},
	}
}

func (c *cli) sortOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort-order",
		Short: "Print the saved sort order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(c.out, c.svc.SortOrder(cmd.Context()))
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Flip the saved sort order between asc and desc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := c.svc.ToggleSortOrder(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, order)
			return nil
		},
	})
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the distinct categories, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, cat := range c.svc.Categories(cmd.Context()) {
				fmt.Fprintln(c.out, cat)
			}
			return nil
		},
	}
}
