package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/pagination"
	"github.com/wselearn/wse/internal/ui/components"
)

const cellWidth = 32

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List, add and delete words or terms",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of items",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireLogin(); err != nil {
			return err
		}
		v, err := e.variant(cmd)
		if err != nil {
			return err
		}

		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		if size <= 0 {
			size = e.cfg.Exercise.PageSize
		}

		p := pagination.New(e.client, v.ItemsPath, size)
		if err := p.Load(cmd.Context(), page); err != nil {
			e.auth.HandleError(cmd.Context(), err)
			return fmt.Errorf("list %s: %w", v.Name, err)
		}

		out := cmd.OutOrStdout()
		if p.Count() == 0 {
			fmt.Fprintln(out, "No items found.")
			return nil
		}

		cols := append([]string{"id"}, v.ListColumns...)
		cols = append(cols, "category", "progress")

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = strings.ToUpper(strings.ReplaceAll(c, "_", " "))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, it := range p.Items() {
			row := make([]string, len(cols))
			for i, c := range cols {
				if val, ok := it[c]; ok && val != nil {
					row[i] = components.Truncate(fmt.Sprint(val), cellWidth)
				}
			}
			row[0] = it.ID()
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPage %d of %d · %d items\n", p.Page(), p.Pages(), p.Count())
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an item",
	Example: `  wse items add --variant foreign -f foreign_word=cat -f native_word=кот --category nouns
  wse items add --variant glossary -f term=mutex -f "definition=an exclusive lock"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireLogin(); err != nil {
			return err
		}
		v, err := e.variant(cmd)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetStringToString("field")
		fields := make(map[string]any, len(raw)+1)
		for _, c := range v.ListColumns {
			val := strings.TrimSpace(raw[c])
			if val == "" {
				return fmt.Errorf("field %q is required", c)
			}
		}
		for k, val := range raw {
			fields[k] = strings.TrimSpace(val)
		}
		if c, _ := cmd.Flags().GetString("category"); c != "" {
			fields["category"] = c
		}

		created, err := e.client.CreateItem(cmd.Context(), v.ItemsPath, fields)
		if err != nil {
			e.auth.HandleError(cmd.Context(), err)
			return fmt.Errorf("create %s item: %w", v.Name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created item %s.\n", created.ID())
		return nil
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete items by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireLogin(); err != nil {
			return err
		}
		v, err := e.variant(cmd)
		if err != nil {
			return err
		}

		for _, id := range args {
			if err := e.client.DeleteItem(cmd.Context(), v.ItemsPath, id); err != nil {
				e.auth.HandleError(cmd.Context(), err)
				return fmt.Errorf("delete %s item %s: %w", v.Name, id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s.\n", id)
		}
		return nil
	},
}

func init() {
	itemsCmd.PersistentFlags().StringP("variant", "v", "foreign", "Variant name (foreign, glossary, ...)")

	itemsListCmd.Flags().Int("page", 1, "Page number")
	itemsListCmd.Flags().Int("page-size", 0, "Items per page (default from config)")

	itemsAddCmd.Flags().StringToStringP("field", "f", nil, "Item field as key=value (repeatable)")
	itemsAddCmd.Flags().String("category", "", "Item category")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsDeleteCmd)
}
