package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/container"
	"github.com/km-arc/go-winter/framework/routing"
)

func (c *cli) beansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "beans",
		Short: "Start the container and list its beans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application(cmd, zap.NewNop())
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tORDER\tPRIMARY\tINSTANCE")
			for _, b := range routing.Describe(a.Container) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", b.Name, b.Type, order(b.Order), b.Primary, b.Instance)
			}
			return w.Flush()
		},
	}
}

func order(o int) string {
	if o == container.DefaultOrder {
		return "-"
	}
	return fmt.Sprint(o)
}
