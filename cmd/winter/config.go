package main

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// types are the --type names accepted by "config get".
var types = map[string]reflect.Type{
	"string":   reflect.TypeFor[string](),
	"bool":     reflect.TypeFor[bool](),
	"int":      reflect.TypeFor[int](),
	"int64":    reflect.TypeFor[int64](),
	"uint":     reflect.TypeFor[uint](),
	"float":    reflect.TypeFor[float64](),
	"duration": reflect.TypeFor[time.Duration](),
	"time":     reflect.TypeFor[time.Time](),
	"location": reflect.TypeFor[*time.Location](),
}

func typeNames() string {
	names := make([]string, 0, len(types))
	for n := range types {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Query the resolved configuration",
	}

	var typ string
	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Resolve a key or ${key:default} expression",
		Example: `  winter config get server.port --type int
  winter config get '${hello.zone:UTC}' --type location`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := types[typ]
			if !ok {
				return fmt.Errorf("unknown type %q, want one of %s", typ, typeNames())
			}
			r, err := c.resolver(cmd)
			if err != nil {
				return err
			}
			v, err := r.GetRequiredTyped(args[0], t)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	get.Flags().StringVarP(&typ, "type", "t", "string", "convert to: "+typeNames())

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List every configuration key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := c.resolver(cmd)
			if err != nil {
				return err
			}
			for _, k := range r.Store().Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	cmd.AddCommand(get, keys)
	return cmd
}
