package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pricedesk/internal/adapter"
	"pricedesk/internal/domain"
	"pricedesk/internal/service"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <item name>...",
	Short: "Look up schema defindexes for item names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), schemaTimeout)
		defer cancel()

		resolver := service.NewItemResolver(nil)
		source := adapter.NewSteamSchemaClient(cfg.Schema.URL, cfg.Schema.SteamAPIKey, schemaTimeout)
		if _, err := service.NewSchemaService(source, resolver).Reload(ctx); err != nil {
			return err
		}

		return printResolved(cmd, resolver, args)
	},
}

func printResolved(cmd *cobra.Command, resolver *service.ItemResolver, names []string) error {
	out := cmd.OutOrStdout()
	var failed int
	for _, name := range names {
		defindex, err := resolver.Resolve(name)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s\t%s\n", name, domain.UserMessage(err))
			continue
		}

		item, _ := resolver.Item(defindex)
		fmt.Fprintf(out, "%s\t%d\t%s\n", name, defindex, item.DisplayName())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d names did not resolve", failed, len(names))
	}
	return nil
}
