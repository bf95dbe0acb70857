package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marketpulse/finrag/config"
	"github.com/marketpulse/finrag/internal/citation"
	srv "github.com/marketpulse/finrag/internal/server"
)

func askCMD() *cobra.Command {
	var cfgPath string
	var asJSON bool
	var ask = &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question from the news corpus and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			app, err := srv.NewApp(cfg)
			if err != nil {
				return err
			}
			res := app.Chat(context.Background(), strings.Join(args, " "))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Println(res.Answer)
			if len(res.Citations) > 0 {
				fmt.Println()
				for _, c := range res.Citations {
					fmt.Println("  " + citation.Format(c))
				}
			}
			fmt.Printf("\nfact check: %s (confidence %.2f)\n", res.FactCheck.Verdict, res.FactCheck.Confidence)
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	ask.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return ask
}
