package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivefin/internal/cli"
	"drivefin/internal/seed"
)

var (
	flagSeedFile  string
	flagSeedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into storage",
	Long: "Writes the bundled demo data, or --file, into storage. Storage that already " +
		"holds records is left alone unless --force is given; records with fixed ids are overwritten.",
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&flagSeedFile, "file", "f", "", "Seed YAML file (default: bundled demo data)")
	seedCmd.Flags().BoolVar(&flagSeedForce, "force", false, "Seed even when storage is not empty")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	s := e.store.State()
	existing := len(s.Transactions) + len(s.Goals) + len(s.Categories) + len(s.Sessions)
	if existing > 0 && !flagSeedForce {
		fmt.Fprintf(out, "Storage already holds %d records; use --force to seed anyway.\n", existing)
		return nil
	}

	file := seed.Default()
	if flagSeedFile != "" {
		if file, err = seed.LoadFile(flagSeedFile); err != nil {
			return err
		}
	}
	counts, err := seed.Apply(cmd.Context(), e.backend.Storage, file, e.now)
	if err != nil {
		return err
	}

	if e.asJSON() {
		return printJSON(out, counts)
	}
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Categories", fmt.Sprint(counts.Categories)},
		{"Goals", fmt.Sprint(counts.Goals)},
		{"Transactions", fmt.Sprint(counts.Transactions)},
		{"Sessions", fmt.Sprint(counts.Sessions)},
		{"Total", fmt.Sprint(counts.Total())},
	}))
	return nil
}
