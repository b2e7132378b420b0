package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/accountfile"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// A failed refresh leaves the default endpoints in place.
	a.resolver.RefreshFromRemote(ctx)

	var result any
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		accounts, err := accountfile.Load(path, a.logger)
		if err != nil {
			return err
		}
		result = a.positions.ComputeSnapshots(ctx, accounts)
	} else {
		chain, _ := cmd.Flags().GetString("chain")
		address, _ := cmd.Flags().GetString("address")
		version, _ := cmd.Flags().GetInt("version")

		account, err := entity.NewTrackedAccount(chain, address, version)
		if err != nil {
			return err
		}
		snapshot, err := a.positions.ComputeSnapshot(ctx, account)
		if err != nil {
			return fmt.Errorf("%s: %w", entity.ErrorKind(err), err)
		}
		result = snapshot
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func runMarkets(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN\tCHAIN ID\tVERSION\tPOOL ADDRESSES PROVIDER\tUI POOL DATA PROVIDER")
	for _, m := range a.registry.Markets() {
		fmt.Fprintf(w, "%s\t%s\tv%s\t%s\t%s\n",
			m.Chain, strconv.FormatUint(m.ChainID, 10), strconv.Itoa(int(m.Version)),
			m.PoolAddressesProvider.Hex(), m.UIPoolDataProvider.Hex())
	}
	return w.Flush()
}
