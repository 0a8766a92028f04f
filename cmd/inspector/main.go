// Inspector is an operator diagnostic tool: it classifies wallets,
// resolves the signing scheme, and checks the bridge runtime without
// starting the HTTP surface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/GoPolymarket/polyexec/internal/bridge"
	"github.com/GoPolymarket/polyexec/internal/config"
	"github.com/GoPolymarket/polyexec/internal/execution"
	"github.com/GoPolymarket/polyexec/internal/pkg/logger"
	"github.com/GoPolymarket/polyexec/internal/wallet"
	"github.com/spf13/cobra"
)

func main() {
	logger.Init("warn")

	root := &cobra.Command{
		Use:   "inspector",
		Short: "Diagnostics for the order execution service",
	}
	root.AddCommand(newClassifyCmd(), newResolveCmd(), newBridgeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <address>",
		Short: "Probe whether an address is a contract wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			classifier := wallet.NewClassifier(cfg.Chain.RPCURL,
				time.Duration(cfg.Chain.ClassifyTimeoutMs)*time.Millisecond)

			cls, err := classifier.Classify(context.Background(), args[0])
			if err != nil {
				fmt.Printf("classification: %s (error: %v)\n", cls, err)
				return nil
			}
			fmt.Printf("classification: %s\n", cls)
			return nil
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Show the signing scheme the configured identity would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Clob.PrivateKey == "" {
				return fmt.Errorf("clob.private_key is not configured")
			}
			classifier := wallet.NewClassifier(cfg.Chain.RPCURL,
				time.Duration(cfg.Chain.ClassifyTimeoutMs)*time.Millisecond)

			res, err := execution.ResolveSignatureType(context.Background(), execution.ResolveInput{
				Override:    cfg.Clob.SignatureType,
				PrivateKey:  cfg.Clob.PrivateKey,
				ProxyWallet: cfg.Clob.ProxyWallet,
			}, classifier)
			if err != nil {
				return err
			}
			fmt.Printf("signature_type: %s\n", res.SignatureType)
			if res.Funder != "" {
				fmt.Printf("funder: %s\n", res.Funder)
			}
			return nil
		},
	}
}

func newBridgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bridge-health",
		Short: "Invoke the bridge health action and print its response",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := bridge.NewClient(cfg.Bridge.Runtime, cfg.Bridge.Script,
				time.Duration(cfg.Bridge.TimeoutSeconds)*time.Second)

			resp := client.Invoke(context.Background(), "health", map[string]any{})
			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}
