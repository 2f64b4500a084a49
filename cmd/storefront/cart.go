package main

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	grpcDelivery "storefront/internal/delivery/grpc"
	"storefront/internal/discovery"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cartTarget     string
	cartServiceKey string
	cartConsul     string
	cartService    string
	cartUser       string
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or check out a user's cart through the internal gRPC service",
	Long: `Calls CartService on a running storefront. The target is taken from
--target, or looked up in consul under <service>-grpc when --target is empty.`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a user's cart",
	RunE:  runCartShow,
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from a user's cart",
	RunE:  runCartCheckout,
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartCheckoutCmd)
	cartCmd.PersistentFlags().StringVar(&cartTarget, "target", "", "gRPC address of the storefront (host:port)")
	cartCmd.PersistentFlags().StringVar(&cartServiceKey, "service-key", envOr("SERVICE_ROLE_KEY", ""), "Service role key")
	cartCmd.PersistentFlags().StringVar(&cartConsul, "consul", envOr("CONSUL_ADDR", ""), "Consul address used when --target is empty")
	cartCmd.PersistentFlags().StringVar(&cartService, "service", envOr("SERVICE_NAME", "storefront"), "Registered service name")
	cartCmd.PersistentFlags().StringVar(&cartUser, "user", "", "User ID")
	_ = cartCmd.MarkPersistentFlagRequired("user")
}

func resolveCartTarget() (string, error) {
	if cartTarget != "" {
		return cartTarget, nil
	}
	if cartConsul == "" {
		return "", fmt.Errorf("either --target or --consul is required")
	}
	client, err := discovery.NewClient(cartConsul)
	if err != nil {
		return "", err
	}
	addr, port, err := discovery.GetServiceAddress(client, cartService+discovery.GRPCSuffix)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(addr, strconv.Itoa(port)), nil
}

func newCartClient() (*grpcDelivery.CartClient, uuid.UUID, error) {
	userID, err := uuid.Parse(cartUser)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid --user %q: %w", cartUser, err)
	}
	target, err := resolveCartTarget()
	if err != nil {
		return nil, uuid.Nil, err
	}
	client, err := grpcDelivery.NewCartClient(target, cartServiceKey, logger)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return client, userID, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runCartShow(cmd *cobra.Command, args []string) error {
	client, userID, err := newCartClient()
	if err != nil {
		return err
	}
	defer client.Close()

	snap, err := client.GetCartDetails(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return printJSON(cmd, snap)
}

func runCartCheckout(cmd *cobra.Command, args []string) error {
	client, userID, err := newCartClient()
	if err != nil {
		return err
	}
	defer client.Close()

	order, err := client.Checkout(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return printJSON(cmd, order)
}
