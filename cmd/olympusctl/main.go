// Command olympusctl is a thin terminal frontend over the client SDK,
// useful for poking a backend and for verifying credentials end to end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/olympus-platform/client-go/config"
	"github.com/olympus-platform/client-go/olympus"
	"github.com/olympus-platform/client-go/orders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "olympusctl",
		Short:         "Olympus business-management client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newLoginCmd(), newLogoutCmd(), newOrdersCmd())
	return root
}

// withClient builds a wired client, runs fn, and tears the client down.
func withClient(fn func(ctx context.Context, c *olympus.Client) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := olympus.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Close(ctx)

	return fn(ctx, client)
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				if err := c.Session.Login(ctx, email, password); err != nil {
					return err
				}
				sess, _ := c.Session.Current().Value()
				fmt.Printf("logged in as %s %s <%s>\n",
					sess.User.FirstName, sess.User.LastName, sess.User.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				if err := c.Session.Logout(ctx); err != nil {
					return err
				}
				fmt.Println("logged out")
				return nil
			})
		},
	}
}

func newOrdersCmd() *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and mutate the order collection",
	}

	var query string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, optionally filtered by a search query",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				if err := c.Orders.Search(ctx, query); err != nil {
					return err
				}
				list, _ := c.Orders.Container().Current().Value()
				for _, o := range list {
					fmt.Printf("%s\t%s\t%s\t%.2f\t%s\n",
						o.ID, o.Status, o.Priority, o.Total,
						o.CreatedAt.Format(time.RFC3339))
				}
				fmt.Printf("%d orders, %.2f completed revenue, %d active\n",
					len(list), c.Orders.Revenue(), len(c.Orders.Active()))
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&query, "query", "", "search query")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				order, err := c.Orders.Get(ctx, args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(order, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}

	var reason string
	cancelCmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				if err := c.Orders.Cancel(ctx, args[0], reason); err != nil {
					return err
				}
				fmt.Printf("order %s cancelled\n", args[0])
				return nil
			})
		},
	}
	cancelCmd.Flags().StringVar(&reason, "reason", "", "cancellation reason")

	var status string
	statusCmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Move one order to a new status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, c *olympus.Client) error {
				order, err := c.Orders.UpdateStatus(ctx, args[0], orders.Status(status))
				if err != nil {
					return err
				}
				fmt.Printf("order %s is now %s\n", order.ID, order.Status)
				return nil
			})
		},
	}
	statusCmd.Flags().StringVar(&status, "to", "", "target status")
	statusCmd.MarkFlagRequired("to")

	ordersCmd.AddCommand(listCmd, showCmd, cancelCmd, statusCmd)
	return ordersCmd
}
