package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/orderpulse/ordersbff/internal/apiclient"
	"github.com/orderpulse/ordersbff/internal/domain"
)

const demoStock = 25

type ordersAPI interface {
	TopSold(ctx context.Context) ([]domain.ProductAggregate, error)
	UpdateStock(ctx context.Context, merchantProductNo string, stock int) error
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "orders-cli",
		Usage: "query top-selling products and update stock through the orders API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "base URL of the orders API",
				Value:   "http://localhost:5000",
				EnvVars: []string{"ORDERS_API_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "bearer key for stock updates",
				EnvVars: []string{"ORDERS_API_KEY"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout; throttled calls may take minutes",
				Value: 5 * time.Minute,
			},
		},
		Writer: out,
		Action: func(c *cli.Context) error {
			return runDemo(c.Context, clientFrom(c), out)
		},
		Commands: []*cli.Command{
			{
				Name:  "top-sold",
				Usage: "print the top-selling products of in-progress orders",
				Action: func(c *cli.Context) error {
					return runTopSold(c.Context, clientFrom(c), out)
				},
			},
			{
				Name:  "update-stock",
				Usage: "set the stock of a product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "merchant-product-no", Required: true},
					&cli.IntFlag{Name: "stock", Required: true},
				},
				Action: func(c *cli.Context) error {
					return runUpdateStock(c.Context, clientFrom(c), out, c.String("merchant-product-no"), c.Int("stock"))
				},
			},
		},
	}
}

func clientFrom(c *cli.Context) ordersAPI {
	return apiclient.New(c.String("api-url"), c.String("api-key"), c.Duration("timeout"))
}

func runTopSold(ctx context.Context, api ordersAPI, out io.Writer) error {
	products, err := api.TopSold(ctx)
	if err != nil {
		return err
	}
	printProducts(out, products)
	return nil
}

func runUpdateStock(ctx context.Context, api ordersAPI, out io.Writer, merchantProductNo string, stock int) error {
	if err := api.UpdateStock(ctx, merchantProductNo, stock); err != nil {
		return err
	}
	fmt.Fprintf(out, "Stock of %s set to %d.\n", merchantProductNo, stock)
	return nil
}

// runDemo fetches the top sellers and sets the stock of the best seller.
func runDemo(ctx context.Context, api ordersAPI, out io.Writer) error {
	fmt.Fprintln(out, "Fetching top-sold products...")
	products, err := api.TopSold(ctx)
	if err != nil {
		fmt.Fprintf(out, "Failed to fetch top-sold products: %v\n", err)
		return nil
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "No products found.")
		return nil
	}
	printProducts(out, products)

	first := products[0]
	fmt.Fprintf(out, "Updating stock for %s (GTIN: %s) to %d...\n", first.ProductName, first.Gtin, demoStock)
	if err := api.UpdateStock(ctx, first.MerchantProductNo, demoStock); err != nil {
		fmt.Fprintln(out, "Failed to update stock.")
		return nil
	}
	fmt.Fprintln(out, "Stock updated successfully!")
	return nil
}

func printProducts(out io.Writer, products []domain.ProductAggregate) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPRODUCT\tGTIN\tMERCHANT PRODUCT NO\tQUANTITY")
	for i, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", i+1, p.ProductName, p.Gtin, p.MerchantProductNo, p.TotalQuantity)
	}
	w.Flush()
}
