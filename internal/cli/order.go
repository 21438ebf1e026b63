package cli

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

func newOrderCmd(open Opener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and manage orders",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validFormat(output)
		},
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json or yaml")

	cmd.AddCommand(
		orderCmd(open, &output, "get ID", "Show an order with its items", 1,
			func(ctx context.Context, s *order.Service, id int64, _ []string) (*order.Order, error) {
				return s.Get(ctx, id)
			}),
		orderCmd(open, &output, "status ID STATUS", "Move an order to a new status", 2,
			func(ctx context.Context, s *order.Service, id int64, args []string) (*order.Order, error) {
				return s.UpdateStatus(ctx, id, args[0])
			}),
		orderCmd(open, &output, "cancel ID", "Cancel an order", 1,
			func(ctx context.Context, s *order.Service, id int64, _ []string) (*order.Order, error) {
				return s.Cancel(ctx, id)
			}),
	)
	return cmd
}

type orderFunc func(ctx context.Context, s *order.Service, id int64, rest []string) (*order.Order, error)

func orderCmd(open Opener, output *string, use, short string, nargs int, run orderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return errors.Errorf("invalid order id %q", args[0])
			}
			return withServices(cmd, open, func(ctx context.Context, s handler.Services) error {
				o, err := run(ctx, s.Orders, id, args[1:])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), *output, orderResult(o))
			})
		},
	}
}

func orderResult(o *order.Order) result {
	head := section{
		title:   "Order " + itoa(o.ID),
		headers: []string{"CUSTOMER", "RESTAURANT", "STATUS", "SUBTOTAL", "FEE", "TOTAL", "CREATED"},
		rows: [][]string{{
			o.CustomerName, o.RestaurantName, string(o.Status),
			o.Subtotal.StringFixed(2), o.DeliveryFee.StringFixed(2), o.Total.StringFixed(2),
			formatTime(o.CreatedAt),
		}},
	}
	items := section{
		title:   "Items",
		headers: []string{"PRODUCT", "QTY", "UNIT", "SUBTOTAL"},
	}
	for _, it := range o.Items {
		items.rows = append(items.rows, []string{
			it.ProductName, strconv.Itoa(it.Quantity), it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2),
		})
	}
	return result{
		json:     view.One(o, view.Order),
		sections: []section{head, items},
	}
}
