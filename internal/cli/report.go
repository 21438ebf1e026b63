package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

type reportFlags struct {
	from   string
	to     string
	limit  int
	output string
}

func (f *reportFlags) period() (report.Period, error) {
	return report.ParsePeriod(f.from, f.to)
}

func (f *reportFlags) check() error {
	if f.limit < 0 {
		return errors.Errorf("--limit must be greater than or equal to 0, got %d", f.limit)
	}
	return validFormat(f.output)
}

func newReportCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales reports",
	}
	cmd.AddCommand(
		reportCmd(open, "sales", "Revenue and order count per restaurant", true, false, salesResult),
		reportCmd(open, "top-products", "Products ranked by quantity sold", false, true, topProductsResult),
		reportCmd(open, "top-customers", "Customers ranked by order count", false, true, topCustomersResult),
		reportCmd(open, "orders", "Orders created in a period, cancelled ones included", true, false, ordersResult),
		reportCmd(open, "summary", "Every report at once", true, true, summaryResult),
	)
	return cmd
}

type reportFunc func(ctx context.Context, r *report.Service, f *reportFlags) (result, error)

func reportCmd(open Opener, use, short string, withPeriod, withLimit bool, run reportFunc) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.check(); err != nil {
				return err
			}
			return withServices(cmd, open, func(ctx context.Context, s handler.Services) error {
				res, err := run(ctx, s.Reports, &f)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), f.output, res)
			})
		},
	}
	if withPeriod {
		cmd.Flags().StringVar(&f.from, "from", "", "Inclusive lower bound: RFC 3339 timestamp or YYYY-MM-DD")
		cmd.Flags().StringVar(&f.to, "to", "", "Inclusive upper bound: RFC 3339 timestamp or YYYY-MM-DD")
	}
	if withLimit {
		cmd.Flags().IntVar(&f.limit, "limit", 10, "Maximum number of entries, 0 for all")
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func salesResult(ctx context.Context, r *report.Service, f *reportFlags) (result, error) {
	p, err := f.period()
	if err != nil {
		return result{}, err
	}
	sales, err := r.SalesByRestaurant(ctx, p)
	if err != nil {
		return result{}, err
	}
	return result{
		json:     view.List(sales, view.RestaurantSales),
		sections: []section{salesSection(sales)},
	}, nil
}

func topProductsResult(ctx context.Context, r *report.Service, f *reportFlags) (result, error) {
	top, err := r.TopProducts(ctx, f.limit)
	if err != nil {
		return result{}, err
	}
	return result{
		json:     view.List(top, view.ProductSales),
		sections: []section{productsSection(top)},
	}, nil
}

func topCustomersResult(ctx context.Context, r *report.Service, f *reportFlags) (result, error) {
	top, err := r.TopCustomers(ctx, f.limit)
	if err != nil {
		return result{}, err
	}
	return result{
		json:     view.List(top, view.CustomerRanking),
		sections: []section{customersSection(top)},
	}, nil
}

func ordersResult(ctx context.Context, r *report.Service, f *reportFlags) (result, error) {
	p, err := f.period()
	if err != nil {
		return result{}, err
	}
	lines, err := r.OrdersInPeriod(ctx, p)
	if err != nil {
		return result{}, err
	}
	return result{
		json:     view.List(lines, view.OrderLine),
		sections: []section{ordersSection(lines)},
	}, nil
}

func summaryResult(ctx context.Context, r *report.Service, f *reportFlags) (result, error) {
	p, err := f.period()
	if err != nil {
		return result{}, err
	}
	s, err := r.Summary(ctx, p, f.limit)
	if err != nil {
		return result{}, err
	}
	return result{
		json: view.One(s, view.Summary),
		sections: []section{
			salesSection(s.Sales),
			productsSection(s.TopProducts),
			customersSection(s.TopCustomers),
			ordersSection(s.Orders),
		},
	}, nil
}

func salesSection(sales []report.RestaurantSales) section {
	s := section{
		title:   "Sales by restaurant",
		headers: []string{"ID", "RESTAURANT", "ORDERS", "TOTAL"},
	}
	for _, r := range sales {
		s.rows = append(s.rows, []string{
			itoa(r.RestaurantID), r.RestaurantName, itoa(r.Orders), r.Revenue.StringFixed(2),
		})
	}
	return s
}

func productsSection(top []report.ProductSales) section {
	s := section{
		title:   "Top products",
		headers: []string{"ID", "PRODUCT", "QUANTITY", "REVENUE"},
	}
	for _, p := range top {
		s.rows = append(s.rows, []string{
			itoa(p.ProductID), p.ProductName, itoa(p.Quantity), p.Revenue.StringFixed(2),
		})
	}
	return s
}

func customersSection(top []report.CustomerRanking) section {
	s := section{
		title:   "Top customers",
		headers: []string{"ID", "CUSTOMER", "ORDERS", "SPENT"},
	}
	for _, c := range top {
		s.rows = append(s.rows, []string{
			itoa(c.CustomerID), c.CustomerName, itoa(c.Orders), c.Spent.StringFixed(2),
		})
	}
	return s
}

func ordersSection(lines []report.OrderLine) section {
	s := section{
		title:   "Orders",
		headers: []string{"ID", "CUSTOMER", "RESTAURANT", "STATUS", "TOTAL", "CREATED"},
	}
	for _, l := range lines {
		s.rows = append(s.rows, []string{
			itoa(l.OrderID), l.CustomerName, l.RestaurantName, string(l.Status),
			l.Total.StringFixed(2), formatTime(l.CreatedAt),
		})
	}
	return s
}
