package mcp

import (
	"context"
	"strconv"

	"github.com/go-faster/jx"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

const (
	fromDescription  = "Inclusive lower bound: RFC 3339 timestamp or YYYY-MM-DD"
	toDescription    = "Inclusive upper bound: RFC 3339 timestamp or YYYY-MM-DD (a date covers the whole day)"
	limitDescription = "Maximum number of entries, 0 for all"
)

func registerTools(s *server.MCPServer, svc Services) {
	s.AddTool(
		mcplib.NewTool("sales_by_restaurant",
			mcplib.WithDescription("Revenue and order count per restaurant, cancelled orders excluded"),
			mcplib.WithString("from", mcplib.Description(fromDescription)),
			mcplib.WithString("to", mcplib.Description(toDescription)),
		),
		handleSalesByRestaurant(svc.Reports),
	)

	s.AddTool(
		mcplib.NewTool("top_products",
			mcplib.WithDescription("Products ranked by quantity sold, cancelled orders excluded"),
			mcplib.WithNumber("limit", mcplib.Description(limitDescription)),
		),
		handleTopProducts(svc.Reports),
	)

	s.AddTool(
		mcplib.NewTool("top_customers",
			mcplib.WithDescription("Customers ranked by order count, then by total spent"),
			mcplib.WithNumber("limit", mcplib.Description(limitDescription)),
		),
		handleTopCustomers(svc.Reports),
	)

	s.AddTool(
		mcplib.NewTool("orders_in_period",
			mcplib.WithDescription("Every order created in the period, cancelled ones included, oldest first"),
			mcplib.WithString("from", mcplib.Description(fromDescription)),
			mcplib.WithString("to", mcplib.Description(toDescription)),
		),
		handleOrdersInPeriod(svc.Reports),
	)

	s.AddTool(
		mcplib.NewTool("get_order",
			mcplib.WithDescription("A single order with its items"),
			mcplib.WithNumber("id",
				mcplib.Required(),
				mcplib.Description("Order id"),
			),
		),
		handleGetOrder(svc),
	)
}

func handleSalesByRestaurant(reports *report.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := period(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		sales, err := reports.SalesByRestaurant(ctx, p)
		if err != nil {
			return failure(err)
		}
		return jsonResult(view.List(sales, view.RestaurantSales)), nil
	}
}

func handleTopProducts(reports *report.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		limit, err := limitArg(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		top, err := reports.TopProducts(ctx, limit)
		if err != nil {
			return failure(err)
		}
		return jsonResult(view.List(top, view.ProductSales)), nil
	}
}

func handleTopCustomers(reports *report.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		limit, err := limitArg(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		top, err := reports.TopCustomers(ctx, limit)
		if err != nil {
			return failure(err)
		}
		return jsonResult(view.List(top, view.CustomerRanking)), nil
	}
}

func handleOrdersInPeriod(reports *report.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := period(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		lines, err := reports.OrdersInPeriod(ctx, p)
		if err != nil {
			return failure(err)
		}
		return jsonResult(view.List(lines, view.OrderLine)), nil
	}
}

func handleGetOrder(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if id <= 0 {
			return errorResult("id must be a positive integer"), nil
		}
		o, err := svc.Orders.Get(ctx, int64(id))
		if err != nil {
			return failure(err)
		}
		return jsonResult(view.One(o, view.Order)), nil
	}
}

func period(req mcplib.CallToolRequest) (report.Period, error) {
	return report.ParsePeriod(req.GetString("from", ""), req.GetString("to", ""))
}

func limitArg(req mcplib.CallToolRequest) (int, error) {
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return 0, fault.Invalid("limit", "must be greater than or equal to 0", strconv.Itoa(limit))
	}
	return limit, nil
}

// failure reports domain errors to the model and fails the call on
// internal ones.
func failure(err error) (*mcplib.CallToolResult, error) {
	if fault.KindOf(err) == fault.KindInternal {
		return nil, err
	}
	return errorResult(err.Error()), nil
}

// jsonResult returns a JSON text content result.
func jsonResult(fn func(e *jx.Encoder)) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(view.Marshal(fn)))},
	}
}

// errorResult returns an error result with the given message.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
