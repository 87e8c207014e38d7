package application

import (
	"context"
	"time"

	"github.com/orderlab/order-system/order-service/domain"
	"github.com/orderlab/order-system/shared/saga"
)

// OrderView is the read model served by the query endpoints.
type OrderView struct {
	ID     int64  `json:"id"`
	Codigo string `json:"codigo"`
	Valor  string `json:"valor"`
	Data   string `json:"data"`
	Status string `json:"status"`
}

func toView(order *domain.Order) *OrderView {
	return &OrderView{
		ID:     order.ID,
		Codigo: order.Codigo,
		Valor:  order.Valor.String(),
		Data:   order.Data.Format(time.RFC3339),
		Status: string(order.Status),
	}
}

// GetOrder fetches one order by id.
type GetOrder struct {
	orders domain.OrderRepository
}

func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

func (uc *GetOrder) Execute(ctx context.Context, id int64) (*OrderView, error) {
	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(order), nil
}

// OrderStatusView adds the human-readable status description used by
// clients polling for payment resolution.
type OrderStatusView struct {
	OrderView
	StatusDescription string `json:"status_description"`
}

func (uc *GetOrder) ExecuteStatus(ctx context.Context, id int64) (*OrderStatusView, error) {
	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderStatusView{
		OrderView:         *toView(order),
		StatusDescription: order.Status.Description(),
	}, nil
}

// ListOrders returns every order.
type ListOrders struct {
	orders domain.OrderRepository
}

func NewListOrders(orders domain.OrderRepository) *ListOrders {
	return &ListOrders{orders: orders}
}

func (uc *ListOrders) Execute(ctx context.Context) ([]*OrderView, error) {
	orders, err := uc.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toView(order))
	}
	return views, nil
}

// StatusSummary aggregates order counts by status for dashboards.
type StatusSummary struct {
	orders domain.OrderRepository
}

func NewStatusSummary(orders domain.OrderRepository) *StatusSummary {
	return &StatusSummary{orders: orders}
}

// StatusSummaryView is the aggregate served by the summary endpoint.
type StatusSummaryView struct {
	TotalOrders        int64             `json:"total_orders"`
	StatusBreakdown    map[string]int64  `json:"status_breakdown"`
	StatusDescriptions map[string]string `json:"status_descriptions"`
}

func (uc *StatusSummary) Execute(ctx context.Context) (*StatusSummaryView, error) {
	counts, err := uc.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	view := &StatusSummaryView{
		StatusBreakdown:    make(map[string]int64, len(counts)),
		StatusDescriptions: make(map[string]string, len(counts)),
	}
	for status, count := range counts {
		view.TotalOrders += count
		view.StatusBreakdown[string(status)] = count
		view.StatusDescriptions[string(status)] = saga.Status(status).Description()
	}
	return view, nil
}
