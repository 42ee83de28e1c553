package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service builds revenue reports over date windows.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Daily summarises one calendar day in UTC.
func (s *Service) Daily(ctx context.Context, date time.Time) (*DailySummary, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	summary, err := s.summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.Date = from.Format("2006-01-02")
	return summary, nil
}

// Range builds a full report over [from, to) with breakdowns. Aggregate
// queries run concurrently.
func (s *Service) Range(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	report := &RangeReport{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.summary(gctx, from, to)
		if err != nil {
			return err
		}
		report.Summary = *summary
		return nil
	})
	g.Go(func() error {
		byProduct, err := s.repo.SalesByProduct(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales by product: %w", err)
		}
		report.ByProduct = byProduct
		return nil
	})
	g.Go(func() error {
		byCashier, err := s.repo.SalesByCashier(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales by cashier: %w", err)
		}
		report.ByCashier = byCashier
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) summary(ctx context.Context, from, to time.Time) (*DailySummary, error) {
	summary := &DailySummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, count, err := s.repo.SalesSummary(gctx, from, to)
		if err != nil {
			return fmt.Errorf("sales summary: %w", err)
		}
		summary.SalesTotal, summary.SalesCount = total, count
		return nil
	})
	g.Go(func() error {
		total, count, err := s.repo.CompletedOrderSummary(gctx, from, to)
		if err != nil {
			return fmt.Errorf("order summary: %w", err)
		}
		summary.OrdersTotal, summary.OrdersCount = total, count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.GrandTotal = summary.SalesTotal + summary.OrdersTotal
	return summary, nil
}
