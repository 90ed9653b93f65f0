// Package aggregate builds read-side projections that span service
// boundaries: invoices joined with their customer, employee and seat-slots,
// and seat-slots joined with their movie and venue chain. Projections are
// assembled per request and never persisted; they reflect peer state at
// fetch time and nothing stronger. A failing peer degrades a projection
// (dropped row, nil field) but never fails the whole response.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/cinemahub/cinema-booking/internal/join"
	"github.com/cinemahub/cinema-booking/internal/model"
)

// ErrNotFound is returned by detail lookups whose subject entity is absent.
var ErrNotFound = errors.New("not found")

// InvoiceSource reads locally owned invoices.
type InvoiceSource interface {
	FindAll(ctx context.Context) ([]model.Invoice, error)
	FindByID(ctx context.Context, id uint64) (*model.Invoice, error)
	FindByCustomer(ctx context.Context, customerID uint64) ([]model.Invoice, error)
}

// CustomerLookup fetches customers from the customer service.
type CustomerLookup interface {
	FetchByID(ctx context.Context, id uint64) (*model.Customer, error)
}

// EmployeeLookup fetches employees from the employee service.
type EmployeeLookup interface {
	FetchByID(ctx context.Context, id uint64) (*model.Employee, error)
}

// ScheduleLookup fetches the seat-slots linked to an invoice from the
// schedule service.
type ScheduleLookup interface {
	ByInvoiceID(ctx context.Context, invoiceID uint64) ([]model.Schedule, error)
}

// InvoiceView is the aggregated invoice projection. Customer and Employee
// are nil only on the detail path, where a missing peer entity downgrades
// the field instead of the whole invoice; list paths drop such rows.
type InvoiceView struct {
	model.Invoice
	Customer  *model.Customer  `json:"customer"`
	Employee  *model.Employee  `json:"employee"`
	Schedules []model.Schedule `json:"schedules"`
}

// Invoices aggregates invoices with their cross-service references.
type Invoices struct {
	source    InvoiceSource
	customers CustomerLookup
	employees EmployeeLookup
	schedules ScheduleLookup
}

// NewInvoices wires the invoice aggregator to its collaborators.
func NewInvoices(source InvoiceSource, customers CustomerLookup, employees EmployeeLookup, schedules ScheduleLookup) *Invoices {
	return &Invoices{source: source, customers: customers, employees: employees, schedules: schedules}
}

// List returns every invoice joined with customer, employee and seat-slots.
// Lookups are batched by distinct foreign key: the number of remote calls
// per peer equals the number of distinct ids referenced, not the number of
// invoice rows. Rows whose customer or employee cannot be resolved are
// dropped with a warning (both are load-bearing for this projection).
func (a *Invoices) List(ctx context.Context) ([]InvoiceView, error) {
	invoices, err := a.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return a.joinAll(ctx, invoices), nil
}

// ByCustomer is List restricted to one customer's invoices.
func (a *Invoices) ByCustomer(ctx context.Context, customerID uint64) ([]InvoiceView, error) {
	invoices, err := a.source.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return a.joinAll(ctx, invoices), nil
}

func (a *Invoices) joinAll(ctx context.Context, invoices []model.Invoice) []InvoiceView {
	customerIDs := join.Keys(invoices, func(i model.Invoice) (uint64, bool) { return i.CustomerID, true })
	employeeIDs := join.Keys(invoices, func(i model.Invoice) (uint64, bool) { return i.EmployeeID, true })
	invoiceIDs := join.Keys(invoices, func(i model.Invoice) (uint64, bool) { return i.ID, true })

	customers := join.Resolve(ctx, customerIDs, a.customers.FetchByID)
	employees := join.Resolve(ctx, employeeIDs, a.employees.FetchByID)
	schedules := join.ResolveMany(ctx, invoiceIDs, a.schedules.ByInvoiceID)

	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		customer := customers[inv.CustomerID]
		employee := employees[inv.EmployeeID]
		if customer == nil || employee == nil {
			log.Printf("aggregate: customer or employee missing for invoice %d, row dropped", inv.ID)
			continue
		}
		views = append(views, InvoiceView{
			Invoice:   inv,
			Customer:  customer,
			Employee:  employee,
			Schedules: schedules[inv.ID],
		})
	}
	return views
}

// Detail returns one invoice joined with its references. The three peer
// lookups run concurrently. An absent invoice is ErrNotFound; absent peer
// entities leave nil fields with a warning, because a caller asking for a
// specific invoice is better served by a partial projection than by losing
// the locally committed facts.
func (a *Invoices) Detail(ctx context.Context, id uint64) (*InvoiceView, error) {
	invoice, err := a.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrNotFound
	}

	view := InvoiceView{Invoice: *invoice}
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		c, err := a.customers.FetchByID(ctx, invoice.CustomerID)
		if err != nil {
			log.Printf("aggregate: customer %d lookup failed for invoice %d: %v", invoice.CustomerID, invoice.ID, err)
			return
		}
		view.Customer = c
	}()
	go func() {
		defer wg.Done()
		e, err := a.employees.FetchByID(ctx, invoice.EmployeeID)
		if err != nil {
			log.Printf("aggregate: employee %d lookup failed for invoice %d: %v", invoice.EmployeeID, invoice.ID, err)
			return
		}
		view.Employee = e
	}()
	go func() {
		defer wg.Done()
		s, err := a.schedules.ByInvoiceID(ctx, invoice.ID)
		if err != nil {
			log.Printf("aggregate: schedule lookup failed for invoice %d: %v", invoice.ID, err)
			return
		}
		view.Schedules = s
	}()
	wg.Wait()

	if view.Customer == nil {
		log.Printf("aggregate: customer %d not found for invoice %d", invoice.CustomerID, invoice.ID)
	}
	if view.Employee == nil {
		log.Printf("aggregate: employee %d not found for invoice %d", invoice.EmployeeID, invoice.ID)
	}
	return &view, nil
}
