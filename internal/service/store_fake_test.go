package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"pos-service/internal/entity"
	"pos-service/internal/repository"
)

type fakeSale struct {
	ID         int64
	OperatorID int
	CustomerID *int
	Total      decimal.Decimal
}

type fakeState struct {
	products   map[int]entity.ProductForSale
	sales      map[int64]fakeSale
	lines      []entity.SaleLine
	nextSaleID int64
	nextLineID int64
}

func (st *fakeState) clone() *fakeState {
	c := &fakeState{
		products:   make(map[int]entity.ProductForSale, len(st.products)),
		sales:      make(map[int64]fakeSale, len(st.sales)),
		lines:      append([]entity.SaleLine(nil), st.lines...),
		nextSaleID: st.nextSaleID,
		nextLineID: st.nextLineID,
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.sales {
		c.sales[k] = v
	}
	return c
}

// fakeSaleStore serialises units of work behind one mutex and applies a
// staged copy of the state only when fn succeeds.
type fakeSaleStore struct {
	mu        sync.Mutex
	state     *fakeState
	operators map[int]bool
	customers map[int]bool

	// failLineInsert makes the n-th InsertSaleLine (1-based) of a unit of work fail.
	failLineInsert int

	commits   int
	rollbacks int
	lastLimit int
}

func newFakeSaleStore(products ...entity.ProductForSale) *fakeSaleStore {
	st := &fakeState{
		products: make(map[int]entity.ProductForSale),
		sales:    make(map[int64]fakeSale),
	}
	for _, p := range products {
		st.products[p.ID] = p
	}
	return &fakeSaleStore{
		state:     st,
		operators: map[int]bool{1: true},
		customers: map[int]bool{1: true},
	}
}

func (s *fakeSaleStore) WithinTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&fakeUnitOfWork{store: s, state: staged}); err != nil {
		s.rollbacks++
		return err
	}
	if err := ctx.Err(); err != nil {
		s.rollbacks++
		return err
	}

	s.state = staged
	s.commits++
	return nil
}

func (s *fakeSaleStore) ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastLimit = limit
	ids := make([]int64, 0, len(s.state.sales))
	for id := range s.state.sales {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := []entity.SaleSummary{}
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		sale := s.state.sales[id]
		out = append(out, entity.SaleSummary{SaleID: id, OperatorName: "cashier", TotalAmount: sale.Total})
	}
	return out, nil
}

func (s *fakeSaleStore) GetSaleLines(ctx context.Context, saleID int64) ([]entity.SaleLineView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []entity.SaleLineView{}
	for _, l := range s.state.lines {
		if l.SaleID == saleID {
			out = append(out, entity.SaleLineView{
				LineID:      l.ID,
				ProductName: s.state.products[l.ProductID].Name,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Subtotal:    l.Subtotal,
			})
		}
	}
	return out, nil
}

func (s *fakeSaleStore) product(id int) entity.ProductForSale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id]
}

func (s *fakeSaleStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.sales)
}

func (s *fakeSaleStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.lines)
}

type fakeUnitOfWork struct {
	store       *fakeSaleStore
	state       *fakeState
	lineInserts int
}

func (u *fakeUnitOfWork) LockProducts(ctx context.Context, productIDs []int) error {
	if !sort.IntsAreSorted(productIDs) {
		return errors.New("products must be locked in ascending id order")
	}
	return nil
}

func (u *fakeUnitOfWork) InsertSale(ctx context.Context, operatorID int, customerID *int) (int64, error) {
	if !u.store.operators[operatorID] {
		return 0, &entity.ConstraintViolationError{Kind: entity.ConstraintForeignKey, Err: errors.New("unknown operator")}
	}
	if customerID != nil && !u.store.customers[*customerID] {
		return 0, &entity.ConstraintViolationError{Kind: entity.ConstraintForeignKey, Err: errors.New("unknown customer")}
	}

	u.state.nextSaleID++
	id := u.state.nextSaleID
	u.state.sales[id] = fakeSale{ID: id, OperatorID: operatorID, CustomerID: customerID}
	return id, nil
}

func (u *fakeUnitOfWork) GetProductForSale(ctx context.Context, productID int) (*entity.ProductForSale, error) {
	p, ok := u.state.products[productID]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	return &p, nil
}

func (u *fakeUnitOfWork) InsertSaleLine(ctx context.Context, line *entity.SaleLine) (int64, error) {
	u.lineInserts++
	if u.store.failLineInsert == u.lineInserts {
		return 0, errors.Join(entity.ErrUnavailable, errors.New("connection reset"))
	}
	if _, ok := u.state.sales[line.SaleID]; !ok {
		return 0, &entity.ConstraintViolationError{Kind: entity.ConstraintForeignKey, Err: errors.New("unknown sale")}
	}

	u.state.nextLineID++
	stored := *line
	stored.ID = u.state.nextLineID
	u.state.lines = append(u.state.lines, stored)
	return stored.ID, nil
}

func (u *fakeUnitOfWork) DecrementStock(ctx context.Context, productID, quantity int) (bool, error) {
	p, ok := u.state.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	u.state.products[productID] = p
	return true, nil
}

func (u *fakeUnitOfWork) SetSaleTotal(ctx context.Context, saleID int64, total decimal.Decimal) error {
	sale, ok := u.state.sales[saleID]
	if !ok {
		return errors.New("unknown sale")
	}
	if total.IsNegative() {
		return &entity.ConstraintViolationError{Kind: entity.ConstraintCheck, Err: errors.New("negative total")}
	}
	sale.Total = total
	u.state.sales[saleID] = sale
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (p *fakePublisher) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakePublisher) messages() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Message(nil), p.msgs...)
}

// lostCommitStore applies every unit of work and then reports the commit as
// lost, the way a dropped connection during COMMIT surfaces to the caller.
type lostCommitStore struct {
	*fakeSaleStore
}

func (s lostCommitStore) WithinTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := s.fakeSaleStore.WithinTx(ctx, fn); err != nil {
		return err
	}
	return &entity.CommitUnknownError{Err: mysql.ErrInvalidConn}
}
