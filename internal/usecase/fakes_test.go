package usecase

import (
	"context"
	"sort"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
)

// memStore backs every repository port with plain maps. It is deliberately
// unsynchronized; tests drive it from a single goroutine.
type memStore struct {
	orders    map[string]*domain.Order
	items     map[string]*domain.OrderItem
	itemOrder []string // insertion order of item IDs
	carts     map[string]*domain.CartItem
	books     map[string]*domain.Book
	users     map[string]*domain.User
	addrs     map[string]*domain.Address

	orderSeq []string // insertion order of order IDs
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[string]*domain.Order{},
		items:  map[string]*domain.OrderItem{},
		carts:  map[string]*domain.CartItem{},
		books:  map[string]*domain.Book{},
		users:  map[string]*domain.User{},
		addrs:  map[string]*domain.Address{},
	}
}

// --- OrderRepo ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	r.s.orderSeq = append(r.s.orderSeq, o.ID)
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) all() []domain.Order {
	out := make([]domain.Order, 0, len(r.s.orderSeq))
	for i := len(r.s.orderSeq) - 1; i >= 0; i-- { // newest first
		out = append(out, *r.s.orders[r.s.orderSeq[i]])
	}
	return out
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.all() {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	return r.all(), nil
}

func page(orders []domain.Order, p, size int) ([]domain.Order, int64) {
	total := int64(len(orders))
	start := p * size
	if start >= len(orders) {
		return nil, total
	}
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end], total
}

func (r *memOrderRepo) ListByUserPage(ctx context.Context, userID string, p, size int) ([]domain.Order, int64, error) {
	all, _ := r.ListByUser(ctx, userID)
	out, total := page(all, p, size)
	return out, total, nil
}

func (r *memOrderRepo) ListAllPage(_ context.Context, p, size int) ([]domain.Order, int64, error) {
	out, total := page(r.all(), p, size)
	return out, total, nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id string, to domain.Status) error {
	if o, ok := r.s.orders[id]; ok {
		o.Status = to
	}
	return nil
}

func (r *memOrderRepo) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	o, ok := r.s.orders[id]
	if !ok {
		return nil
	}
	o.PaymentStatus = domain.PaymentPaid
	if o.PaymentDate.IsZero() {
		o.PaymentDate = paidAt
	}
	return nil
}

func (r *memOrderRepo) ListUnpaidOnline(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.all() {
		if o.PaymentMethod == domain.PaymentOnline && o.PaymentStatus == domain.PaymentNotPaid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(_ context.Context, status domain.Status) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.all() {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) TopCustomers(_ context.Context, limit int) ([]CustomerOrderCount, error) {
	counts := map[string]int64{}
	for _, o := range r.all() {
		counts[o.UserID]++
	}
	rows := make([]CustomerOrderCount, 0, len(counts))
	for id, n := range counts {
		rows = append(rows, CustomerOrderCount{UserID: id, OrderCount: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrderCount != rows[j].OrderCount {
			return rows[i].OrderCount > rows[j].OrderCount
		}
		return rows[i].UserID < rows[j].UserID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// --- OrderItemRepo ---

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) Create(_ context.Context, item *domain.OrderItem) error {
	cp := *item
	r.s.items[item.ID] = &cp
	r.s.itemOrder = append(r.s.itemOrder, item.ID)
	return nil
}

func (r *memItemRepo) ListByOrder(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for _, id := range r.s.itemOrder {
		if item := r.s.items[id]; item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

// --- CartRepo ---

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) ListByIDs(_ context.Context, ids []string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, id := range ids {
		if ci, ok := r.s.carts[id]; ok {
			out = append(out, *ci)
		}
	}
	return out, nil
}

func (r *memCartRepo) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.s.carts, id)
	}
	return nil
}

// --- BookRepo ---

type memBookRepo struct{ s *memStore }

func (r *memBookRepo) GetByID(_ context.Context, id string) (*domain.Book, error) {
	b, ok := r.s.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBookRepo) AdjustStock(_ context.Context, id string, qty int) error {
	if b, ok := r.s.books[id]; ok {
		b.Stock -= qty
		b.SoldQuantity += qty
	}
	return nil
}

// --- UserRepo ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) AttachAddress(_ context.Context, userID, addressID string) error {
	u, ok := r.s.users[userID]
	if !ok {
		return nil
	}
	for _, id := range u.AddressIDs {
		if id == addressID {
			return nil
		}
	}
	u.AddressIDs = append(u.AddressIDs, addressID)
	return nil
}

// --- AddressRepo ---

type memAddrRepo struct{ s *memStore }

func (r *memAddrRepo) FindExact(_ context.Context, name, phone, address string) (*domain.Address, error) {
	for _, a := range r.s.addrs {
		if a.Name == name && a.Phone == phone && a.Address == address {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAddrRepo) Create(_ context.Context, a *domain.Address) error {
	cp := *a
	r.s.addrs[a.ID] = &cp
	return nil
}

func (r *memAddrRepo) GetByID(_ context.Context, id string) (*domain.Address, error) {
	a, ok := r.s.addrs[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// --- TxRunner / cache / sinks ---

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memCache struct {
	views       map[string]*OrderView
	invalidated []string
}

func newMemCache() *memCache { return &memCache{views: map[string]*OrderView{}} }

func (c *memCache) GetView(_ context.Context, orderID string) (*OrderView, bool, error) {
	v, ok := c.views[orderID]
	return v, ok, nil
}

func (c *memCache) SetView(_ context.Context, view *OrderView) error {
	c.views[view.ID] = view
	return nil
}

func (c *memCache) Invalidate(_ context.Context, orderID string) error {
	delete(c.views, orderID)
	c.invalidated = append(c.invalidated, orderID)
	return nil
}

type recordingNotifier struct {
	sent []NotificationMsg
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, body, link string) error {
	n.sent = append(n.sent, NotificationMsg{UserID: userID, Title: title, Body: body, Link: link})
	return nil
}

type recordingPush struct {
	topics   []string
	payloads []any
}

func (p *recordingPush) Publish(_ context.Context, topic string, payload any) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	msgs []OrderStatusChangedMsg
}

func (e *recordingEvents) StatusChanged(_ context.Context, msg OrderStatusChangedMsg) error {
	e.msgs = append(e.msgs, msg)
	return nil
}

type memIdem struct {
	locks  map[string]bool
	values map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (s *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + "/" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *memIdem) Remember(_ context.Context, scope, key, value string) error {
	s.values[scope+"/"+key] = value
	return nil
}

func (s *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := s.values[scope+"/"+key]
	return v, ok, nil
}
