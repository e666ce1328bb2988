package services_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- In-memory database ---

type ledgerKey struct {
	userID     string
	discountID uuid.UUID
}

// memDB is an in-memory stand-in for Postgres. Transactions snapshot the
// state and restore it when the callback fails.
type memDB struct {
	products  map[uuid.UUID]models.Product
	toppings  map[uuid.UUID]models.Topping
	stores    map[uuid.UUID]models.Store
	users     map[string]models.User
	carts     map[string]models.Cart
	discounts map[uuid.UUID]models.Discount
	ledger    map[ledgerKey]models.UserDiscount
	orders    map[uuid.UUID]models.Order
	loyalty   map[string]models.LoyaltyPoint

	creditErr     error
	orderCreateFn func(order *models.Order) error
	transitionErr error
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[uuid.UUID]models.Product{},
		toppings:  map[uuid.UUID]models.Topping{},
		stores:    map[uuid.UUID]models.Store{},
		users:     map[string]models.User{},
		carts:     map[string]models.Cart{},
		discounts: map[uuid.UUID]models.Discount{},
		ledger:    map[ledgerKey]models.UserDiscount{},
		orders:    map[uuid.UUID]models.Order{},
		loyalty:   map[string]models.LoyaltyPoint{},
	}
}

func (m *memDB) repos() repository.Repositories {
	return repository.Repositories{
		Catalog:       &memCatalog{m},
		Stores:        &memStores{m},
		Users:         &memUsers{m},
		Carts:         &memCarts{m},
		Discounts:     &memDiscounts{m},
		UserDiscounts: &memLedger{m},
		Orders:        &memOrders{m},
		Loyalty:       &memLoyalty{m},
		Nested:        &memTx{m},
	}
}

func (m *memDB) snapshot() *memDB {
	s := newMemDB()
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.toppings {
		s.toppings[k] = v
	}
	for k, v := range m.stores {
		s.stores[k] = v
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.carts {
		s.carts[k] = cloneCart(v)
	}
	for k, v := range m.discounts {
		s.discounts[k] = v
	}
	for k, v := range m.ledger {
		s.ledger[k] = v
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.loyalty {
		v.History = append([]models.LoyaltyHistory(nil), v.History...)
		s.loyalty[k] = v
	}
	return s
}

func (m *memDB) restore(s *memDB) {
	m.products, m.toppings, m.stores, m.users = s.products, s.toppings, s.stores, s.users
	m.carts, m.discounts, m.ledger, m.orders, m.loyalty = s.carts, s.discounts, s.ledger, s.orders, s.loyalty
}

func cloneCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem(nil), c.Items...)
	return c
}

// --- Transactions ---

type memTx struct{ db *memDB }

func (t *memTx) WithTransaction(_ context.Context, fn func(repos repository.Repositories) error) error {
	saved := t.db.snapshot()
	if err := fn(t.db.repos()); err != nil {
		t.db.restore(saved)
		return err
	}
	return nil
}

// --- Catalog ---

type memCatalog struct{ db *memDB }

func (r *memCatalog) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.db.products[id]
	if !ok || p.IsBanned {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memCatalog) FindToppingsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Topping, error) {
	var out []models.Topping
	for _, id := range ids {
		if t, ok := r.db.toppings[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- Stores and users ---

type memStores struct{ db *memDB }

func (r *memStores) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	s, ok := r.db.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

type memUsers struct{ db *memDB }

func (r *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUsers) SetAvailability(_ context.Context, id string, available bool) error {
	u, ok := r.db.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsAvailable = available
	r.db.users[id] = u
	return nil
}

// --- Carts ---

type memCarts struct{ db *memDB }

func (r *memCarts) FindByUserID(_ context.Context, userID string) (*models.Cart, error) {
	c, ok := r.db.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = cloneCart(c)
	return &c, nil
}

func (r *memCarts) Create(_ context.Context, cart *models.Cart) error {
	if _, ok := r.db.carts[cart.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	r.db.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

func (r *memCarts) SaveTotals(_ context.Context, cart *models.Cart) error {
	stored, ok := r.db.carts[cart.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Subtotal = cart.Subtotal
	stored.DeliveryFee = cart.DeliveryFee
	stored.Discount = cart.Discount
	stored.PromoCode = cart.PromoCode
	stored.Total = cart.Total
	r.db.carts[cart.UserID] = stored
	return nil
}

func (r *memCarts) Delete(_ context.Context, cart *models.Cart) error {
	delete(r.db.carts, cart.UserID)
	return nil
}

func (r *memCarts) AddItem(_ context.Context, item *models.CartItem) error {
	stored, ok := r.db.carts[item.UserID]
	if !ok {
		return gorm.ErrForeignKeyViolated
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	stored.Items = append(cloneCart(stored).Items, *item)
	r.db.carts[item.UserID] = stored
	return nil
}

func (r *memCarts) FindItem(_ context.Context, userID string, itemID uuid.UUID) (*models.CartItem, error) {
	for _, item := range r.db.carts[userID].Items {
		if item.ID == itemID {
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCarts) UpdateItemPricing(_ context.Context, item *models.CartItem) error {
	stored := cloneCart(r.db.carts[item.UserID])
	for i := range stored.Items {
		if stored.Items[i].ID == item.ID {
			stored.Items[i].Quantity = item.Quantity
			stored.Items[i].Price = item.Price
			r.db.carts[item.UserID] = stored
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCarts) DeleteItem(_ context.Context, item *models.CartItem) error {
	stored := r.db.carts[item.UserID]
	kept := make([]models.CartItem, 0, len(stored.Items))
	for _, it := range stored.Items {
		if it.ID != item.ID {
			kept = append(kept, it)
		}
	}
	stored.Items = kept
	r.db.carts[item.UserID] = stored
	return nil
}

// --- Discounts ---

type memDiscounts struct{ db *memDB }

func (r *memDiscounts) Create(_ context.Context, d *models.Discount) error {
	for _, existing := range r.db.discounts {
		if strings.EqualFold(existing.PromotionCode, d.PromotionCode) {
			return gorm.ErrDuplicatedKey
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.db.discounts[d.ID] = *d
	return nil
}

func (r *memDiscounts) Update(_ context.Context, d *models.Discount) error {
	if _, ok := r.db.discounts[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.discounts[d.ID] = *d
	return nil
}

func (r *memDiscounts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.db.discounts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.discounts, id)
	return nil
}

func (r *memDiscounts) FindByID(_ context.Context, id uuid.UUID) (*models.Discount, error) {
	d, ok := r.db.discounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *memDiscounts) FindByCode(_ context.Context, code string) (*models.Discount, error) {
	for _, d := range r.db.discounts {
		if strings.EqualFold(d.PromotionCode, strings.TrimSpace(code)) {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDiscounts) FindAll(_ context.Context, page, limit int) ([]models.Discount, int64, error) {
	all := r.sorted()
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memDiscounts) FindAvailable(_ context.Context, now time.Time) ([]models.Discount, error) {
	var out []models.Discount
	for _, d := range r.sorted() {
		if !d.IsLock && d.ExpiryDate.After(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDiscounts) SetLock(_ context.Context, id uuid.UUID, locked bool) error {
	d, ok := r.db.discounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.IsLock = locked
	r.db.discounts[id] = d
	return nil
}

func (r *memDiscounts) sorted() []models.Discount {
	out := make([]models.Discount, 0, len(r.db.discounts))
	for _, d := range r.db.discounts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PromotionCode < out[j].PromotionCode })
	return out
}

// --- Usage ledger ---

type memLedger struct{ db *memDB }

func (r *memLedger) Find(_ context.Context, userID string, discountID uuid.UUID) (*models.UserDiscount, error) {
	e, ok := r.db.ledger[ledgerKey{userID, discountID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r *memLedger) MarkUsed(_ context.Context, userID string, discountID uuid.UUID) (bool, error) {
	key := ledgerKey{userID, discountID}
	e, ok := r.db.ledger[key]
	if ok && e.IsUsed {
		return false, nil
	}
	if !ok {
		e = models.UserDiscount{ID: uuid.New(), UserID: userID, DiscountID: discountID}
	}
	e.IsUsed = true
	r.db.ledger[key] = e
	return true, nil
}

func (r *memLedger) Release(_ context.Context, userID string, discountID uuid.UUID) (bool, error) {
	key := ledgerKey{userID, discountID}
	e, ok := r.db.ledger[key]
	if !ok || !e.IsUsed {
		return false, nil
	}
	e.IsUsed = false
	r.db.ledger[key] = e
	return true, nil
}

func (r *memLedger) Settle(_ context.Context, userID string, discountID uuid.UUID) error {
	key := ledgerKey{userID, discountID}
	e, ok := r.db.ledger[key]
	if !ok {
		e = models.UserDiscount{ID: uuid.New(), UserID: userID, DiscountID: discountID}
	}
	e.IsUsed = true
	r.db.ledger[key] = e
	return nil
}

func (r *memLedger) Create(_ context.Context, entry *models.UserDiscount) error {
	key := ledgerKey{entry.UserID, entry.DiscountID}
	if _, ok := r.db.ledger[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.db.ledger[key] = *entry
	return nil
}

func (r *memLedger) ListByUser(_ context.Context, userID string, isUsed *bool) ([]models.UserDiscount, error) {
	var out []models.UserDiscount
	for key, e := range r.db.ledger {
		if key.userID != userID || (isUsed != nil && e.IsUsed != *isUsed) {
			continue
		}
		if d, ok := r.db.discounts[key.discountID]; ok {
			e.Discount = &d
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memLedger) UsedDiscountIDs(_ context.Context, userID string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for key, e := range r.db.ledger {
		if key.userID == userID && e.IsUsed {
			out = append(out, key.discountID)
		}
	}
	return out, nil
}

// --- Orders ---

type memOrders struct{ db *memDB }

func (r *memOrders) Create(_ context.Context, order *models.Order) error {
	if r.db.orderCreateFn != nil {
		if err := r.db.orderCreateFn(order); err != nil {
			return err
		}
	}
	for _, o := range r.db.orders {
		if o.OrderNumber == order.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.db.orders[order.ID] = *order
	return nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.db.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *memOrders) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range r.db.orders {
		if o.OrderNumber == orderNumber {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrders) List(_ context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	matched := r.match(filter)
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (r *memOrders) Transition(_ context.Context, id uuid.UUID, from models.OrderStatus, fields map[string]interface{}) (bool, error) {
	if r.db.transitionErr != nil {
		return false, r.db.transitionErr
	}
	o, ok := r.db.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(models.OrderStatus)
		case "cancel_reason":
			reason := v.(string)
			o.CancelReason = &reason
		case "shipper_assigned":
			shipper := v.(string)
			o.ShipperAssigned = &shipper
		default:
			return false, errors.New("unexpected column " + k)
		}
	}
	r.db.orders[id] = o
	return true, nil
}

func (r *memOrders) MarkPaid(_ context.Context, id uuid.UUID, reference string) (bool, error) {
	o, ok := r.db.orders[id]
	if !ok || o.PaymentStatus == models.PaymentStatusPaid {
		return false, nil
	}
	o.PaymentStatus = models.PaymentStatusPaid
	o.PaymentReference = reference
	r.db.orders[id] = o
	return true, nil
}

func (r *memOrders) SumDeliveryFees(_ context.Context, filter models.OrderFilter) (int64, int64, error) {
	var count, sum int64
	for _, o := range r.match(filter) {
		count++
		sum += o.DeliveryFee
	}
	return count, sum, nil
}

func (r *memOrders) match(filter models.OrderFilter) []models.Order {
	var out []models.Order
	for _, o := range r.db.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.StoreID != nil && o.StoreID != *filter.StoreID {
			continue
		}
		if filter.ShipperID != "" && (o.ShipperAssigned == nil || *o.ShipperAssigned != filter.ShipperID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out
}

func containsStatus(statuses []models.OrderStatus, s models.OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// --- Loyalty ---

type memLoyalty struct{ db *memDB }

func (r *memLoyalty) FindByUserID(_ context.Context, userID string) (*models.LoyaltyPoint, error) {
	lp, ok := r.db.loyalty[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &lp, nil
}

func (r *memLoyalty) LockByUserID(ctx context.Context, userID string) (*models.LoyaltyPoint, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *memLoyalty) Credit(_ context.Context, userID string, points int64, entry *models.LoyaltyHistory) error {
	if r.db.creditErr != nil {
		return r.db.creditErr
	}
	lp, ok := r.db.loyalty[userID]
	if !ok {
		lp = models.LoyaltyPoint{ID: uuid.New(), UserID: userID}
	}
	lp.TotalPoints += points
	entry.LoyaltyPointID = lp.ID
	entry.UserID = userID
	entry.Points = points
	lp.History = append(append([]models.LoyaltyHistory(nil), lp.History...), *entry)
	r.db.loyalty[userID] = lp
	return nil
}

func (r *memLoyalty) Debit(_ context.Context, balance *models.LoyaltyPoint, points int64, entry *models.LoyaltyHistory) error {
	lp := r.db.loyalty[balance.UserID]
	lp.TotalPoints -= points
	balance.TotalPoints -= points
	entry.LoyaltyPointID = lp.ID
	entry.UserID = balance.UserID
	entry.Points = -points
	lp.History = append(append([]models.LoyaltyHistory(nil), lp.History...), *entry)
	r.db.loyalty[balance.UserID] = lp
	return nil
}

// --- Collaborators ---

type mockSNSPublisher struct {
	published [][]byte
	err       error
}

func (m *mockSNSPublisher) Publish(_ context.Context, _ string, message []byte) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, message)
	return nil
}

// --- Fixtures ---

const (
	testDeliveryFee = 10000
	testTopicArn    = "arn:aws:sns:ap-southeast-1:000000000000:chillcup-events"
)

type fixture struct {
	db        *memDB
	product   models.Product
	topping   models.Topping
	store     models.Store
	sizeMID   uuid.UUID
	expiresAt time.Time
}

// newFixture seeds the catalog with a 30000 drink that costs 1.3x in size M
// and a 5000 topping.
func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{db: db, expiresAt: time.Now().Add(30 * 24 * time.Hour)}

	f.topping = models.Topping{ID: uuid.New(), Name: "Pearl", Price: 5000}
	f.sizeMID = uuid.New()
	f.product = models.Product{
		ID:        uuid.New(),
		Name:      "Matcha Latte",
		BasePrice: 30000,
		Sizes: []models.Size{
			{ID: uuid.New(), Code: "S", Multiplier: 1},
			{ID: f.sizeMID, Code: "M", Multiplier: 1.3},
			{ID: uuid.New(), Code: "L", Multiplier: 1.6},
		},
		Toppings: []models.Topping{f.topping},
	}
	f.store = models.Store{ID: uuid.New(), Name: "Chill Cup Q1", IsActive: true}

	db.products[f.product.ID] = f.product
	db.toppings[f.topping.ID] = f.topping
	db.stores[f.store.ID] = f.store
	return f
}

func (f *fixture) addDiscount(code string, percent float64, minOrder int64) models.Discount {
	d := models.Discount{
		ID:              uuid.New(),
		Title:           code,
		PromotionCode:   code,
		DiscountPercent: percent,
		MinOrder:        minOrder,
		ExpiryDate:      f.expiresAt,
	}
	f.db.discounts[d.ID] = d
	return d
}

func (f *fixture) addUser(u models.User) {
	f.db.users[u.ID] = u
}

func (f *fixture) addItemRequest(quantity int) *models.AddCartItemRequest {
	return &models.AddCartItemRequest{
		ProductID: f.product.ID.String(),
		Size:      "M",
		Toppings:  []string{f.topping.ID.String()},
		Quantity:  quantity,
	}
}
