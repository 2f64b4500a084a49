// Package memstore is an in-memory implementation of every repository in
// internal/domain. It backs unit tests and supports failure injection per
// operation.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store holds all tables in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	clock time.Time

	users      map[uuid.UUID]domain.AuthUser
	sessions   map[uuid.UUID]domain.Session
	profiles   map[uuid.UUID]domain.Profile
	categories map[uuid.UUID]domain.Category
	products   map[uuid.UUID]domain.Product
	colors     map[uuid.UUID][]domain.ProductColor
	cart       map[uuid.UUID]domain.CartItem
	orders     map[uuid.UUID]domain.Order

	calls       map[string]int
	failures    map[string]error
	failItemAt  int
	failItemErr error
}

var (
	_ domain.ProductRepository  = (*Store)(nil)
	_ domain.CategoryRepository = (*Store)(nil)
	_ domain.CartRepository     = (*Store)(nil)
	_ domain.OrderRepository    = (*Store)(nil)
	_ domain.ProfileRepository  = (*Store)(nil)
	_ domain.AuthRepository     = (*Store)(nil)
)

func New() *Store {
	return &Store{
		clock:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:      map[uuid.UUID]domain.AuthUser{},
		sessions:   map[uuid.UUID]domain.Session{},
		profiles:   map[uuid.UUID]domain.Profile{},
		categories: map[uuid.UUID]domain.Category{},
		products:   map[uuid.UUID]domain.Product{},
		colors:     map[uuid.UUID][]domain.ProductColor{},
		cart:       map[uuid.UUID]domain.CartItem{},
		orders:     map[uuid.UUID]domain.Order{},
		calls:      map[string]int{},
		failures:   map[string]error{},
	}
}

// FailOn makes every later call of the named method return err.
// A nil err clears the failure.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// FailOrderItemAt makes InsertOrderItems fail on its n-th item (1-based),
// after the preceding items were stored.
func (s *Store) FailOrderItemAt(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failItemAt = n
	s.failItemErr = err
}

// Calls reports how often the named method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter records the call and returns the injected failure, if any. The
// caller must hold s.mu.
func (s *Store) enter(ctx context.Context, method string) error {
	s.calls[method]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[method]
}

// tick returns a strictly increasing timestamp so insertion order is stable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func paginate[T any](items []T, p domain.ListParams) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.PageSize > 0 && start+p.PageSize < end {
		end = start + p.PageSize
	}
	return append([]T{}, items[start:end]...)
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// sortBy orders items with less, falling back to created order, reversed when desc.
func sortBy[T any](items []T, desc bool, less func(a, b T) int, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if c == 0 {
			c = created(items[i]).Compare(created(items[j]))
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Products

func (s *Store) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateProduct"); err != nil {
		return nil, err
	}
	if product.CategoryID != nil {
		if _, ok := s.categories[*product.CategoryID]; !ok {
			return nil, domain.Invalid("category with id %v does not exist", *product.CategoryID)
		}
	}
	if domain.ValidatePrice(product.Price) != nil || product.Stock < 0 {
		return nil, domain.Invalid("product data constraint violation")
	}
	p := *product
	p.ID = uuid.New()
	p.CreatedAt = s.tick()
	p.Colors = nil
	s.products[p.ID] = p
	*product = p
	return &p, nil
}

func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetProductByID"); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.NotFound("product", id)
	}
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateProduct"); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.NotFound("product", id)
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	if update.ClearCategory {
		p.CategoryID = nil
	} else if update.CategoryID != nil {
		if _, ok := s.categories[*update.CategoryID]; !ok {
			return nil, domain.Invalid("category with id %v does not exist", *update.CategoryID)
		}
		c := *update.CategoryID
		p.CategoryID = &c
	}
	if update.ImageURL != nil {
		p.ImageURL = *update.ImageURL
	}
	if domain.ValidatePrice(p.Price) != nil || p.Stock < 0 {
		return nil, domain.Invalid("product data constraint violation")
	}
	s.products[id] = p
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteProduct"); err != nil {
		return err
	}
	if _, ok := s.products[id]; !ok {
		return domain.NotFound("product", id)
	}
	delete(s.products, id)
	delete(s.colors, id)
	for itemID, item := range s.cart {
		if item.ProductID == id {
			delete(s.cart, itemID)
		}
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context, params domain.ListParams) ([]domain.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListProducts"); err != nil {
		return nil, 0, err
	}
	matched := []domain.Product{}
	for _, p := range s.products {
		if !containsFold(params.Search, p.Name, p.Description) {
			continue
		}
		if params.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *params.CategoryID) {
			continue
		}
		if params.MinPrice != nil && p.Price.LessThan(*params.MinPrice) {
			continue
		}
		if params.MaxPrice != nil && p.Price.GreaterThan(*params.MaxPrice) {
			continue
		}
		if params.InStock && p.Stock <= 0 {
			continue
		}
		matched = append(matched, p)
	}
	sortBy(matched, params.Desc, func(a, b domain.Product) int {
		switch params.Sort {
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "price":
			return a.Price.Cmp(b.Price)
		case "stock":
			return a.Stock - b.Stock
		}
		return 0
	}, func(p domain.Product) time.Time { return p.CreatedAt })
	return paginate(matched, params), len(matched), nil
}

func (s *Store) AssignCategory(ctx context.Context, productIDs []uuid.UUID, categoryID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "AssignCategory"); err != nil {
		return 0, err
	}
	n := 0
	for _, id := range productIDs {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		c := categoryID
		p.CategoryID = &c
		s.products[id] = p
		n++
	}
	return n, nil
}

func (s *Store) ListColors(ctx context.Context, productID uuid.UUID) ([]domain.ProductColor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListColors"); err != nil {
		return nil, err
	}
	colors := make([]domain.ProductColor, 0, len(s.colors[productID]))
	for _, c := range s.colors[productID] {
		c.Images = append([]domain.ProductColorImage{}, c.Images...)
		c.Sizes = append([]domain.ProductColorSize{}, c.Sizes...)
		colors = append(colors, c)
	}
	sort.SliceStable(colors, func(i, j int) bool { return colors[i].Name < colors[j].Name })
	return colors, nil
}

func (s *Store) DeleteColors(ctx context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteColors"); err != nil {
		return err
	}
	delete(s.colors, productID)
	return nil
}

func (s *Store) InsertColor(ctx context.Context, color *domain.ProductColor) (*domain.ProductColor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertColor"); err != nil {
		return nil, err
	}
	if _, ok := s.products[color.ProductID]; !ok {
		return nil, domain.NotFound("product", color.ProductID)
	}
	for _, c := range s.colors[color.ProductID] {
		if c.Name == color.Name {
			return nil, domain.Conflict("color %q for product %s", color.Name, color.ProductID)
		}
	}
	c := domain.ProductColor{ID: uuid.New(), ProductID: color.ProductID, Name: color.Name, HexCode: color.HexCode}
	s.colors[color.ProductID] = append(s.colors[color.ProductID], c)
	color.ID = c.ID
	return &c, nil
}

func (s *Store) colorRef(colorID uuid.UUID) (uuid.UUID, int, bool) {
	for productID, colors := range s.colors {
		for i, c := range colors {
			if c.ID == colorID {
				return productID, i, true
			}
		}
	}
	return uuid.Nil, 0, false
}

func (s *Store) InsertColorImages(ctx context.Context, colorID uuid.UUID, images []domain.ProductColorImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertColorImages"); err != nil {
		return err
	}
	productID, i, ok := s.colorRef(colorID)
	if !ok {
		return domain.NotFound("color", colorID)
	}
	for _, img := range images {
		img.ID = uuid.New()
		img.ColorID = colorID
		s.colors[productID][i].Images = append(s.colors[productID][i].Images, img)
	}
	return nil
}

func (s *Store) InsertColorSizes(ctx context.Context, colorID uuid.UUID, sizes []domain.ProductColorSize) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertColorSizes"); err != nil {
		return err
	}
	productID, i, ok := s.colorRef(colorID)
	if !ok {
		return domain.NotFound("color", colorID)
	}
	for _, sz := range sizes {
		for _, existing := range s.colors[productID][i].Sizes {
			if existing.Size == sz.Size {
				return domain.Conflict("size %q for color %s", sz.Size, colorID)
			}
		}
		sz.ID = uuid.New()
		sz.ColorID = colorID
		s.colors[productID][i].Sizes = append(s.colors[productID][i].Sizes, sz)
	}
	return nil
}

// Categories

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateCategory"); err != nil {
		return nil, err
	}
	for _, c := range s.categories {
		if c.Name == category.Name {
			return nil, domain.Conflict("category with name '%s'", category.Name)
		}
	}
	c := *category
	c.ID = uuid.New()
	c.CreatedAt = s.tick()
	s.categories[c.ID] = c
	*category = c
	return &c, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetCategoryByID"); err != nil {
		return nil, err
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.NotFound("category", id)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateCategory"); err != nil {
		return nil, err
	}
	c, ok := s.categories[category.ID]
	if !ok {
		return nil, domain.NotFound("category", category.ID)
	}
	for id, other := range s.categories {
		if id != category.ID && other.Name == category.Name {
			return nil, domain.Conflict("category with name '%s'", category.Name)
		}
	}
	c.Name = category.Name
	c.Description = category.Description
	s.categories[c.ID] = c
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteCategory"); err != nil {
		return err
	}
	if _, ok := s.categories[id]; !ok {
		return domain.NotFound("category", id)
	}
	delete(s.categories, id)
	for pid, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			s.products[pid] = p
		}
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, params domain.ListParams) ([]domain.Category, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListCategories"); err != nil {
		return nil, 0, err
	}
	matched := []domain.Category{}
	for _, c := range s.categories {
		if containsFold(params.Search, c.Name) {
			matched = append(matched, c)
		}
	}
	sortBy(matched, params.Desc, func(a, b domain.Category) int {
		if params.Sort == "created_at" {
			return 0
		}
		return strings.Compare(a.Name, b.Name)
	}, func(c domain.Category) time.Time { return c.CreatedAt })
	return paginate(matched, params), len(matched), nil
}

// Cart

func (s *Store) cartLine(item domain.CartItem) domain.CartLine {
	return domain.CartLine{CartItem: item, Product: s.products[item.ProductID]}
}

func (s *Store) ListCartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListCartLines"); err != nil {
		return nil, err
	}
	lines := []domain.CartLine{}
	for _, item := range s.cart {
		if item.UserID == userID {
			lines = append(lines, s.cartLine(item))
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })
	return lines, nil
}

func (s *Store) AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "AddCartItem"); err != nil {
		return nil, err
	}
	if _, ok := s.products[productID]; !ok {
		return nil, domain.NotFound("product", productID)
	}
	for id, item := range s.cart {
		if item.UserID == userID && item.ProductID == productID {
			if item.Quantity+quantity < 1 {
				return nil, domain.ErrInvalidQuantity
			}
			item.Quantity += quantity
			s.cart[id] = item
			line := s.cartLine(item)
			return &line, nil
		}
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	item := domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: s.tick(),
	}
	s.cart[item.ID] = item
	line := s.cartLine(item)
	return &line, nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateCartItemQuantity"); err != nil {
		return err
	}
	item, ok := s.cart[itemID]
	if !ok || item.UserID != userID {
		return fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, itemID)
	}
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	item.Quantity = quantity
	s.cart[itemID] = item
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteCartItem"); err != nil {
		return err
	}
	item, ok := s.cart[itemID]
	if !ok || item.UserID != userID {
		return fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, itemID)
	}
	delete(s.cart, itemID)
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ClearCart"); err != nil {
		return err
	}
	for id, item := range s.cart {
		if item.UserID == userID {
			delete(s.cart, id)
		}
	}
	return nil
}

// Orders

func copyOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem{}, o.Items...)
	return o
}

func (s *Store) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "InsertOrder"); err != nil {
		return nil, err
	}
	if order.TotalAmount.IsNegative() {
		return nil, domain.Invalid("order constraint violation")
	}
	o := *order
	o.ID = uuid.New()
	o.CreatedAt = s.tick()
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	o.Items = []domain.OrderItem{}
	s.orders[o.ID] = o
	*order = copyOrder(o)
	return order, nil
}

func (s *Store) InsertOrderItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) ([]domain.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := make([]domain.OrderItem, 0, len(items))
	if err := s.enter(ctx, "InsertOrderItems"); err != nil {
		return inserted, err
	}
	o, ok := s.orders[orderID]
	if !ok {
		return inserted, domain.NotFound("order", orderID)
	}
	for i, item := range items {
		if s.failItemAt == i+1 {
			s.orders[orderID] = o
			return inserted, s.failItemErr
		}
		if item.Quantity < 1 || item.Price.IsNegative() {
			s.orders[orderID] = o
			return inserted, domain.Invalid("order item constraint violation")
		}
		item.ID = uuid.New()
		item.OrderID = orderID
		o.Items = append(o.Items, item)
		inserted = append(inserted, item)
	}
	s.orders[orderID] = o
	return inserted, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetOrderByID"); err != nil {
		return nil, err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id)
	}
	o = copyOrder(o)
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateOrderStatus"); err != nil {
		return nil, err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id)
	}
	if !domain.IsValidStatus(status) {
		return nil, domain.Invalid("order constraint violation")
	}
	o.Status = status
	s.orders[id] = o
	o = copyOrder(o)
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, params domain.ListParams) ([]domain.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListOrders"); err != nil {
		return nil, 0, err
	}
	matched := []domain.Order{}
	for _, o := range s.orders {
		if params.UserID != nil && o.UserID != *params.UserID {
			continue
		}
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		matched = append(matched, copyOrder(o))
	}
	sortBy(matched, params.Desc, func(a, b domain.Order) int {
		switch params.Sort {
		case "total_amount":
			return a.TotalAmount.Cmp(b.TotalAmount)
		case "status":
			return strings.Compare(string(a.Status), string(b.Status))
		}
		return 0
	}, func(o domain.Order) time.Time { return o.CreatedAt })
	return paginate(matched, params), len(matched), nil
}

// Profiles

func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateProfile"); err != nil {
		return nil, err
	}
	if _, ok := s.users[profile.ID]; !ok {
		return nil, domain.NotFound("user", profile.ID)
	}
	if _, ok := s.profiles[profile.ID]; ok {
		return nil, domain.Conflict("profile for %s", profile.Email)
	}
	p := *profile
	p.CreatedAt = s.tick()
	s.profiles[p.ID] = p
	*profile = p
	return &p, nil
}

func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetProfileByID"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.NotFound("profile", id)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "UpdateProfile"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.NotFound("profile", id)
	}
	if update.DisplayName != nil {
		p.DisplayName = *update.DisplayName
	}
	if update.IsAdmin != nil {
		p.IsAdmin = *update.IsAdmin
	}
	s.profiles[id] = p
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context, params domain.ListParams) ([]domain.Profile, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListProfiles"); err != nil {
		return nil, 0, err
	}
	matched := []domain.Profile{}
	for _, p := range s.profiles {
		if !containsFold(params.Search, p.Email, p.DisplayName) {
			continue
		}
		if params.Admin != nil && p.IsAdmin != *params.Admin {
			continue
		}
		matched = append(matched, p)
	}
	sortBy(matched, params.Desc, func(a, b domain.Profile) int {
		switch params.Sort {
		case "email":
			return strings.Compare(a.Email, b.Email)
		case "display_name":
			return strings.Compare(a.DisplayName, b.DisplayName)
		}
		return 0
	}, func(p domain.Profile) time.Time { return p.CreatedAt })
	return paginate(matched, params), len(matched), nil
}

// TouchLastSignIn stamps both the auth user and its profile.
func (s *Store) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "TouchLastSignIn"); err != nil {
		return err
	}
	if u, ok := s.users[id]; ok {
		u.LastSignInAt = &at
		s.users[id] = u
	}
	if p, ok := s.profiles[id]; ok {
		p.LastSignInAt = &at
		s.profiles[id] = p
	}
	return nil
}

// Auth

func (s *Store) CreateUser(ctx context.Context, user *domain.AuthUser) (*domain.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateUser"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.Conflict("user with email %s", user.Email)
		}
	}
	u := *user
	u.ID = uuid.New()
	u.CreatedAt = s.tick()
	s.users[u.ID] = u
	*user = u
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user", email)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetUserByID"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

// DeleteUser cascades to the profile, sessions and cart of the user.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteUser"); err != nil {
		return err
	}
	if _, ok := s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	delete(s.users, id)
	delete(s.profiles, id)
	for sid, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, sid)
		}
	}
	for cid, item := range s.cart {
		if item.UserID == id {
			delete(s.cart, cid)
		}
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateSession"); err != nil {
		return nil, err
	}
	if _, ok := s.users[session.UserID]; !ok {
		return nil, domain.NotFound("user", session.UserID)
	}
	sess := *session
	sess.ID = uuid.New()
	sess.CreatedAt = s.tick()
	s.sessions[sess.ID] = sess
	*session = sess
	return &sess, nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetSession"); err != nil {
		return nil, err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.NotFound("session", id)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteSession"); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// MustProduct seeds a product with the given price and stock and returns it.
func (s *Store) MustProduct(name, price string, stock int) domain.Product {
	p, err := s.CreateProduct(context.Background(), &domain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	if err != nil {
		panic(err)
	}
	return *p
}
