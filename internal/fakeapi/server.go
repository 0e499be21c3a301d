// Package fakeapi is an in-memory storefront backend speaking the same REST
// dialect as the real one. It issues HS256 tokens, keeps per-user carts and
// orders, and can be told to fail the next call of a given operation.
package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Operation names accepted by FailNext and Calls.
const (
	OpLogin       = "login"
	OpRegister    = "register"
	OpListCart    = "list_cart"
	OpAddCart     = "add_cart"
	OpUpdateCart  = "update_cart"
	OpRemoveCart  = "remove_cart"
	OpCheckout    = "checkout"
	OpListOrders  = "list_orders"
	OpCancelOrder = "cancel_order"
	OpDeleteOrder = "delete_order"

	OpListProducts   = "list_products"
	OpGetProduct     = "get_product"
	OpListCategories = "list_categories"
)

// Category groups products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Stock    int       `json:"stock,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// User is a registered account.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

type cartLine struct {
	ID       string   `json:"id"`
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

type orderItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type orderRecord struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	Items       []orderItem `json:"items"`
}

type failure struct {
	status  int
	message string
}

// Server is safe for concurrent use.
type Server struct {
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	products map[string]Product
	catalog  []string // product ids in insertion order
	users    map[string]*User // by email
	carts    map[string][]*cartLine
	orders   map[string][]*orderRecord
	revoked  map[string]bool // by user id
	failures map[string][]failure
	calls    map[string]int
	// LoginShape selects how /login answers: "object" for {token, role}, anything
	// else for the bare token text.
	loginShape string

	mux *http.ServeMux
}

// New returns a Server signing tokens with secret and seeded with products.
func New(secret []byte, products ...Product) *Server {
	s := &Server{
		secret:   secret,
		now:      time.Now,
		products: make(map[string]Product, len(products)),
		users:    map[string]*User{},
		carts:    map[string][]*cartLine{},
		orders:   map[string][]*orderRecord{},
		revoked:  map[string]bool{},
		failures: map[string][]failure{},
		calls:    map[string]int{},
	}
	for _, p := range products {
		s.addProductLocked(p)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("POST /api/register", s.register)
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("GET /api/products/{id}", s.getProduct)
	mux.HandleFunc("GET /api/categories", s.listCategories)
	mux.HandleFunc("GET /api/cart", s.authed(OpListCart, s.listCart))
	mux.HandleFunc("POST /api/addCart", s.authed(OpAddCart, s.addCart))
	mux.HandleFunc("PUT /api/cart/{id}", s.authed(OpUpdateCart, s.updateCart))
	mux.HandleFunc("DELETE /api/cart/{id}", s.authed(OpRemoveCart, s.removeCart))
	mux.HandleFunc("POST /api/checkout", s.authed(OpCheckout, s.checkout))
	mux.HandleFunc("GET /api/user/{userId}", s.authed(OpListOrders, s.listOrders))
	mux.HandleFunc("PUT /api/orders/cancel-order", s.authed(OpCancelOrder, s.setOrderStatus("CANCELED")))
	mux.HandleFunc("PUT /api/orders/delete-order", s.authed(OpDeleteOrder, s.setOrderStatus("DELETED")))
	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AddProduct adds or replaces a catalog entry.
func (s *Server) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addProductLocked(p)
}

func (s *Server) addProductLocked(p Product) {
	if _, ok := s.products[p.ID]; !ok {
		s.catalog = append(s.catalog, p.ID)
	}
	s.products[p.ID] = p
}

// AddUser registers an account directly and returns it with its generated id.
func (s *Server) AddUser(name, email, password, role string) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addUserLocked(name, email, password, role)
}

func (s *Server) addUserLocked(name, email, password, role string) *User {
	if role == "" {
		role = "USER"
	}
	u := &User{ID: uuid.NewString(), Name: name, Email: email, Password: password, Role: role}
	s.users[strings.ToLower(email)] = u
	return u
}

// IssueToken signs a token for u the way the backend does.
func (s *Server) IssueToken(u User) string {
	claims := jwt.MapClaims{
		"sub":      u.Email,
		"userId":   u.ID,
		"fullName": u.Name,
		"email":    u.Email,
		"roles":    u.Role,
		"iat":      s.now().Unix(),
		"exp":      s.now().Add(24 * time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

// Revoke makes every later request by userID fail with 401.
func (s *Server) Revoke(userID string) {
	s.mu.Lock()
	s.revoked[userID] = true
	s.mu.Unlock()
}

// FailNext makes the next call of op answer status with message as a plain body.
func (s *Server) FailNext(op string, status int, message string) {
	s.mu.Lock()
	s.failures[op] = append(s.failures[op], failure{status: status, message: message})
	s.mu.Unlock()
}

// LoginAnswersObject switches /login to answer {"token", "role"}.
func (s *Server) LoginAnswersObject(on bool) {
	s.mu.Lock()
	if on {
		s.loginShape = "object"
	} else {
		s.loginShape = ""
	}
	s.mu.Unlock()
}

// Calls reports how many requests for op reached the server.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// CartQuantity returns the server-side quantity of productID for userID.
func (s *Server) CartQuantity(userID, productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.carts[userID] {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// SeedOrder stores an order for userID and returns its id.
func (s *Server) SeedOrder(userID, status string, total float64, createdAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &orderRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		TotalAmount: total,
		Status:      status,
		CreatedAt:   createdAt.UTC().Format("2006-01-02T15:04:05"),
	}
	s.orders[userID] = append(s.orders[userID], o)
	return o.ID
}

// OrderStatus returns the status of orderID, or "" when unknown.
func (s *Server) OrderStatus(orderID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o := s.findOrderLocked(orderID); o != nil {
		return o.Status
	}
	return ""
}

// takeFailure records the call and pops a pending failure for op.
func (s *Server) takeFailure(op string) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	q := s.failures[op]
	if len(q) == 0 {
		return failure{}, false
	}
	s.failures[op] = q[1:]
	return q[0], true
}

func (s *Server) authed(op string, next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f, ok := s.takeFailure(op); ok {
			http.Error(w, f.message, f.status)
			return
		}
		userID, err := s.authenticate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.New("invalid token")
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", errors.New("token has no user")
	}

	s.mu.Lock()
	revoked := s.revoked[userID]
	s.mu.Unlock()
	if revoked {
		return "", errors.New("token revoked")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
