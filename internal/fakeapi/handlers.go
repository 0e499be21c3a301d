package fakeapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if f, ok := s.takeFailure(OpLogin); ok {
		http.Error(w, f.message, f.status)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	var user User
	if ok {
		user = *u
	}
	shape := s.loginShape
	s.mu.Unlock()

	if !ok || user.Password != req.Password {
		http.Error(w, "wrong email or password", http.StatusUnauthorized)
		return
	}

	token := s.IssueToken(user)
	if shape == "object" {
		writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": user.Role})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(token))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if f, ok := s.takeFailure(OpRegister); ok {
		http.Error(w, f.message, f.status)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
		return
	}
	u := s.addUserLocked(req.Name, req.Email, req.Password, "USER")
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "email": u.Email})
}

func (s *Server) listCart(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	lines := make([]cartLine, 0, len(s.carts[userID]))
	for _, l := range s.carts[userID] {
		lines = append(lines, *l)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) addCart(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" || req.Quantity == nil {
		http.Error(w, "productId and quantity are required", http.StatusBadRequest)
		return
	}
	if *req.Quantity <= 0 {
		http.Error(w, "quantity must be greater than 0", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		http.Error(w, "product not found", http.StatusBadRequest)
		return
	}
	for _, l := range s.carts[userID] {
		if l.Product.ID == p.ID {
			l.Quantity += *req.Quantity
			writeJSON(w, http.StatusCreated, l)
			return
		}
	}
	line := &cartLine{ID: uuid.NewString(), Product: &p, Quantity: *req.Quantity}
	s.carts[userID] = append(s.carts[userID], line)
	writeJSON(w, http.StatusCreated, line)
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.carts[userID] {
		if l.ID == id {
			l.Quantity = req.Quantity
			writeJSON(w, http.StatusOK, l)
			return
		}
	}
	http.Error(w, "cart line not found", http.StatusNotFound)
}

func (s *Server) removeCart(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for i, l := range lines {
		if l.ID == id {
			s.carts[userID] = append(lines[:i:i], lines[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "cart line not found", http.StatusNotFound)
}

func (s *Server) checkout(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	if len(lines) == 0 {
		http.Error(w, "cart is empty", http.StatusBadRequest)
		return
	}

	o := &orderRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    "PENDING",
		CreatedAt: s.now().UTC().Format("2006-01-02T15:04:05"),
	}
	for _, l := range lines {
		sub := l.Product.Price * float64(l.Quantity)
		o.Items = append(o.Items, orderItem{
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
			Subtotal:    sub,
		})
		o.TotalAmount += sub
	}
	o.TotalAmount = math.Round(o.TotalAmount*100) / 100
	s.orders[userID] = append(s.orders[userID], o)
	delete(s.carts, userID)
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request, userID string) {
	target := r.PathValue("userId")
	if _, err := uuid.Parse(target); err != nil {
		http.Error(w, "Invalid userId format", http.StatusBadRequest)
		return
	}
	if target != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	out := make([]orderRecord, 0, len(s.orders[userID]))
	for _, o := range s.orders[userID] {
		out = append(out, *o)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) setOrderStatus(status string) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		orderID := r.URL.Query().Get("orderId")

		s.mu.Lock()
		defer s.mu.Unlock()
		o := s.findOrderLocked(orderID)
		if o == nil || o.UserID != userID {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		if status == "CANCELED" && o.Status != "PENDING" && o.Status != "CONFIRMED" {
			http.Error(w, "order can no longer be canceled", http.StatusBadRequest)
			return
		}
		o.Status = status
		writeJSON(w, http.StatusOK, "ok")
	}
}

func (s *Server) findOrderLocked(orderID string) *orderRecord {
	for _, list := range s.orders {
		for _, o := range list {
			if o.ID == orderID {
				return o
			}
		}
	}
	return nil
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	if f, ok := s.takeFailure(OpListProducts); ok {
		http.Error(w, f.message, f.status)
		return
	}
	s.mu.Lock()
	out := make([]Product, 0, len(s.catalog))
	for _, id := range s.catalog {
		out = append(out, s.products[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	if f, ok := s.takeFailure(OpGetProduct); ok {
		http.Error(w, f.message, f.status)
		return
	}
	s.mu.Lock()
	p, ok := s.products[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	if f, ok := s.takeFailure(OpListCategories); ok {
		http.Error(w, f.message, f.status)
		return
	}
	s.mu.Lock()
	out := []Category{}
	seen := map[string]bool{}
	for _, id := range s.catalog {
		c := s.products[id].Category
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, *c)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}
