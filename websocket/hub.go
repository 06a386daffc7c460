package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to connected clients
const (
	NotificationTypeWithdrawalRequest  = "withdrawal_request"
	NotificationTypeWithdrawalDecision = "withdrawal_decision"
	NotificationTypeCommissionEarned   = "commission_earned"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID  primitive.ObjectID
	IsAdmin bool
	Conn    *websocket.Conn
}

// Hub maintains the set of active clients and routes notifications
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	admins     map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		admins:     make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			}
			if client.IsAdmin {
				h.admins[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.UserID != primitive.NilObjectID {
				if existing, ok := h.clients[client.UserID]; ok && existing == client {
					delete(h.clients, client.UserID)
				}
			}
			delete(h.admins, client)
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a notification to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// BroadcastToAdmins sends a notification to every connected admin
func (h *Hub) BroadcastToAdmins(notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.admins {
		client.Conn.WriteJSON(notification)
	}
}

// NotifyWithdrawalRequest tells admins a new withdrawal needs a decision
func (h *Hub) NotifyWithdrawalRequest(withdrawalData interface{}) {
	h.BroadcastToAdmins(Notification{
		Type:    NotificationTypeWithdrawalRequest,
		Message: "New withdrawal request received",
		Data:    withdrawalData,
	})
}

// NotifyWithdrawalDecision tells a user their withdrawal was decided
func (h *Hub) NotifyWithdrawalDecision(userID primitive.ObjectID, withdrawalData interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    NotificationTypeWithdrawalDecision,
		Message: "Your withdrawal request has been processed",
		Data:    withdrawalData,
	})
}

// NotifyCommissionEarned tells a user a purchase credited them
func (h *Hub) NotifyCommissionEarned(userID primitive.ObjectID, commissionData interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    NotificationTypeCommissionEarned,
		Message: "You earned a new commission",
		Data:    commissionData,
	})
}
