package domain

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a request from one attendee to another.
type Connection struct {
	ID         string           `json:"id"`
	SenderID   string           `json:"sender_id"`
	ReceiverID string           `json:"receiver_id"`
	Status     ConnectionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Involves reports whether userID is either side of the connection.
func (c *Connection) Involves(userID string) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

type ConnectionRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
}

// ConnectionList groups a user's connections the way the connections page shows them.
type ConnectionList struct {
	Incoming []Connection `json:"incoming"`
	Outgoing []Connection `json:"outgoing"`
	Accepted []Connection `json:"accepted"`
}
