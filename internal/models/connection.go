package models

import "time"

// ConnectionState is the lifecycle state of one match attempt.
type ConnectionState string

const (
	ConnectionWaiting   ConnectionState = "WAITING"
	ConnectionConnected ConnectionState = "CONNECTED"
	ConnectionCanceled  ConnectionState = "CANCELED"
	ConnectionDeclined  ConnectionState = "DECLINED"
	ConnectionClosed    ConnectionState = "CLOSED"
	ConnectionUndefined ConnectionState = "UNDEFINED"
)

// ConnectionStates lists every defined lifecycle state.
var ConnectionStates = []ConnectionState{
	ConnectionWaiting,
	ConnectionConnected,
	ConnectionCanceled,
	ConnectionDeclined,
	ConnectionClosed,
	ConnectionUndefined,
}

// Connection is one directional match attempt (user → partner). The pair of
// canonical identity keys is unique, so a repeated attempt between the same
// two users updates the existing row instead of duplicating it.
type Connection struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserRef    string          `gorm:"not null;uniqueIndex:idx_connection_pair,priority:1" json:"user_ref"`
	PartnerRef string          `gorm:"not null;uniqueIndex:idx_connection_pair,priority:2" json:"partner_ref"`
	State      ConnectionState `gorm:"column:connection_state;type:text;not null" json:"connection_state"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Timelog *ConnectionTimelog `gorm:"foreignKey:ConnectionID" json:"timelog,omitempty"`
}

// ConnectionTimelog holds the lifecycle timestamps of a connection, 1:1 by
// connection ID. Each field is set at most once; a timestamp already present
// is never overwritten.
type ConnectionTimelog struct {
	ConnectionID  uint       `gorm:"primaryKey" json:"connection_id"`
	TimeRequested *time.Time `json:"time_requested,omitempty"`
	TimeConnected *time.Time `json:"time_connected,omitempty"`
	TimeCanceled  *time.Time `json:"time_canceled,omitempty"`
	TimeDeclined  *time.Time `json:"time_declined,omitempty"`
	TimeClosed    *time.Time `json:"time_closed,omitempty"`
}
