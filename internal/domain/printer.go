package domain

import "time"

type PrinterRole string

const (
	PrinterRoleKOT     PrinterRole = "kot"
	PrinterRoleBOT     PrinterRole = "bot"
	PrinterRoleBilling PrinterRole = "billing"
)

// RoleForKind returns the printer role that serves a ticket kind.
func RoleForKind(kind TicketKind) PrinterRole {
	if kind == TicketKindBar {
		return PrinterRoleBOT
	}
	return PrinterRoleKOT
}

type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// PrinterConfig is one networked thermal printer for a (branch, role) pair.
// Connection settings are owned by configuration management; this subsystem
// only writes the status fields after dispatch attempts.
type PrinterConfig struct {
	ID       string
	BranchID string
	Role     PrinterRole
	Name     string

	Host string
	Port int

	Enabled   bool
	AutoPrint bool

	ConnectionTimeout time.Duration
	RetryAttempts     int
	PaperWidth        int

	ConnectionStatus ConnectionStatus
	ErrorMessage     string
	UpdatedAt        time.Time
}
