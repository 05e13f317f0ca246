package auth

// Role names carried in the token's "role" claim.
const (
	RolePassenger  = "passenger"
	RoleAgent      = "agent"
	RoleDispatcher = "dispatcher"
	RoleAdmin      = "admin"
)

// Capability names checked at the route level.
type Capability string

const (
	CapHoldWrite       Capability = "hold:write"
	CapTicketSell      Capability = "ticket:sell"
	CapTicketCancel    Capability = "ticket:cancel"
	CapBoarding        Capability = "boarding:mark"
	CapOverbookRequest Capability = "overbook:request"
	CapOverbookApprove Capability = "overbook:approve"
	CapTripManage      Capability = "trip:manage"
	CapSettingsManage  Capability = "settings:manage"
	CapInventoryRead   Capability = "inventory:read"
)

var roleCapabilities = map[string]map[Capability]bool{
	RolePassenger: {
		CapHoldWrite:     true,
		CapTicketCancel:  true,
		CapInventoryRead: true,
	},
	RoleAgent: {
		CapHoldWrite:       true,
		CapTicketSell:      true,
		CapTicketCancel:    true,
		CapBoarding:        true,
		CapOverbookRequest: true,
		CapInventoryRead:   true,
	},
	RoleDispatcher: {
		CapHoldWrite:       true,
		CapTicketSell:      true,
		CapTicketCancel:    true,
		CapBoarding:        true,
		CapOverbookRequest: true,
		CapOverbookApprove: true,
		CapTripManage:      true,
		CapInventoryRead:   true,
	},
	RoleAdmin: {
		CapHoldWrite:       true,
		CapTicketSell:      true,
		CapTicketCancel:    true,
		CapBoarding:        true,
		CapOverbookRequest: true,
		CapOverbookApprove: true,
		CapTripManage:      true,
		CapSettingsManage:  true,
		CapInventoryRead:   true,
	},
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role string, cap Capability) bool {
	return roleCapabilities[role][cap]
}
