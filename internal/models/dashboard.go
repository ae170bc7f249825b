package models

// HostDashboard summarizes a host's events and escrow exposure.
type HostDashboard struct {
	EventsByStatus map[string]int64 `json:"events_by_status"`
	EscrowFunded   int64            `json:"escrow_funded"`
	EscrowReleased int64            `json:"escrow_released"`
	EscrowRefunded int64            `json:"escrow_refunded"`
	OpenDisputes   int64            `json:"open_disputes"`
	WalletBalance  int64            `json:"wallet_balance"`
}

type OrganizerDashboard struct {
	Pools         int64  `json:"pools"`
	AcceptedGigs  int64  `json:"accepted_gigs"`
	Earnings      int64  `json:"earnings"`
	WalletBalance int64  `json:"wallet_balance"`
	KYCStatus     string `json:"kyc_status"`
}

type GigDashboard struct {
	InvitationsByStatus map[string]int64 `json:"invitations_by_status"`
	Earnings            int64            `json:"earnings"`
	WalletBalance       int64            `json:"wallet_balance"`
	KYCStatus           string           `json:"kyc_status"`
}

type AdminDashboard struct {
	UsersByRole          map[string]int64 `json:"users_by_role"`
	PendingKYC           int64            `json:"pending_kyc"`
	OpenDisputes         int64            `json:"open_disputes"`
	RequestedWithdrawals int64            `json:"requested_withdrawals"`
	EscrowVolume         int64            `json:"escrow_volume"`
}

// StatusCount is a GROUP BY status row.
type StatusCount struct {
	Status string
	Count  int64
}
