package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusCleaning  = "cleaning"
)

// ── Ledger entry kinds (CHECK constrained in DB) ──

const (
	MovementRestock    = "restock"
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
)

// ── Roles (CHECK constrained in DB) ──

const (
	StaffRoleGerant      = "gerant"
	StaffRoleSuperviseur = "superviseur"
	StaffRoleServeur     = "serveur"
	StaffRoleCuisinier   = "cuisinier"
)

const (
	UserRoleAdmin = "admin"
	UserRoleStaff = "staff"
)
