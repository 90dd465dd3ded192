package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
}

type Product struct {
	ID              uuid.UUID
	CategoryID      pgtype.UUID
	Name            string
	Description     pgtype.Text
	Price           pgtype.Numeric
	IsAvailable     bool
	PreparationTime pgtype.Int4
	CreatedAt       time.Time
}

type Menu struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	IsAvailable bool
	CreatedAt   time.Time
}

type MenuProduct struct {
	ID        uuid.UUID
	MenuID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type RestaurantTable struct {
	ID          uuid.UUID
	TableNumber int32
	Capacity    int32
	Status      string
	CreatedAt   time.Time
}

type Customer struct {
	ID            uuid.UUID
	FirstName     string
	LastName      string
	Email         pgtype.Text
	Phone         pgtype.Text
	LoyaltyPoints int32
	CreatedAt     time.Time
}

type Staff struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
	HireDate  pgtype.Date
	CreatedAt time.Time
}

type Order struct {
	ID          uuid.UUID
	OrderNumber string
	TableID     pgtype.UUID
	CustomerID  pgtype.UUID
	StaffID     pgtype.UUID
	Status      string
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
	CreatedAt   time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	Notes     pgtype.Text
}

type Stock struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	QuantityAvailable int32
	MinimumThreshold  int32
	LastRestocked     pgtype.Timestamptz
	UpdatedAt         time.Time
}

type StockMovement struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	MovementType     string
	Quantity         int32
	PreviousQuantity int32
	NewQuantity      int32
	Notes            pgtype.Text
	CreatedAt        time.Time
}

type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	LastLogin      pgtype.Timestamptz
	CreatedAt      time.Time
}

type RestaurantSetting struct {
	ID             uuid.UUID
	RestaurantName string
	Currency       string
	CurrencySymbol string
	Address        pgtype.Text
	Phone          pgtype.Text
	Email          pgtype.Text
	UpdatedAt      time.Time
}
