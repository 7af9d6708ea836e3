package listings

import "time"

// Host is the owning account behind a listing, as much of it as
// notifications need.
type Host struct {
	ID    string
	Name  string
	Email string
}

type HostAccount struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (HostAccount) TableName() string { return "host_accounts" }

type Property struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	HostID    string    `gorm:"type:char(36);not null;index:ix_properties_host_id"`
	Title     string    `gorm:"type:varchar(255);not null"`
	City      string    `gorm:"type:varchar(128)"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Property) TableName() string { return "properties" }

type Tour struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	HostID    string    `gorm:"type:char(36);not null;index:ix_tours_host_id"`
	Title     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Tour) TableName() string { return "tours" }

type Transport struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	HostID    string    `gorm:"type:char(36);not null;index:ix_transports_host_id"`
	Title     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Transport) TableName() string { return "transports" }
