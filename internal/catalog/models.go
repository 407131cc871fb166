package catalog

import "time"

type Supplier struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

type Product struct {
	ID          string     `json:"id"`
	SupplierID  string     `json:"supplierId"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	PriceCents  int64      `json:"price"`
	Stock       int        `json:"stock"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
	Supplier    struct {
		Name string `json:"name"`
	} `json:"supplier"`
}

// ProductInput creates a product. Image is a stored file name; uploads happen elsewhere.
type ProductInput struct {
	SupplierID  string `json:"supplierId" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Description string `json:"description" validate:"max=1000"`
	Image       string `json:"image" validate:"max=255"`
	PriceCents  int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// ProductPatch updates a product; nil fields keep their stored value.
type ProductPatch struct {
	SupplierID  *string `json:"supplierId" validate:"omitempty,uuid"`
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
	PriceCents  *int64  `json:"price" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
}

func (p ProductPatch) apply(dst *Product) {
	set(&dst.SupplierID, p.SupplierID)
	set(&dst.Name, p.Name)
	set(&dst.Category, p.Category)
	set(&dst.Description, p.Description)
	set(&dst.Image, p.Image)
	set(&dst.PriceCents, p.PriceCents)
	set(&dst.Stock, p.Stock)
}

type SupplierInput struct {
	Name    string `json:"name" validate:"required,min=3,max=100"`
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"max=255"`
}

type SupplierPatch struct {
	Name    *string `json:"name" validate:"omitempty,min=3,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,min=6,max=20"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

func (p SupplierPatch) apply(dst *Supplier) {
	set(&dst.Name, p.Name)
	set(&dst.Phone, p.Phone)
	set(&dst.Email, p.Email)
	set(&dst.Address, p.Address)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
