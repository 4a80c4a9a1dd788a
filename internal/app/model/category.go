package model

// Category types seeded at migration time.
const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
)

type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Type string `gorm:"type:varchar(20);uniqueIndex;not null" json:"type"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
