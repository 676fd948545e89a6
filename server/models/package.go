package models

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	RESIDENTIAL_PACKAGE = "residential"
	BUSINESS_PACKAGE    = "business"

	// Limit of 12 popular packages on the home page
	POPULAR_PACKAGES_LIMIT = 12

	// decimal(10,2)
	maxPriceCents = 9999999999
)

var ErrInvalidPrice = errors.New("price must be a decimal number with at most 10 digits")

type Package struct {
	BaseModel
	Name          string  `json:"name" gorm:"size:100;not null"`
	PackageType   string  `json:"package_type" gorm:"size:50;not null;index"`
	DownloadSpeed int     `json:"download_speed"`
	UploadSpeed   int     `json:"upload_speed"`
	PriceCents    int64   `json:"price_cents"`
	DataLimit     *string `json:"data_limit" gorm:"size:100"`
	Features      *string `json:"features" gorm:"type:text"`
	IsPopular     bool    `json:"is_popular" gorm:"index"`
}

// Price renders the package price with exactly two decimals.
func (pkg Package) Price() string {
	return big.NewRat(pkg.PriceCents, 100).FloatString(2)
}

func (pkg Package) FeaturesText() string {
	if pkg.Features == nil {
		return ""
	}
	return *pkg.Features
}

func (pkg Package) DataLimitText() string {
	if pkg.DataLimit == nil {
		return ""
	}
	return *pkg.DataLimit
}

// Update saves the editable fields of the package. The package type is fixed at creation
// and is never changed here.
func (pkg *Package) Update(data map[string]interface{}) error {
	delete(data, "package_type")

	res := db.Model(&Package{}).Where("id = ?", pkg.ID).
		Select("name", "download_speed", "upload_speed", "price_cents", "data_limit", "features", "is_popular").
		Updates(data)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ParsePrice converts a decimal string such as "49.99" into cents, rounding half away from zero.
func ParsePrice(value string) (int64, error) {
	rat, ok := new(big.Rat).SetString(strings.TrimSpace(value))
	if !ok {
		return 0, ErrInvalidPrice
	}

	cents, err := strconv.ParseInt(rat.Mul(rat, big.NewRat(100, 1)).FloatString(0), 10, 64)
	if err != nil || cents > maxPriceCents || cents < -maxPriceCents {
		return 0, ErrInvalidPrice
	}

	return cents, nil
}

func CreatePackage(pkg *Package) error {
	return db.Create(pkg).Error
}

func FindPackage(id interface{}) (*Package, error) {
	pkg := Package{}
	err := db.First(&pkg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

// DeletePackage removes the package and clears it from every profile that referenced it.
func DeletePackage(id interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&UserProfile{}).Where("package_id = ?", id).Update("package_id", nil).Error
		if err != nil {
			return err
		}

		return deleteByID(tx, &Package{}, id)
	})
}

func PopularPackages() ([]Package, error) {
	packages := []Package{}
	err := db.Where("is_popular = ?", true).Order("id").Limit(POPULAR_PACKAGES_LIMIT).Find(&packages).Error
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func PackagesByType(packageType string) ([]Package, error) {
	packages := []Package{}
	err := db.Where("package_type = ?", packageType).Order("id").Find(&packages).Error
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func AllPackages() ([]Package, error) {
	packages := []Package{}
	err := db.Order("id").Find(&packages).Error
	if err != nil {
		return nil, err
	}

	return packages, nil
}
