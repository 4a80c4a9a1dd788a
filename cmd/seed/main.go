package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Oyshik-ICT/ecommerce-backend/config"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/app/model"
	"github.com/Oyshik-ICT/ecommerce-backend/internal/db"
)

// Imports a product catalog from an XLSX sheet with the columns:
// name | description | price | stock | category
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(database, filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d (skipped %d rows)\n", len(products), skipped)
	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := database.CreateInBatches(products, batchSize).Error; err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(database *gorm.DB, filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}
	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	categoryIDs, err := loadCategoryIDs(database)
	if err != nil {
		return nil, 0, err
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 5 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		stockStr := strings.TrimSpace(row[3])
		categoryType := strings.TrimSpace(row[4])

		if name == "" || priceStr == "" || categoryType == "" {
			skipped++
			continue
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil || price.IsNegative() {
			skipped++
			continue
		}

		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			skipped++
			continue
		}

		categoryID, err := resolveCategory(database, categoryIDs, categoryType)
		if err != nil {
			return nil, 0, err
		}

		key := fmt.Sprintf("%s|%s", name, categoryType)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		products = append(products, model.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
			CategoryID:  categoryID,
		})
	}

	return products, skipped, nil
}

func loadCategoryIDs(database *gorm.DB) (map[string]uint, error) {
	var categories []model.Category
	if err := database.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	ids := make(map[string]uint, len(categories))
	for _, category := range categories {
		ids[category.Type] = category.ID
	}
	return ids, nil
}

// resolveCategory returns the id for a category type, creating the
// category if the sheet introduces a new one.
func resolveCategory(database *gorm.DB, ids map[string]uint, categoryType string) (uint, error) {
	if id, ok := ids[categoryType]; ok {
		return id, nil
	}
	category := model.Category{Type: categoryType}
	if err := database.Create(&category).Error; err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", categoryType, err)
	}
	ids[categoryType] = category.ID
	fmt.Printf("Created category: %s\n", categoryType)
	return category.ID, nil
}
