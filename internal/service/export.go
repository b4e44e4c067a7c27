package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
)

const ExportVersion = "1.0.0"

type Export struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
	Orders     []models.Order    `json:"orders"`
	Users      []models.User     `json:"users"`
	Settings   []models.Setting  `json:"settings"`
	ExportDate time.Time         `json:"exportDate"`
	Version    string            `json:"version"`
}

func (e *Export) Filename(ext string) string {
	return fmt.Sprintf("markethub-data-%s.%s", e.ExportDate.Format("2006-01-02"), ext)
}

type ExportService struct {
	Store repo.Store
	Now   func() time.Time
}

func NewExportService(store repo.Store) *ExportService {
	return &ExportService{Store: store, Now: time.Now}
}

func (s *ExportService) Snapshot(ctx context.Context) (*Export, error) {
	products, err := s.Store.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	categories, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	orders, err := s.Store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	all, err := s.Store.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	return &Export{
		Products:   products,
		Categories: categories,
		Orders:     orders,
		Users:      users,
		Settings:   all,
		ExportDate: s.Now().UTC(),
		Version:    ExportVersion,
	}, nil
}

// WriteXLSX renders e as a workbook with one sheet per entity.
func WriteXLSX(w io.Writer, e *Export) error {
	file := xlsx.NewFile()

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{"Products", []string{"ID", "Name", "SKU", "Price", "OriginalPrice", "CategoryID", "Stock", "Rating", "NumReviews", "Featured", "OnSale", "Visible", "Tags", "CreatedAt"}, productRows(e.Products)},
		{"Categories", []string{"ID", "Name", "Description"}, categoryRows(e.Categories)},
		{"Orders", []string{"ID", "UserID", "Status", "Total", "PaymentMethod", "PaymentStatus", "Items", "CreatedAt"}, orderRows(e.Orders)},
		{"Users", []string{"ID", "Username", "Email", "FirstName", "LastName", "Admin", "ReferralCode", "ReferredBy", "CreatedAt"}, userRows(e.Users)},
		{"Settings", []string{"Key", "Value", "Type"}, settingRows(e.Settings)},
	}

	for _, sh := range sheets {
		sheet, err := file.AddSheet(sh.name)
		if err != nil {
			return fmt.Errorf("add sheet %s: %w", sh.name, err)
		}
		header := sheet.AddRow()
		for _, h := range sh.headers {
			header.AddCell().SetString(h)
		}
		for _, values := range sh.rows {
			row := sheet.AddRow()
			for _, v := range values {
				setCell(row.AddCell(), v)
			}
		}
	}

	return file.Write(w)
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case string:
		c.SetString(x)
	case int:
		c.SetInt(x)
	case uint:
		c.SetInt(int(x))
	case float64:
		c.SetFloat(x)
	case bool:
		c.SetBool(x)
	case time.Time:
		c.SetString(x.UTC().Format("2006-01-02 15:04:05"))
	default:
		c.SetString(fmt.Sprint(x))
	}
}

func optUint(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func productRows(items []models.Product) [][]any {
	rows := make([][]any, 0, len(items))
	for _, p := range items {
		rows = append(rows, []any{
			p.ID, p.Name, p.SKU, p.Price, optFloat(p.OriginalPrice), optUint(p.CategoryID), p.Stock,
			p.Rating, p.NumReviews, p.IsFeatured, p.IsOnSale, p.IsVisible, strings.Join(p.Tags, ","), p.CreatedAt,
		})
	}
	return rows
}

func categoryRows(items []models.Category) [][]any {
	rows := make([][]any, 0, len(items))
	for _, c := range items {
		rows = append(rows, []any{c.ID, c.Name, optString(c.Description)})
	}
	return rows
}

func orderRows(items []models.Order) [][]any {
	rows := make([][]any, 0, len(items))
	for _, o := range items {
		rows = append(rows, []any{o.ID, o.UserID, o.Status, o.Total, o.PaymentMethod, o.PaymentStatus, len(o.Items), o.CreatedAt})
	}
	return rows
}

func userRows(items []models.User) [][]any {
	rows := make([][]any, 0, len(items))
	for _, u := range items {
		rows = append(rows, []any{u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.IsAdmin, u.ReferralCode, optUint(u.ReferredBy), u.CreatedAt})
	}
	return rows
}

func settingRows(items []models.Setting) [][]any {
	rows := make([][]any, 0, len(items))
	for _, s := range items {
		rows = append(rows, []any{s.Key, s.Value, s.Type})
	}
	return rows
}
