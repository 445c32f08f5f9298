package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var ErrEmptyShoppingCart = errors.New("shopping cart is empty")

const shoppingListSheet = "Shopping list"

type ShoppingListService interface {
	Lines(principal model.Principal) ([]model.ShoppingListLine, error)
	Render(principal model.Principal) (string, error)
	RenderXLSX(principal model.Principal) ([]byte, error)
}

type shoppingListService struct {
	cartRepo repository.ShoppingCartRepository
}

func NewShoppingListService(cartRepo repository.ShoppingCartRepository) ShoppingListService {
	return &shoppingListService{cartRepo: cartRepo}
}

// Lines aggregates the ingredients of every recipe in the user's cart.
// An empty cart is ErrEmptyShoppingCart.
func (s *shoppingListService) Lines(principal model.Principal) ([]model.ShoppingListLine, error) {
	if principal.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	count, err := s.cartRepo.CountByUser(principal.UserID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		logger.Info("Shopping list requested for empty cart", map[string]interface{}{
			"user_id": principal.UserID,
		})
		return nil, ErrEmptyShoppingCart
	}

	lines, err := s.cartRepo.AggregateIngredients(principal.UserID)
	if err != nil {
		logger.Error("Failed to aggregate shopping list", err, map[string]interface{}{
			"user_id": principal.UserID,
		})
		return nil, err
	}

	logger.Info("Shopping list aggregated", map[string]interface{}{
		"user_id": principal.UserID,
		"recipes": count,
		"lines":   len(lines),
	})
	return lines, nil
}

func (s *shoppingListService) Render(principal model.Principal) (string, error) {
	lines, err := s.Lines(principal)
	if err != nil {
		return "", err
	}
	return FormatShoppingList(lines), nil
}

func (s *shoppingListService) RenderXLSX(principal model.Principal) ([]byte, error) {
	lines, err := s.Lines(principal)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", shoppingListSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"№", "Ingredient", "Amount", "Unit"}
	if err := f.SetSheetRow(shoppingListSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{i + 1, capitalize(line.Name), line.Amount, line.MeasurementUnit}
		if err := f.SetSheetRow(shoppingListSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(shoppingListSheet, "B", "B", 32); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write shopping list workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatShoppingList renders one numbered line per ingredient:
// "1. Salt — 15, g"
func FormatShoppingList(lines []model.ShoppingListLine) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s — %d, %s", i+1, capitalize(line.Name), line.Amount, line.MeasurementUnit)
	}
	return b.String()
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
