package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"wealth-server/src/categories"
	"wealth-server/src/models"
)

const receiptPrompt = `You are an expert receipt parser. Analyze this receipt image carefully and extract ALL the following information:

IMPORTANT: Look at the actual receipt in the image. Extract REAL data, not placeholder text.

Return ONLY a valid JSON object with these exact fields:
{
  "amount": <the total amount as a number, e.g. 123.45, or null if not visible>,
  "merchantName": "<name of the store/restaurant/business>",
  "description": "<list of main items purchased, separated by comma>",
  "category": "<category: choose from Grocery, Food, Restaurant, Transport, Fuel, Shopping, Bills, Health, Entertainment, Other>",
  "date": "<date in YYYY-MM-DD format if visible, otherwise null>"
}

RULES:
1. amount: Extract the TOTAL/GRAND TOTAL value as a number only (no currency symbol)
2. merchantName: The business/store name (NOT generic text like "Receipt" or "Invoice")
3. description: What was purchased (items, products, services)
4. category: Pick the MOST APPROPRIATE category based on merchant and items
5. date: Extract the date if visible, format as YYYY-MM-DD
6. Return ONLY the JSON object, no markdown, no code blocks, no extra text

If any field is not visible or unclear, set to null.
Be accurate and extract real values from the receipt image.`

const (
	ReceiptUnparseable = "Could not parse receipt. Please ensure the image is clear and contains a valid receipt."
	ReceiptUnreadable  = "Receipt image not readable. Please try with better lighting or a clearer image."
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// receiptAmount accepts a JSON number or a numeric string.
type receiptAmount struct {
	value *decimal.Decimal
}

func (a *receiptAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimLeft(strings.TrimSpace(s), "$")
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("amount %q is not numeric: %w", s, err)
	}
	a.value = &d
	return nil
}

type rawReceipt struct {
	Amount       receiptAmount `json:"amount"`
	MerchantName *string       `json:"merchantName"`
	Description  *string       `json:"description"`
	Category     *string       `json:"category"`
	Date         *string       `json:"date"`
}

func emptyReceipt(description string) *models.ParsedReceipt {
	return &models.ParsedReceipt{Description: &description}
}

// ParseReceiptText turns raw model output into a receipt. Output that is not usable yields a
// null-filled receipt whose description explains why; it never fails.
func ParseReceiptText(text string, catalog *categories.Catalog) *models.ParsedReceipt {
	cleaned := stripFences(text)
	if m := jsonObject.FindString(cleaned); m != "" {
		cleaned = m
	}

	var raw rawReceipt
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		log.Printf("WARN: Receipt output is not JSON: %v", err)
		return emptyReceipt(ReceiptUnparseable)
	}

	merchant := ""
	if raw.MerchantName != nil {
		merchant = *raw.MerchantName
	}
	noAmount := raw.Amount.value == nil || raw.Amount.value.IsZero()
	if merchant == "Receipt parsed" || merchant == "Unknown merchant" || (noAmount && merchant == "") {
		log.Printf("WARN: Receipt output looks like placeholder data")
		return emptyReceipt(ReceiptUnreadable)
	}

	receipt := &models.ParsedReceipt{
		Amount:       raw.Amount.value,
		MerchantName: raw.MerchantName,
		Description:  raw.Description,
		Category:     raw.Category,
		Date:         raw.Date,
	}
	if catalog != nil {
		hint := merchant
		if raw.Category != nil && *raw.Category != "" {
			hint = *raw.Category
		}
		receipt.CategoryID = catalog.Match(hint, models.TransactionTypeExpense)
	}
	return receipt
}

// ParseReceipt sends the receipt image to the model. Only a failed model call is an error.
func ParseReceipt(ctx context.Context, m Model, image Image, catalog *categories.Catalog) (*models.ParsedReceipt, error) {
	text, err := m.Generate(ctx, receiptPrompt, image)
	if err != nil {
		return nil, err
	}
	return ParseReceiptText(text, catalog), nil
}
