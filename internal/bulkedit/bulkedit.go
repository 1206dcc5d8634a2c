// Package bulkedit models one bulk price edit session: which products are
// selected, what the merchant typed into each variant's price field, and
// whether the accumulated edits are submittable. State lives only for the
// lifetime of the edit surface; opening a new session starts empty.
package bulkedit

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/fumiyashop/priceapi/internal/domain"
)

// pricePattern: one or more digits, optionally a decimal point and up to two digits.
var pricePattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

var maxPrice = decimal.RequireFromString("999999.99")

const (
	msgInvalidFormat = "price must be a number with at most two decimal places"
	msgOutOfRange    = "price must be between 0 and 999999.99"
)

// ValidatePrice classifies a raw price input. It returns "" for a valid value
// and an error message otherwise. The empty string is valid-neutral: it means
// "not yet edited" and falls back to the variant's existing price on submit.
func ValidatePrice(raw string) string {
	if raw == "" {
		return ""
	}
	if !pricePattern.MatchString(raw) {
		return msgInvalidFormat
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return msgInvalidFormat
	}
	if v.IsNegative() || v.GreaterThan(maxPrice) {
		return msgOutOfRange
	}
	return ""
}

// Session is one open bulk-edit surface. Not safe for concurrent use; the
// surface it models is single-threaded by construction.
type Session struct {
	products []domain.Product
	selected map[string]bool   // productID -> selected
	edits    map[string]string // variantID -> raw input, superseded by later edits
	errs     map[string]string // variantID -> validation message, "" when valid
}

// Open starts a fresh session over the given product list. Selection and
// edits always start empty; nothing survives from a previous session.
func Open(products []domain.Product) *Session {
	return &Session{
		products: products,
		selected: make(map[string]bool),
		edits:    make(map[string]string),
		errs:     make(map[string]string),
	}
}

// Toggle flips a product's selection and returns the new state. Selecting a
// product does not create a default edit for its variants.
func (s *Session) Toggle(productID string) bool {
	if s.selected[productID] {
		delete(s.selected, productID)
		return false
	}
	s.selected[productID] = true
	return true
}

// Selected reports whether a product is currently selected.
func (s *Session) Selected(productID string) bool {
	return s.selected[productID]
}

// SelectedCount returns the number of selected products.
func (s *Session) SelectedCount() int {
	return len(s.selected)
}

// SetPrice records a keystroke into a variant's price field and recomputes
// validity for that variant only.
func (s *Session) SetPrice(variantID, raw string) {
	s.edits[variantID] = raw
	s.errs[variantID] = ValidatePrice(raw)
}

// ValidationError returns the current validation message for a variant, or
// "" when the field is valid (or untouched).
func (s *Session) ValidationError(variantID string) string {
	return s.errs[variantID]
}

// CanSubmit reports whether the submit action is enabled: at least one
// product selected and every variant of every selected product valid. Edits
// to unselected products do not block submission.
func (s *Session) CanSubmit() bool {
	if len(s.selected) == 0 {
		return false
	}
	for _, p := range s.products {
		if !s.selected[p.ID] {
			continue
		}
		for _, v := range p.Variants {
			if s.errs[v.ID] != "" {
				return false
			}
		}
	}
	return true
}

// Updates builds the batch payload: every variant of every selected product,
// carrying the edited price when one was typed and the variant's current
// price otherwise. Variants of unselected products are never included, and an
// invalid edit also falls back to the current price so the payload only ever
// carries valid monetary strings.
func (s *Session) Updates() []domain.PriceUpdate {
	updates := make([]domain.PriceUpdate, 0)
	for _, p := range s.products {
		if !s.selected[p.ID] {
			continue
		}
		for _, v := range p.Variants {
			price := v.Price
			if raw, ok := s.edits[v.ID]; ok && raw != "" && s.errs[v.ID] == "" {
				price = raw
			}
			updates = append(updates, domain.PriceUpdate{
				ProductID: p.ID,
				VariantID: v.ID,
				Price:     price,
			})
		}
	}
	return updates
}

// Close discards all selection and edit state. A closed session behaves like
// a freshly opened one.
func (s *Session) Close() {
	s.selected = make(map[string]bool)
	s.edits = make(map[string]string)
	s.errs = make(map[string]string)
}
