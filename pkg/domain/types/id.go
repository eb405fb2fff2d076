package types

import (
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// TemplateID identifies a stored instruction template. IDs are assigned by
// the administrative process that creates templates; lower IDs are older.
type TemplateID int64

// String returns the decimal representation of the template ID
func (id TemplateID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTemplateID parses a string into a TemplateID
func ParseTemplateID(s string) (TemplateID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid template ID", goerr.V("id", s))
	}
	return TemplateID(n), nil
}

// CommodityID identifies a commodity in the reference data set
type CommodityID string

var commodityIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// Validate checks if the commodity ID is a lowercase slug
func (id CommodityID) Validate() error {
	if id == "" {
		return goerr.New("commodity ID is empty")
	}
	if !commodityIDPattern.MatchString(string(id)) {
		return goerr.New("commodity ID must be a lowercase slug", goerr.V("id", string(id)))
	}
	return nil
}

// String returns the string representation of the commodity ID
func (id CommodityID) String() string {
	return string(id)
}

// CurrencyCode is an ISO 4217 currency code
type CurrencyCode string

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks if the currency code is three uppercase letters
func (c CurrencyCode) Validate() error {
	if !currencyCodePattern.MatchString(string(c)) {
		return goerr.New("invalid currency code", goerr.V("code", string(c)))
	}
	return nil
}

// String returns the string representation of the currency code
func (c CurrencyCode) String() string {
	return string(c)
}
