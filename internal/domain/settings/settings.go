// Package settings exposes the tunable business parameters shared by the
// pricing engine and the catalog: fees, discount thresholds, and the stock
// alert level. Values live in the database so staff can change them without
// a deploy; every read falls back to a built-in default when the stored
// value is missing or unparsable.
package settings

import (
	"context"

	"github.com/shopspring/decimal"
)

// Configuration keys as stored in the app_config table.
const (
	KeyDeliveryFee             = "DeliveryFee"
	KeyMinOrderForFreeDelivery = "MinOrderForFreeDelivery"
	KeyOrderDiscountPercentage = "OrderDiscountPercentage"
	KeyMenuDiscountPercentage  = "MenuDiscountPercentage"
	KeyMinOrdersForDiscount    = "MinOrdersForDiscount"
	KeyOrdersPeriodForDiscount = "OrdersPeriodForDiscount"
	KeyLowStockThreshold       = "LowStockThreshold"
)

// Built-in defaults, used whenever the stored value cannot be read.
var (
	DefaultDeliveryFee             = decimal.NewFromFloat(10.0)
	DefaultMinOrderForFreeDelivery = decimal.NewFromFloat(75.0)
	DefaultOrderDiscountPercentage = decimal.NewFromFloat(10.0)
	DefaultMenuDiscountPercentage  = decimal.NewFromFloat(15.0)
	DefaultLowStockThreshold       = decimal.NewFromFloat(5.0)
)

const (
	DefaultMinOrdersForDiscount    = 5
	DefaultOrdersPeriodForDiscount = 30
)

// Store reads configuration values. Implementations never return errors;
// any failure resolves to the supplied default so business flows keep
// working on a degraded configuration source.
type Store interface {
	GetString(ctx context.Context, key, def string) string
	GetInt(ctx context.Context, key string, def int) int
	GetDecimal(ctx context.Context, key string, def decimal.Decimal) decimal.Decimal
}

// DeliveryFee is the flat fee charged below the free-delivery threshold.
func DeliveryFee(ctx context.Context, s Store) decimal.Decimal {
	return s.GetDecimal(ctx, KeyDeliveryFee, DefaultDeliveryFee)
}

// MinOrderForFreeDelivery is the subtotal at which delivery becomes free.
func MinOrderForFreeDelivery(ctx context.Context, s Store) decimal.Decimal {
	return s.GetDecimal(ctx, KeyMinOrderForFreeDelivery, DefaultMinOrderForFreeDelivery)
}

// OrderDiscountPercentage is the loyalty discount applied to eligible
// customers, as a percentage of the subtotal.
func OrderDiscountPercentage(ctx context.Context, s Store) decimal.Decimal {
	return s.GetDecimal(ctx, KeyOrderDiscountPercentage, DefaultOrderDiscountPercentage)
}

// MenuDiscountPercentage is the reduction applied to the summed component
// prices when deriving a menu's price.
func MenuDiscountPercentage(ctx context.Context, s Store) decimal.Decimal {
	return s.GetDecimal(ctx, KeyMenuDiscountPercentage, DefaultMenuDiscountPercentage)
}

// MinOrdersForDiscount is how many recent orders make a customer eligible
// for the loyalty discount.
func MinOrdersForDiscount(ctx context.Context, s Store) int {
	return s.GetInt(ctx, KeyMinOrdersForDiscount, DefaultMinOrdersForDiscount)
}

// OrdersPeriodForDiscount is the lookback window for counting recent
// orders, in days.
func OrdersPeriodForDiscount(ctx context.Context, s Store) int {
	return s.GetInt(ctx, KeyOrdersPeriodForDiscount, DefaultOrdersPeriodForDiscount)
}

// LowStockThreshold is the stock quantity below which a product appears on
// the low-stock report.
func LowStockThreshold(ctx context.Context, s Store) decimal.Decimal {
	return s.GetDecimal(ctx, KeyLowStockThreshold, DefaultLowStockThreshold)
}
