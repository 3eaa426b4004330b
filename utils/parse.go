package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}

// ParseDate accepts RFC3339 or one of the plain date layouts the admin
// panel sends.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("use RFC3339 or YYYY-MM-DD")
}

// ParseAmount validates a money amount and returns it normalised to two
// decimal places. Amounts are stored as strings so no precision is lost.
func ParseAmount(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", errors.New("must be a number")
	}
	if d.IsNegative() {
		return "", errors.New("must not be negative")
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return "", errors.New("at most two decimal places")
	}
	return d.StringFixed(2), nil
}

// ParseObjectID wraps primitive.ObjectIDFromHex with the field name for
// 400 responses.
func ParseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s", field)
	}
	return id, nil
}
