package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// SubscriptionID records the subscription identifier under the key "subscription_id".
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// PlanSKU records the plan SKU under the key "plan_sku".
func PlanSKU(sku string) slog.Attr {
	if sku == "" {
		return slog.Attr{}
	}
	return slog.String("plan_sku", sku)
}

// Event records the subscription event type under the key "event".
func Event(event string) slog.Attr {
	if event == "" {
		return slog.Attr{}
	}
	return slog.String("event", event)
}
