package redisx

import "fmt"

func dedupKey(service, id string) string { return fmt.Sprintf(KeyDedup, service, id) }

func UserBlockedKey(userID string) string { return fmt.Sprintf(KeyUserBlocked, userID) }

func ProductKey(productID string) string { return fmt.Sprintf(KeyProduct, productID) }

func ReportKey(period, from, to string) string { return fmt.Sprintf(KeyReport, period, from, to) }

func CheckoutKey(userID, key string) string { return fmt.Sprintf(KeyIdemCheckout, userID, key) }
