package booking

// RecoverySurchargeRate is the fraction of the original total charged
// to recover a vencida reservation.
const RecoverySurchargeRate = 0.25

// RecoverySurcharge computes the fee to recover an expired
// reservation from the sum of its applied line-item prices.
func RecoverySurcharge(total float64) float64 {
	return total * RecoverySurchargeRate
}

// ApplyDiscount computes the applied price of a line item from its
// catalog price and a percentage discount.
func ApplyDiscount(price, discountPct float64) float64 {
	return price * (1 - discountPct/100)
}
