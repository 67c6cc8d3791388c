// Package weightcalc holds the weighbridge arithmetic used to derive a buying
// weight note from a raw gross/tare measurement. All functions are pure and
// operate on exact integers: weights in whole kilograms, prices and amounts in
// UGX (no minor unit). Floating point is never used for money.
package weightcalc

import "fmt"

// DefaultMoistureBaseline is 11.5% expressed in tenths of a percent.
// Moisture at or below the baseline earns zero deduction — drier coffee gets
// no weight bonus. That is deliberate pricing policy, not an oversight.
const DefaultMoistureBaseline = 115

// ErrInvalidWeight is returned when gross <= tare.
type ErrInvalidWeight struct {
	GrossKg int64
	TareKg  int64
}

func (e *ErrInvalidWeight) Error() string {
	return fmt.Sprintf("gross weight %dkg must exceed tare weight %dkg", e.GrossKg, e.TareKg)
}

// NetWeight returns gross - tare in kg.
func NetWeight(grossKg, tareKg int64) (int64, error) {
	if grossKg <= tareKg {
		return 0, &ErrInvalidWeight{GrossKg: grossKg, TareKg: tareKg}
	}
	return grossKg - tareKg, nil
}

// MoistureDeduction returns the kg deducted for moisture above the baseline.
// moisture and baseline are in tenths of a percent (115 = 11.5%).
//
//	deduction = max(0, round(netKg * (moisture - baseline) / 1000))
func MoistureDeduction(netKg int64, moistureTenths, baselineTenths int) int64 {
	excess := int64(moistureTenths - baselineTenths)
	if excess <= 0 {
		return 0
	}
	// Round half up in pure integer arithmetic.
	return (netKg*excess + 500) / 1000
}

// FinalNetWeight returns netKg minus the moisture deduction, floored at zero.
func FinalNetWeight(netKg, deductionKg int64) int64 {
	final := netKg - deductionKg
	if final < 0 {
		return 0
	}
	return final
}

// TotalAmount returns finalNetKg * pricePerKg in UGX. Exact — repeated
// computation over the same inputs can never drift.
func TotalAmount(finalNetKg, pricePerKgUGX int64) int64 {
	return finalNetKg * pricePerKgUGX
}

// Derivation is the full set of figures computed when a note is created or
// its moisture/price inputs are edited.
type Derivation struct {
	NetWeightKg      int64
	DeductionKg      int64
	FinalNetWeightKg int64
	TotalAmountUGX   int64
}

// Derive composes the four calculator steps from a raw reading plus the
// moisture and price captured at note creation.
func Derive(grossKg, tareKg int64, moistureTenths, baselineTenths int, pricePerKgUGX int64) (Derivation, error) {
	net, err := NetWeight(grossKg, tareKg)
	if err != nil {
		return Derivation{}, err
	}
	return DeriveFromNet(net, moistureTenths, baselineTenths, pricePerKgUGX), nil
}

// DeriveFromNet derives deduction, final weight and total from an already
// computed net weight. Used when re-deriving after a moisture/price edit,
// where the reading is not re-measured.
func DeriveFromNet(netKg int64, moistureTenths, baselineTenths int, pricePerKgUGX int64) Derivation {
	deduction := MoistureDeduction(netKg, moistureTenths, baselineTenths)
	final := FinalNetWeight(netKg, deduction)
	return Derivation{
		NetWeightKg:      netKg,
		DeductionKg:      deduction,
		FinalNetWeightKg: final,
		TotalAmountUGX:   TotalAmount(final, pricePerKgUGX),
	}
}
