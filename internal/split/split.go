package split

import (
	"fmt"
	"math"

	errors "github.com/autorentar/rental-payments/internal"
	"github.com/autorentar/rental-payments/internal/core/common/validation"
)

// RemainderPolicy decides who receives the cents lost to per-leg flooring.
type RemainderPolicy string

const (
	// DropRemainder leaves the floored cents unallocated.
	DropRemainder          RemainderPolicy = "drop_remainder"
	AllocateToPlatform     RemainderPolicy = "allocate_to_platform"
	AllocateToLargestShare RemainderPolicy = "allocate_to_largest_share"
)

const percentageTolerance = 0.01

func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch p := RemainderPolicy(s); p {
	case DropRemainder, AllocateToPlatform, AllocateToLargestShare:
		return p, nil
	case "":
		return DropRemainder, nil
	}
	return "", fmt.Errorf("unknown remainder policy %q", s)
}

type Percentages struct {
	Owner     float64 `json:"owner_percentage"`
	Platform  float64 `json:"platform_percentage"`
	Insurance float64 `json:"insurance_percentage"`
}

var DefaultPercentages = Percentages{Owner: 85, Platform: 10, Insurance: 5}

// Validate rejects negative shares and sums outside 100 ± 0.01.
func (p Percentages) Validate() error {
	v := validation.NewValidator()
	v.Field("owner_percentage", p.Owner).NonNegative(errors.ErrCodeInvalidSplitConfig)
	v.Field("platform_percentage", p.Platform).NonNegative(errors.ErrCodeInvalidSplitConfig)
	v.Field("insurance_percentage", p.Insurance).NonNegative(errors.ErrCodeInvalidSplitConfig)
	v.Field("percentages", []float64{p.Owner, p.Platform, p.Insurance}).
		SumsTo(100, percentageTolerance, errors.ErrCodeInvalidSplitConfig)
	if appErr := v.Validate(); appErr != nil {
		return errors.ErrInvalidSplitConfig.WithDetails(appErr.Details)
	}
	return nil
}

type Allocation struct {
	Total     int64
	Owner     int64
	Platform  int64
	Insurance int64
	// Remainder is what the policy left unallocated.
	Remainder int64
}

func (a Allocation) Sum() int64 {
	return a.Owner + a.Platform + a.Insurance
}

// Allocate floors each leg to total*pct/100 and then applies the remainder policy.
func Allocate(total int64, p Percentages, policy RemainderPolicy) (Allocation, error) {
	if err := p.Validate(); err != nil {
		return Allocation{}, err
	}

	a := Allocation{
		Total:     total,
		Owner:     floorShare(total, p.Owner),
		Platform:  floorShare(total, p.Platform),
		Insurance: floorShare(total, p.Insurance),
	}
	remainder := total - a.Sum()

	switch policy {
	case AllocateToPlatform:
		a.Platform += remainder
		remainder = 0
	case AllocateToLargestShare:
		switch {
		case p.Owner >= p.Platform && p.Owner >= p.Insurance:
			a.Owner += remainder
		case p.Platform >= p.Insurance:
			a.Platform += remainder
		default:
			a.Insurance += remainder
		}
		remainder = 0
	}

	a.Remainder = remainder
	return a, nil
}

func floorShare(total int64, pct float64) int64 {
	return int64(math.Floor(float64(total) * pct / 100))
}
