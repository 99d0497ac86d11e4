package taxrate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Category identifies a withholding-tax payment category.
type Category string

const (
	CategoryDividends        Category = "dividends"
	CategoryRent             Category = "rent"
	CategoryRoyalties        Category = "royalties"
	CategoryProfessionalFees Category = "professional_fees"
	CategoryContracts        Category = "contracts"
)

// Band is one progressive PIT band. UpTo is the cumulative annual income
// ceiling in kobo; zero marks the final, unbounded band.
type Band struct {
	UpTo int64 `yaml:"up_to"`
	Rate int   `yaml:"rate_bps"`
}

// Schedule is a complete rate table. Rates are basis points (750 = 7.5%).
type Schedule struct {
	VATRate  int              `yaml:"vat_bps"`
	WHTRates map[Category]int `yaml:"wht_bps"`
	PITBands []Band           `yaml:"pit_bands"`
}

// Default returns the statutory schedule: 7.5% VAT, the usual withholding
// percentages per category, and the six progressive PIT bands.
func Default() Schedule {
	return Schedule{
		VATRate: 750,
		WHTRates: map[Category]int{
			CategoryDividends:        1000,
			CategoryRent:             1000,
			CategoryRoyalties:        1000,
			CategoryProfessionalFees: 500,
			CategoryContracts:        500,
		},
		PITBands: []Band{
			{UpTo: 300_000_00, Rate: 700},
			{UpTo: 600_000_00, Rate: 1100},
			{UpTo: 1_100_000_00, Rate: 1500},
			{UpTo: 1_600_000_00, Rate: 1900},
			{UpTo: 3_200_000_00, Rate: 2100},
			{UpTo: 0, Rate: 2400},
		},
	}
}

// Load reads a YAML schedule. Fields absent from the document keep the
// defaults, so an override file only needs the rates that changed.
func Load(r io.Reader) (Schedule, error) {
	s := Default()
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Schedule{}, errors.Join(ErrInvalidSchedule, err)
	}
	if err := s.validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// LoadFile reads a YAML schedule from disk.
func LoadFile(path string) (Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schedule{}, errors.Join(ErrInvalidSchedule, err)
	}
	defer f.Close()
	return Load(f)
}

func (s Schedule) validate() error {
	if s.VATRate < 0 || s.VATRate > 10000 {
		return fmt.Errorf("%w: vat rate %d out of range", ErrInvalidSchedule, s.VATRate)
	}
	for cat, rate := range s.WHTRates {
		if rate < 0 || rate > 10000 {
			return fmt.Errorf("%w: wht rate %d for %q out of range", ErrInvalidSchedule, rate, cat)
		}
	}
	if len(s.PITBands) == 0 {
		return fmt.Errorf("%w: no pit bands", ErrInvalidSchedule)
	}
	prev := int64(0)
	for i, b := range s.PITBands {
		if b.Rate < 0 || b.Rate > 10000 {
			return fmt.Errorf("%w: pit rate %d out of range", ErrInvalidSchedule, b.Rate)
		}
		last := i == len(s.PITBands)-1
		if last {
			if b.UpTo != 0 {
				return fmt.Errorf("%w: final pit band must be unbounded", ErrInvalidSchedule)
			}
			continue
		}
		if b.UpTo <= prev {
			return fmt.Errorf("%w: pit bands must be strictly ascending", ErrInvalidSchedule)
		}
		prev = b.UpTo
	}
	return nil
}

// VAT returns the value-added tax on base, rounded half up.
func (s Schedule) VAT(base int64) int64 {
	return applyBps(base, s.VATRate)
}

// WHT returns the withholding tax for a payment category.
func (s Schedule) WHT(category Category, base int64) (int64, error) {
	rate, ok := s.WHTRates[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return applyBps(base, rate), nil
}

// PIT returns the progressive personal income tax on an annual income.
func (s Schedule) PIT(annual int64) int64 {
	if annual <= 0 {
		return 0
	}

	var tax, prev int64
	for _, b := range s.PITBands {
		if b.UpTo == 0 || annual <= b.UpTo {
			tax += applyBps(annual-prev, b.Rate)
			break
		}
		tax += applyBps(b.UpTo-prev, b.Rate)
		prev = b.UpTo
	}
	return tax
}

// applyBps multiplies a non-negative kobo amount by a basis-point rate,
// rounding half up.
func applyBps(amount int64, bps int) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*int64(bps) + 5000) / 10000
}
