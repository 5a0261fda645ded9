package config

import (
	"errors"
	"math"
)

// Instrument is one entry of the portfolio registry: a tradeable symbol
// plus its weight in the total capital. Percent may exceed neither 0
// nor 100 per instrument; weights are not required to sum to 100.
type Instrument struct {
	Name    string  `yaml:"name" json:"name"`
	Symbol  string  `yaml:"symbol" json:"symbol"`
	Percent float64 `yaml:"percent" json:"percent"`
}

func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return errors.New("symbol is required")
	}
	if i.Percent <= 0 || i.Percent > 100 {
		return errors.New("percent must be in (0, 100]")
	}
	return nil
}

// InitialCapital is the instrument's rounded share of the total.
func (i Instrument) InitialCapital(totalCapital float64) float64 {
	return math.Round(totalCapital * i.Percent / 100)
}

// DefaultInstruments is the built-in registry used when the config file
// does not supply one.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Name: "Motilal Oswal Midcap", Symbol: "0P0001BAYU.BO", Percent: 100},
		{Name: "Nifty BeES", Symbol: "^NSEI", Percent: 100},
		{Name: "Parag Parikh Flexi Cap", Symbol: "0P0000YWL0.BO", Percent: 100},
		{Name: "Abbott India", Symbol: "ABBOTINDIA.NS", Percent: 2},
		{Name: "Amber Enterprises India", Symbol: "AMBER.NS", Percent: 3.54},
		{Name: "Angel One", Symbol: "ANGELONE.NS", Percent: 1.96},
		{Name: "Apar Industries", Symbol: "APARINDS.NS", Percent: 3.21},
		{Name: "Bajaj Finance", Symbol: "BAJFINANCE.NS", Percent: 3.20},
		{Name: "Bharat Dynamics", Symbol: "BDL.NS", Percent: 2.78},
		{Name: "Bharat Electronics", Symbol: "BEL.NS", Percent: 4.29},
		{Name: "CG Power and Industrial Solutions", Symbol: "CGPOWER.NS", Percent: 3.97},
		{Name: "Cholamandalam Investment and Finance", Symbol: "CHOLAFIN.NS", Percent: 3.29},
		{Name: "Dixon Technologies", Symbol: "DIXON.NS", Percent: 2.32},
		{Name: "Hindustan Aeronautics", Symbol: "HAL.NS", Percent: 3.10},
		{Name: "Kaynes Technology India", Symbol: "KAYNES.NS", Percent: 2.52},
		{Name: "Multi Commodity Exchange", Symbol: "MCX.NS", Percent: 3.45},
		{Name: "Muthoot Finance", Symbol: "MUTHOOTFIN.NS", Percent: 2.38},
		{Name: "Prestige Estates Projects", Symbol: "PRESTIGE.NS", Percent: 3.16},
		{Name: "Samvardhana Motherson International", Symbol: "MOTHERSON.NS", Percent: 3.23},
		{Name: "Suzlon Energy", Symbol: "SUZLON.NS", Percent: 3.21},
		{Name: "Trent", Symbol: "TRENT.NS", Percent: 2.63},
		{Name: "Waaree Energies", Symbol: "WAAREEENER.NS", Percent: 4.23},
		{Name: "Zen Technologies", Symbol: "ZENTEC.NS", Percent: 2.43},
	}
}

// FindInstrument looks a symbol up in the registry.
func FindInstrument(instruments []Instrument, symbol string) (Instrument, bool) {
	for _, ins := range instruments {
		if ins.Symbol == symbol {
			return ins, true
		}
	}
	return Instrument{}, false
}
