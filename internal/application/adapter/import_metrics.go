// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "time"

// ImportMetrics records import outcomes.
type ImportMetrics interface {
	BatchFinished(outcome string, duration time.Duration)
	RowFinished(outcome string)
	AccountCreated()
	BudgetMaterialized()
	Unrecognized(reason string)
}

// NopImportMetrics discards all observations.
type NopImportMetrics struct{}

func (NopImportMetrics) BatchFinished(string, time.Duration) {}
func (NopImportMetrics) RowFinished(string)                  {}
func (NopImportMetrics) AccountCreated()                     {}
func (NopImportMetrics) BudgetMaterialized()                 {}
func (NopImportMetrics) Unrecognized(string)                 {}
